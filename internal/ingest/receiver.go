package ingest

import (
	"fmt"
	"log/slog"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// Writer is the append side of the reading store.
type Writer interface {
	Append(r types.Reading) error
}

// Receiver decodes inbound payloads and appends them to a Writer.
type Receiver struct {
	w Writer
}

// NewReceiver creates a Receiver that writes accepted readings to w.
func NewReceiver(w Writer) *Receiver {
	return &Receiver{w: w}
}

// Handle decodes one message and stores it. topic is used for logging only;
// the device id always comes from the payload.
func (r *Receiver) Handle(topic string, payload []byte) error {
	reading, err := Decode(payload)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	if err := r.w.Append(reading); err != nil {
		return fmt.Errorf("ingest: append: %w", err)
	}

	slog.Debug("ingest: reading stored",
		"topic", topic,
		"device_id", reading.DeviceID,
		"timestamp", reading.Timestamp,
	)
	return nil
}
