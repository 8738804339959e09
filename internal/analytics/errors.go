package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// ErrMalformedReading is the sentinel wrapped by every MalformedReadingError.
var ErrMalformedReading = errors.New("malformed reading")

// MalformedReadingError locates a bad record in a batch.
type MalformedReadingError struct {
	Index  int    // position of the record in the batch as supplied
	Field  string // offending field, e.g. "timestamp"
	Reason string
}

func (e *MalformedReadingError) Error() string {
	return fmt.Sprintf("malformed reading at index %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrMalformedReading).
func (e *MalformedReadingError) Unwrap() error { return ErrMalformedReading }

// Validate rejects the whole batch on the first reading that is missing its
// device id or timestamp, or that carries a non-finite value. Missing numeric
// values are allowed; Order repairs them.
func Validate(readings []types.Reading) error {
	for i, r := range readings {
		if r.DeviceID == "" {
			return &MalformedReadingError{Index: i, Field: "device_id", Reason: "required"}
		}
		if r.Timestamp.IsZero() {
			return &MalformedReadingError{Index: i, Field: "timestamp", Reason: "required"}
		}
		for _, sig := range types.Signals {
			v := r.Value(sig)
			if v.Valid && (math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0)) {
				return &MalformedReadingError{Index: i, Field: sig, Reason: "not a finite number"}
			}
		}
	}
	return nil
}
