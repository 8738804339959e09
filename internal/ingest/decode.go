package ingest

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/guregu/null"
	"github.com/relvacode/iso8601"

	"github.com/sensorpipe/sensorpipe/internal/analytics"
	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// Wire keys of a reading payload.
const (
	keyDeviceID  = "device_id"
	keyTimestamp = "timestamp"
)

// requiredKeys is every key a payload must carry, in reporting order.
var requiredKeys = []string{
	keyDeviceID,
	types.SignalTemperature,
	types.SignalVibration,
	types.SignalSpeed,
	types.SignalBattery,
	keyTimestamp,
}

// Decode parses one JSON reading.
//
// Every key must be present. A numeric key may be JSON null, which decodes
// to a missing value. The timestamp is ISO-8601; a timestamp without a zone
// is read as UTC.
func Decode(payload []byte) (types.Reading, error) {
	return decodeAt(payload, 0)
}

// DecodeBatch parses a JSON array of readings. A failure names the element
// index in its *analytics.MalformedReadingError.
func DecodeBatch(data []byte) ([]types.Reading, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed(0, "payload", err.Error())
	}
	out := make([]types.Reading, 0, len(raw))
	for i, elem := range raw {
		r, err := decodeAt(elem, i)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func decodeAt(payload []byte, index int) (types.Reading, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return types.Reading{}, malformed(index, "payload", err.Error())
	}
	for _, k := range requiredKeys {
		if _, ok := fields[k]; !ok {
			return types.Reading{}, malformed(index, k, "missing")
		}
	}

	var r types.Reading
	if err := json.Unmarshal(fields[keyDeviceID], &r.DeviceID); err != nil {
		return types.Reading{}, malformed(index, keyDeviceID, "not a string")
	}
	if strings.TrimSpace(r.DeviceID) == "" {
		return types.Reading{}, malformed(index, keyDeviceID, "empty")
	}

	for _, sig := range types.Signals {
		var v null.Float
		if err := json.Unmarshal(fields[sig], &v); err != nil {
			return types.Reading{}, malformed(index, sig, "not a number")
		}
		if v.Valid && (math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0)) {
			return types.Reading{}, malformed(index, sig, "not a finite number")
		}
		r.SetValue(sig, v)
	}

	var ts string
	if err := json.Unmarshal(fields[keyTimestamp], &ts); err != nil || ts == "" {
		return types.Reading{}, malformed(index, keyTimestamp, "not a timestamp string")
	}
	parsed, err := iso8601.ParseString(ts)
	if err != nil {
		return types.Reading{}, malformed(index, keyTimestamp, err.Error())
	}
	if parsed.IsZero() {
		return types.Reading{}, malformed(index, keyTimestamp, "required")
	}
	r.Timestamp = parsed

	return r, nil
}

func malformed(index int, field, reason string) error {
	return &analytics.MalformedReadingError{Index: index, Field: field, Reason: reason}
}
