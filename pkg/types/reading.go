package types

import (
	"time"

	"github.com/guregu/null"
)

// Canonical signal names, in the order every per-signal stage iterates them.
const (
	SignalTemperature = "temperature"
	SignalVibration   = "vibration"
	SignalSpeed       = "speed"
	SignalBattery     = "battery"
)

// Signals is the ordered set of numeric columns carried by a Reading.
var Signals = []string{SignalTemperature, SignalVibration, SignalSpeed, SignalBattery}

// Reading is one timestamped measurement from a device.
type Reading struct {
	DeviceID    string     `json:"device_id"`
	Temperature null.Float `json:"temperature"`
	Vibration   null.Float `json:"vibration"`
	Speed       null.Float `json:"speed"`
	// Battery is a whole percentage from 0 to 100. It is held as a float so a
	// missing value can be represented and repaired like the other signals.
	Battery   null.Float `json:"battery"`
	Timestamp time.Time  `json:"timestamp"`
}

// Value returns the named signal. Unknown names return an invalid value.
func (r Reading) Value(signal string) null.Float {
	switch signal {
	case SignalTemperature:
		return r.Temperature
	case SignalVibration:
		return r.Vibration
	case SignalSpeed:
		return r.Speed
	case SignalBattery:
		return r.Battery
	default:
		return null.Float{}
	}
}

// SetValue replaces the named signal. Unknown names are ignored.
func (r *Reading) SetValue(signal string, v null.Float) {
	switch signal {
	case SignalTemperature:
		r.Temperature = v
	case SignalVibration:
		r.Vibration = v
	case SignalSpeed:
		r.Speed = v
	case SignalBattery:
		r.Battery = v
	}
}

// EnrichedReading is a Reading plus every field derived by the analytics
// pipeline. It only exists as the transient output of one pipeline run.
type EnrichedReading struct {
	Reading

	// Index is the row position in the timestamp-ordered sequence.
	Index int `json:"-"`

	// Rolling means over the trailing window; null until the window is full.
	TempAvg      null.Float `json:"temp_avg"`
	VibrationAvg null.Float `json:"vibration_avg"`
	SpeedAvg     null.Float `json:"speed_avg"`
	BatteryAvg   null.Float `json:"battery_avg"`

	// Alert flags.
	Overheat      bool `json:"overheat"`
	HighVibration bool `json:"high_vibration"`
	LowBattery    bool `json:"low_battery"`
	BatteryDrop   bool `json:"battery_drop"`

	// Health is 100 minus the weighted alert penalties. It is not clamped.
	Health int `json:"health"`

	Recent      bool `json:"recent"`
	RecentAlert bool `json:"recent_alert"`

	// Per-signal rolling z-scores; 0 when the deviation is undefined.
	TemperatureZ float64 `json:"temperature_z"`
	VibrationZ   float64 `json:"vibration_z"`
	SpeedZ       float64 `json:"speed_z"`
	BatteryZ     float64 `json:"battery_z"`

	AnomalyScore float64 `json:"anomaly_score"`
	Anomaly      bool    `json:"anomaly"`

	SecondsSinceLast float64 `json:"seconds_since_last"`
	Offline          bool    `json:"offline"`
}

// Avg returns the rolling mean of the named signal.
func (e *EnrichedReading) Avg(signal string) null.Float {
	switch signal {
	case SignalTemperature:
		return e.TempAvg
	case SignalVibration:
		return e.VibrationAvg
	case SignalSpeed:
		return e.SpeedAvg
	case SignalBattery:
		return e.BatteryAvg
	default:
		return null.Float{}
	}
}

// SetAvg stores the rolling mean of the named signal.
func (e *EnrichedReading) SetAvg(signal string, v null.Float) {
	switch signal {
	case SignalTemperature:
		e.TempAvg = v
	case SignalVibration:
		e.VibrationAvg = v
	case SignalSpeed:
		e.SpeedAvg = v
	case SignalBattery:
		e.BatteryAvg = v
	}
}

// Z returns the z-score of the named signal.
func (e *EnrichedReading) Z(signal string) float64 {
	switch signal {
	case SignalTemperature:
		return e.TemperatureZ
	case SignalVibration:
		return e.VibrationZ
	case SignalSpeed:
		return e.SpeedZ
	case SignalBattery:
		return e.BatteryZ
	default:
		return 0
	}
}

// SetZ stores the z-score of the named signal.
func (e *EnrichedReading) SetZ(signal string, z float64) {
	switch signal {
	case SignalTemperature:
		e.TemperatureZ = z
	case SignalVibration:
		e.VibrationZ = z
	case SignalSpeed:
		e.SpeedZ = z
	case SignalBattery:
		e.BatteryZ = z
	}
}

// HasAlert reports whether any alert flag is set on the row.
func (e *EnrichedReading) HasAlert() bool {
	return e.Overheat || e.HighVibration || e.LowBattery || e.BatteryDrop
}
