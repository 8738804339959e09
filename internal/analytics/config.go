package analytics

import (
	"fmt"
	"time"
)

// Default pipeline settings.
const (
	DefaultRollingWindow     = 5
	DefaultRecentWindow      = 5 * time.Minute
	DefaultAnomalyWindow     = 20
	DefaultAnomalyMinPeriods = 5
	DefaultAnomalyThreshold  = 2.0
	DefaultExpectedInterval  = 5 * time.Second
	DefaultGraceFactor       = 3.0
)

// Default alert thresholds.
const (
	DefaultOverheatTemp  = 75.0
	DefaultHighVibration = 1.5
	DefaultLowBattery    = 30.0
	DefaultBatteryDrop   = -10.0
)

// Thresholds holds the alert rule cut-offs. Only the values are configurable;
// each rule's comparison operator is fixed.
type Thresholds struct {
	// OverheatTemp fires overheat when temperature > OverheatTemp.
	OverheatTemp float64

	// HighVibration fires high_vibration when vibration > HighVibration.
	HighVibration float64

	// LowBattery fires low_battery when battery < LowBattery.
	LowBattery float64

	// BatteryDrop fires battery_drop when the row-to-row battery delta is
	// below this (negative) value.
	BatteryDrop float64
}

// Config is the full set of pipeline settings. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	RollingWindow     int
	RecentWindow      time.Duration
	AnomalyWindow     int
	AnomalyMinPeriods int
	AnomalyThreshold  float64
	ExpectedInterval  time.Duration
	GraceFactor       float64
	Thresholds        Thresholds
}

// DefaultConfig returns the stock pipeline configuration.
func DefaultConfig() Config {
	return Config{
		RollingWindow:     DefaultRollingWindow,
		RecentWindow:      DefaultRecentWindow,
		AnomalyWindow:     DefaultAnomalyWindow,
		AnomalyMinPeriods: DefaultAnomalyMinPeriods,
		AnomalyThreshold:  DefaultAnomalyThreshold,
		ExpectedInterval:  DefaultExpectedInterval,
		GraceFactor:       DefaultGraceFactor,
		Thresholds: Thresholds{
			OverheatTemp:  DefaultOverheatTemp,
			HighVibration: DefaultHighVibration,
			LowBattery:    DefaultLowBattery,
			BatteryDrop:   DefaultBatteryDrop,
		},
	}
}

// OfflineAfter is the staleness cut-off used by the liveness monitor.
func (c Config) OfflineAfter() time.Duration {
	return time.Duration(float64(c.ExpectedInterval) * c.GraceFactor)
}

// Validate checks structural constraints on the configuration.
func (c Config) Validate() error {
	if c.RollingWindow <= 0 {
		return fmt.Errorf("rolling_window must be positive")
	}
	if c.RecentWindow < 0 {
		return fmt.Errorf("recent_window must not be negative")
	}
	if c.AnomalyWindow <= 0 {
		return fmt.Errorf("anomaly_window must be positive")
	}
	if c.AnomalyMinPeriods <= 0 || c.AnomalyMinPeriods > c.AnomalyWindow {
		return fmt.Errorf("anomaly_min_periods %d is out of range [1, %d]",
			c.AnomalyMinPeriods, c.AnomalyWindow)
	}
	if c.AnomalyThreshold < 0 {
		return fmt.Errorf("anomaly_threshold must not be negative")
	}
	if c.ExpectedInterval < 0 {
		return fmt.Errorf("expected_interval must not be negative")
	}
	if c.GraceFactor < 0 {
		return fmt.Errorf("grace_factor must not be negative")
	}
	return nil
}
