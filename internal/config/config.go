package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sensorpipe/sensorpipe/internal/analytics"
)

// Default values applied when fields are absent from the config file.
// Pipeline defaults come from the analytics package.
const (
	DefaultLogLevel         = "info"
	DefaultRetention        = 24 * time.Hour
	DefaultMaxReadings      = 100000
	DefaultProducerInterval = 5 * time.Second
	DefaultMQTTBroker       = "tcp://localhost:1883"
	DefaultMQTTClientID     = "sensorpipe"
	DefaultMQTTTopic        = "sensors/+/reading"
	DefaultMQTTQoS          = 1
	DefaultExportInterval   = 10 * time.Second
	DefaultExportOutput     = "stdout"
	DefaultExportFormat     = "json"
)

// DefaultDevices is the fleet simulated by the producer when none is listed.
var DefaultDevices = []string{"R1", "R2", "R3", "R4"}

// Config is the top-level configuration of the sensorpipe binary.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Store    StoreConfig    `yaml:"store"`
	Producer ProducerConfig `yaml:"producer"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Export   ExportConfig   `yaml:"export"`
}

// LogConfig controls the process-wide slog handler.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`
}

// SlogLevel maps Level onto a slog.Level. Unknown values fall back to info;
// validate rejects them before this is reached.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// PipelineConfig holds the analytics settings. It can be changed at runtime
// through Watch.
type PipelineConfig struct {
	RollingWindow     int              `yaml:"rolling_window"`
	RecentWindow      time.Duration    `yaml:"recent_window"`
	AnomalyWindow     int              `yaml:"anomaly_window"`
	AnomalyMinPeriods int              `yaml:"anomaly_min_periods"`
	AnomalyThreshold  float64          `yaml:"anomaly_threshold"`
	ExpectedInterval  time.Duration    `yaml:"expected_interval"`
	GraceFactor       float64          `yaml:"grace_factor"`
	Thresholds        ThresholdsConfig `yaml:"thresholds"`
}

// ThresholdsConfig holds the alert rule cut-offs.
type ThresholdsConfig struct {
	OverheatTemp  float64 `yaml:"overheat_temp"`
	HighVibration float64 `yaml:"high_vibration"`
	LowBattery    float64 `yaml:"low_battery"`
	BatteryDrop   float64 `yaml:"battery_drop"`
}

// StoreConfig bounds the in-memory reading log.
type StoreConfig struct {
	// Retention is how long a reading is kept after it was appended.
	// Zero keeps readings forever.
	Retention time.Duration `yaml:"retention"`

	// MaxReadings caps the log length; the oldest readings are evicted first.
	// Zero means unbounded.
	MaxReadings int `yaml:"max_readings"`
}

// ProducerConfig configures the simulated sensor feed.
type ProducerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Devices  []string      `yaml:"devices"`
}

// MQTTConfig configures the broker subscription used for ingestion.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Username string `yaml:"username"`

	// PasswordEnv is the name of the environment variable that holds the password.
	PasswordEnv string `yaml:"password_env"`
}

// Password returns the broker password resolved from the environment.
func (m MQTTConfig) Password() string {
	if m.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(m.PasswordEnv)
}

// ExportConfig selects how and where pipeline results are written.
type ExportConfig struct {
	Interval time.Duration `yaml:"interval"`

	// Output is "stdout" or a file path that is rewritten on each export.
	Output string `yaml:"output"`

	// Format is one of: json | prometheus.
	Format string `yaml:"format"`
}

// Analytics converts the YAML section into an analytics.Config.
func (p PipelineConfig) Analytics() analytics.Config {
	return analytics.Config{
		RollingWindow:     p.RollingWindow,
		RecentWindow:      p.RecentWindow,
		AnomalyWindow:     p.AnomalyWindow,
		AnomalyMinPeriods: p.AnomalyMinPeriods,
		AnomalyThreshold:  p.AnomalyThreshold,
		ExpectedInterval:  p.ExpectedInterval,
		GraceFactor:       p.GraceFactor,
		Thresholds: analytics.Thresholds{
			OverheatTemp:  p.Thresholds.OverheatTemp,
			HighVibration: p.Thresholds.HighVibration,
			LowBattery:    p.Thresholds.LowBattery,
			BatteryDrop:   p.Thresholds.BatteryDrop,
		},
	}
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if len(cfg.Producer.Devices) == 0 {
		cfg.Producer.Devices = append([]string(nil), DefaultDevices...)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. It is also
// what the binary runs with when no config file exists.
func Defaults() *Config {
	a := analytics.DefaultConfig()
	return &Config{
		Log: LogConfig{Level: DefaultLogLevel},
		Pipeline: PipelineConfig{
			RollingWindow:     a.RollingWindow,
			RecentWindow:      a.RecentWindow,
			AnomalyWindow:     a.AnomalyWindow,
			AnomalyMinPeriods: a.AnomalyMinPeriods,
			AnomalyThreshold:  a.AnomalyThreshold,
			ExpectedInterval:  a.ExpectedInterval,
			GraceFactor:       a.GraceFactor,
			Thresholds: ThresholdsConfig{
				OverheatTemp:  a.Thresholds.OverheatTemp,
				HighVibration: a.Thresholds.HighVibration,
				LowBattery:    a.Thresholds.LowBattery,
				BatteryDrop:   a.Thresholds.BatteryDrop,
			},
		},
		Store: StoreConfig{
			Retention:   DefaultRetention,
			MaxReadings: DefaultMaxReadings,
		},
		Producer: ProducerConfig{
			Interval: DefaultProducerInterval,
		},
		MQTT: MQTTConfig{
			Broker:   DefaultMQTTBroker,
			ClientID: DefaultMQTTClientID,
			Topic:    DefaultMQTTTopic,
			QoS:      DefaultMQTTQoS,
		},
		Export: ExportConfig{
			Interval: DefaultExportInterval,
			Output:   DefaultExportOutput,
			Format:   DefaultExportFormat,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	if err := cfg.Pipeline.Analytics().Validate(); err != nil {
		return fmt.Errorf("pipeline.%w", err)
	}
	if cfg.Store.Retention < 0 {
		return fmt.Errorf("store.retention must not be negative")
	}
	if cfg.Store.MaxReadings < 0 {
		return fmt.Errorf("store.max_readings must not be negative")
	}
	if cfg.Producer.Interval <= 0 {
		return fmt.Errorf("producer.interval must be positive")
	}
	for i, d := range cfg.Producer.Devices {
		if d == "" {
			return fmt.Errorf("producer.devices[%d]: empty device id", i)
		}
	}
	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if cfg.MQTT.Topic == "" {
			return fmt.Errorf("mqtt.topic is required when mqtt is enabled")
		}
	}
	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	if cfg.Export.Interval <= 0 {
		return fmt.Errorf("export.interval must be positive")
	}
	if cfg.Export.Output == "" {
		return fmt.Errorf("export.output is required")
	}
	switch cfg.Export.Format {
	case "json", "prometheus":
	default:
		return fmt.Errorf("export.format: unknown format %q", cfg.Export.Format)
	}
	return nil
}
