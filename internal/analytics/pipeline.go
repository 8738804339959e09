package analytics

import (
	"fmt"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// Pipeline derives enriched readings from a snapshot of raw readings.
//
// A Pipeline holds only its immutable Config, so one value may be shared by
// any number of goroutines. Each Run works on its own copy of the input.
type Pipeline struct {
	cfg Config
}

// New returns a Pipeline for cfg, or an error if cfg is invalid.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	return &Pipeline{cfg: cfg}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config { return p.cfg }

// Run validates readings and passes them through every stage in order:
// ordering and repair, rolling means, alerts, health, recency, anomaly
// scoring and device liveness.
//
// The whole batch is rejected with a *MalformedReadingError if any reading
// is malformed. An empty batch yields an empty, non-nil result.
func (p *Pipeline) Run(readings []types.Reading) ([]types.EnrichedReading, error) {
	if err := Validate(readings); err != nil {
		return nil, fmt.Errorf("analytics: run: %w", err)
	}

	// Order allocates the row slice, so every stage below mutates memory
	// owned by this call only.
	rows := Order(readings)
	AddRollingFeatures(rows, p.cfg.RollingWindow)
	AddAlerts(rows, p.cfg.Thresholds)
	AddHealth(rows)
	AddRecency(rows, p.cfg.RecentWindow)
	AddAnomalyScores(rows, p.cfg.AnomalyWindow, p.cfg.AnomalyMinPeriods, p.cfg.AnomalyThreshold)
	AddDeviceStatus(rows, p.cfg.OfflineAfter())
	return rows, nil
}
