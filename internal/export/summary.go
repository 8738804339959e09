package export

import (
	"sort"
	"time"

	"github.com/sensorpipe/sensorpipe/internal/analytics"
	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// DeviceSummary condenses one device's rows from a pipeline run.
type DeviceSummary struct {
	DeviceID string    `json:"device_id"`
	Readings int       `json:"readings"`
	LastSeen time.Time `json:"last_seen"`

	// Health and AnomalyScore are taken from the device's newest row.
	Health       int     `json:"health"`
	AnomalyScore float64 `json:"anomaly_score"`

	// Anomalies counts rows flagged anomalous; Alerts counts rows per rule.
	Anomalies int            `json:"anomalies"`
	Alerts    map[string]int `json:"alerts"`

	Offline          bool    `json:"offline"`
	SecondsSinceLast float64 `json:"seconds_since_last"`
}

// Summarize groups rows by device, sorted by device id. Rows are expected in
// pipeline order, so the last row seen for a device is its newest.
func Summarize(rows []types.EnrichedReading) []DeviceSummary {
	byID := make(map[string]*DeviceSummary)
	for i := range rows {
		r := &rows[i]
		s, ok := byID[r.DeviceID]
		if !ok {
			s = &DeviceSummary{DeviceID: r.DeviceID, Alerts: make(map[string]int, len(analytics.RuleNames))}
			for _, name := range analytics.RuleNames {
				s.Alerts[name] = 0
			}
			byID[r.DeviceID] = s
		}

		s.Readings++
		if !r.Timestamp.Before(s.LastSeen) {
			s.LastSeen = r.Timestamp
			s.Health = r.Health
			s.AnomalyScore = r.AnomalyScore
		}
		if r.Anomaly {
			s.Anomalies++
		}
		for name, fired := range alertFlags(r) {
			if fired {
				s.Alerts[name]++
			}
		}
		s.Offline = r.Offline
		s.SecondsSinceLast = r.SecondsSinceLast
	}

	out := make([]DeviceSummary, 0, len(byID))
	for _, s := range byID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

// alertFlags maps each rule name to its flag on r.
func alertFlags(r *types.EnrichedReading) map[string]bool {
	return map[string]bool{
		analytics.RuleOverheat:      r.Overheat,
		analytics.RuleHighVibration: r.HighVibration,
		analytics.RuleLowBattery:    r.LowBattery,
		analytics.RuleBatteryDrop:   r.BatteryDrop,
	}
}
