package analytics

import (
	"github.com/guregu/null"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// Rule names, as they appear in exported alert counts.
const (
	RuleOverheat      = "overheat"
	RuleHighVibration = "high_vibration"
	RuleLowBattery    = "low_battery"
	RuleBatteryDrop   = "battery_drop"
)

// RuleNames lists every alert rule in evaluation order.
var RuleNames = []string{RuleOverheat, RuleHighVibration, RuleLowBattery, RuleBatteryDrop}

// rule is one row-local threshold check: operand op threshold.
type rule struct {
	name      string
	op        string
	threshold float64
	operand   func(rows []types.EnrichedReading, i int) null.Float
	set       func(row *types.EnrichedReading, fires bool)
}

// rules builds the fixed rule table. Only the threshold values come from t.
func rules(t Thresholds) []rule {
	return []rule{
		{
			name: RuleOverheat, op: ">", threshold: t.OverheatTemp,
			operand: valueOf(types.SignalTemperature),
			set:     func(r *types.EnrichedReading, f bool) { r.Overheat = f },
		},
		{
			name: RuleHighVibration, op: ">", threshold: t.HighVibration,
			operand: valueOf(types.SignalVibration),
			set:     func(r *types.EnrichedReading, f bool) { r.HighVibration = f },
		},
		{
			name: RuleLowBattery, op: "<", threshold: t.LowBattery,
			operand: valueOf(types.SignalBattery),
			set:     func(r *types.EnrichedReading, f bool) { r.LowBattery = f },
		},
		{
			name: RuleBatteryDrop, op: "<", threshold: t.BatteryDrop,
			operand: batteryDelta,
			set:     func(r *types.EnrichedReading, f bool) { r.BatteryDrop = f },
		},
	}
}

func valueOf(signal string) func([]types.EnrichedReading, int) null.Float {
	return func(rows []types.EnrichedReading, i int) null.Float {
		return rows[i].Value(signal)
	}
}

// batteryDelta is battery[i] - battery[i-1]; undefined on the first row.
func batteryDelta(rows []types.EnrichedReading, i int) null.Float {
	if i == 0 {
		return null.Float{}
	}
	cur, prev := rows[i].Battery, rows[i-1].Battery
	if !cur.Valid || !prev.Valid {
		return null.Float{}
	}
	return null.FloatFrom(cur.Float64 - prev.Float64)
}

// AddAlerts evaluates every rule on every row. An undefined operand never
// fires.
func AddAlerts(rows []types.EnrichedReading, t Thresholds) {
	table := rules(t)
	for i := range rows {
		for _, r := range table {
			v := r.operand(rows, i)
			r.set(&rows[i], v.Valid && crosses(v.Float64, r.op, r.threshold))
		}
	}
}

// crosses reports whether v lies strictly beyond threshold: above it for
// ">", below it for "<". Any other op never fires.
func crosses(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case "<":
		return v < threshold
	}
	return false
}
