package analytics

import "github.com/sensorpipe/sensorpipe/pkg/types"

// Penalty weights subtracted from a perfect score of 100.
// The maximum combined penalty is 80.
const (
	penaltyOverheat      = 30
	penaltyHighVibration = 20
	penaltyLowBattery    = 20
	penaltyBatteryDrop   = 10
)

// Health returns 100 minus the penalty of every active alert flag.
// The result is not clamped.
func Health(r *types.EnrichedReading) int {
	return 100 -
		b2i(r.Overheat)*penaltyOverheat -
		b2i(r.HighVibration)*penaltyHighVibration -
		b2i(r.LowBattery)*penaltyLowBattery -
		b2i(r.BatteryDrop)*penaltyBatteryDrop
}

// AddHealth sets the health field on every row.
func AddHealth(rows []types.EnrichedReading) {
	for i := range rows {
		rows[i].Health = Health(&rows[i])
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
