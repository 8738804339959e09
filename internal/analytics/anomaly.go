package analytics

import (
	"math"

	"github.com/guregu/null"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// zScore returns (value - mean) / std, or 0 when any operand is undefined or
// the deviation is zero.
func zScore(value, mean, std null.Float) float64 {
	if !value.Valid || !mean.Valid || !std.Valid || std.Float64 == 0 {
		return 0
	}
	return (value.Float64 - mean.Float64) / std.Float64
}

// AddAnomalyScores computes a rolling z-score per signal, the mean absolute
// z-score across signals, and the anomaly flag.
//
// A row is anomalous when its score exceeds threshold or when any single
// signal's |z| does, so a spike on one signal is not averaged away.
func AddAnomalyScores(rows []types.EnrichedReading, window, minPeriods int, threshold float64) {
	for _, sig := range types.Signals {
		col := column(rows, sig)
		means, stds := rollingMeanStd(col, window, minPeriods)
		for i := range rows {
			rows[i].SetZ(sig, zScore(col[i], means[i], stds[i]))
		}
	}

	for i := range rows {
		var sum float64
		spike := false
		for _, sig := range types.Signals {
			az := math.Abs(rows[i].Z(sig))
			sum += az
			if az > threshold {
				spike = true
			}
		}
		rows[i].AnomalyScore = sum / float64(len(types.Signals))
		rows[i].Anomaly = rows[i].AnomalyScore > threshold || spike
	}
}
