package analytics

import (
	"math"

	"github.com/guregu/null"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// column extracts one signal from the ordered rows.
func column(rows []types.EnrichedReading, signal string) []null.Float {
	out := make([]null.Float, len(rows))
	for i := range rows {
		out[i] = rows[i].Value(signal)
	}
	return out
}

// trailing returns the known values among col[end-window+1 : end+1].
func trailing(col []null.Float, end, window int) []float64 {
	start := end - window + 1
	if start < 0 {
		start = 0
	}
	vals := make([]float64, 0, end-start+1)
	for _, v := range col[start : end+1] {
		if v.Valid {
			vals = append(vals, v.Float64)
		}
	}
	return vals
}

// rollingMean computes the trailing mean over window rows. A row's value is
// null until the window holds window known values.
func rollingMean(col []null.Float, window int) []null.Float {
	out := make([]null.Float, len(col))
	for i := range col {
		vals := trailing(col, i, window)
		if len(vals) < window {
			continue
		}
		out[i] = null.FloatFrom(mean(vals))
	}
	return out
}

// rollingMeanStd computes the trailing mean and sample standard deviation
// over window rows, requiring minPeriods known values. Both are null below
// that count; the deviation is also null with fewer than two values.
func rollingMeanStd(col []null.Float, window, minPeriods int) (means, stds []null.Float) {
	means = make([]null.Float, len(col))
	stds = make([]null.Float, len(col))
	for i := range col {
		vals := trailing(col, i, window)
		if len(vals) < minPeriods || len(vals) == 0 {
			continue
		}
		m := mean(vals)
		means[i] = null.FloatFrom(m)
		if len(vals) < 2 {
			continue
		}
		stds[i] = null.FloatFrom(sampleStd(vals, m))
	}
	return means, stds
}

// AddRollingFeatures sets the <signal>_avg fields. The window runs over the
// globally ordered sequence and is not grouped by device.
func AddRollingFeatures(rows []types.EnrichedReading, window int) {
	for _, sig := range types.Signals {
		avgs := rollingMean(column(rows, sig), window)
		for i := range rows {
			rows[i].SetAvg(sig, avgs[i])
		}
	}
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd is the n-1 standard deviation. A window of identical values
// returns exactly zero so that rounding in the mean cannot leak a tiny
// non-zero deviation into the z-score.
func sampleStd(vals []float64, m float64) float64 {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}
