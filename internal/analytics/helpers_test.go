package analytics

import (
	"math"
	"time"

	"github.com/guregu/null"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// baseTime is a fixed reference point so all test timings are deterministic.
var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// tick returns baseTime advanced by n seconds.
func tick(n int) time.Time {
	return baseTime.Add(time.Duration(n) * time.Second)
}

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// makeReading builds a fully populated reading.
func makeReading(dev string, ts time.Time, temp, vib, speed, batt float64) types.Reading {
	return types.Reading{
		DeviceID:    dev,
		Temperature: null.FloatFrom(temp),
		Vibration:   null.FloatFrom(vib),
		Speed:       null.FloatFrom(speed),
		Battery:     null.FloatFrom(batt),
		Timestamp:   ts,
	}
}

// steady returns n readings from dev, one per second, with identical values.
func steady(dev string, n int) []types.Reading {
	out := make([]types.Reading, n)
	for i := range out {
		out[i] = makeReading(dev, tick(i), 50, 0.8, 2.5, 80)
	}
	return out
}

// rowsOf orders readings without running any other stage.
func rowsOf(readings ...types.Reading) []types.EnrichedReading {
	return Order(readings)
}
