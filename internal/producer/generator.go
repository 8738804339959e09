package producer

import (
	"math"
	"math/rand"
	"time"

	"github.com/guregu/null"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// Value ranges of the simulated sensors.
const (
	minTemperature = 30.0
	maxTemperature = 90.0
	minVibration   = 0.2
	maxVibration   = 2.0
	minSpeed       = 0.5
	maxSpeed       = 5.0
	minBattery     = 20
	maxBattery     = 100
)

// RandomGenerator picks a device at random and draws each signal uniformly
// from its range. It is not safe for concurrent use; a Producer calls it
// from a single goroutine.
type RandomGenerator struct {
	devices []string
	rng     *rand.Rand
}

// NewRandomGenerator returns a generator over devices. A nil rng is seeded
// from the clock.
func NewRandomGenerator(devices []string, rng *rand.Rand) *RandomGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomGenerator{devices: devices, rng: rng}
}

// Generate implements Generator.
func (g *RandomGenerator) Generate(now time.Time) types.Reading {
	return types.Reading{
		DeviceID:    g.devices[g.rng.Intn(len(g.devices))],
		Temperature: null.FloatFrom(g.uniform(minTemperature, maxTemperature)),
		Vibration:   null.FloatFrom(g.uniform(minVibration, maxVibration)),
		Speed:       null.FloatFrom(g.uniform(minSpeed, maxSpeed)),
		Battery:     null.FloatFrom(float64(minBattery + g.rng.Intn(maxBattery-minBattery+1))),
		Timestamp:   now,
	}
}

// uniform draws from [lo, hi] rounded to two decimals.
func (g *RandomGenerator) uniform(lo, hi float64) float64 {
	v := lo + g.rng.Float64()*(hi-lo)
	return math.Round(v*100) / 100
}
