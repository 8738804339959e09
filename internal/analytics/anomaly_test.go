package analytics

import (
	"math"
	"testing"

	"github.com/guregu/null"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

func TestAddAnomalyScores_ConstantDataSuppressed(t *testing.T) {
	rows := Order(steady("R1", 30))
	AddAnomalyScores(rows, 20, 5, 2.0)

	for i, r := range rows {
		if r.AnomalyScore != 0 || r.Anomaly {
			t.Errorf("rows[%d]: score=%v anomaly=%v, want 0/false", i, r.AnomalyScore, r.Anomaly)
		}
		for _, sig := range types.Signals {
			if z := r.Z(sig); z != 0 {
				t.Errorf("rows[%d] %s_z = %v, want 0", i, sig, z)
			}
		}
	}
}

func TestAddAnomalyScores_HandComputed(t *testing.T) {
	readings := steady("R1", 5)
	readings[4].Temperature = null.FloatFrom(60) // others at 50
	rows := Order(readings)
	AddAnomalyScores(rows, 20, 5, 2.0)

	// Window {50,50,50,50,60}: mean 52, sample variance 80/4 = 20.
	wantZ := 8 / math.Sqrt(20)
	r := rows[4]
	if !almostEqual(r.TemperatureZ, wantZ, 1e-9) {
		t.Errorf("TemperatureZ = %v, want %v", r.TemperatureZ, wantZ)
	}
	if r.VibrationZ != 0 || r.SpeedZ != 0 || r.BatteryZ != 0 {
		t.Errorf("flat signals should have z=0, got vib=%v speed=%v batt=%v", r.VibrationZ, r.SpeedZ, r.BatteryZ)
	}
	if !almostEqual(r.AnomalyScore, wantZ/4, 1e-9) {
		t.Errorf("AnomalyScore = %v, want %v", r.AnomalyScore, wantZ/4)
	}
	if r.Anomaly {
		t.Errorf("Anomaly = true for |z| %.3f below threshold", wantZ)
	}
}

func TestAddAnomalyScores_SingleSignalSpike(t *testing.T) {
	readings := steady("R1", 20)
	readings[19].Speed = null.FloatFrom(100)
	rows := Order(readings)
	AddAnomalyScores(rows, 20, 5, 2.0)

	// 19 x 2.5 and one 100: mean 7.375, the spike sits ~4.25 deviations out.
	r := rows[19]
	if math.Abs(r.SpeedZ) <= 2 {
		t.Fatalf("SpeedZ = %v, want |z| > 2", r.SpeedZ)
	}
	if r.AnomalyScore > 2 {
		t.Fatalf("AnomalyScore = %v; spike should be masked in the mean", r.AnomalyScore)
	}
	if !r.Anomaly {
		t.Error("Anomaly = false, want true from the single-signal rule")
	}
}

func TestAddAnomalyScores_WarmUpIsZero(t *testing.T) {
	var readings []types.Reading
	for i := 0; i < 8; i++ {
		readings = append(readings, makeReading("R1", tick(i), float64(i*i), float64(i), 1, 100-float64(i)))
	}
	rows := Order(readings)
	AddAnomalyScores(rows, 20, 5, 2.0)

	for i := 0; i < 4; i++ {
		if rows[i].AnomalyScore != 0 {
			t.Errorf("rows[%d].AnomalyScore = %v, want 0 before min periods", i, rows[i].AnomalyScore)
		}
	}
	if rows[7].TemperatureZ == 0 {
		t.Error("rows[7].TemperatureZ = 0, want a defined deviation after warm-up")
	}
}

func TestAddAnomalyScores_ScoreIsMeanAbsZ(t *testing.T) {
	var readings []types.Reading
	for i := 0; i < 25; i++ {
		v := float64(i % 7)
		readings = append(readings, makeReading("R1", tick(i), v*3, 2-v/10, v, 100-v))
	}
	rows := Order(readings)
	AddAnomalyScores(rows, 20, 5, 2.0)

	for i, r := range rows {
		want := (math.Abs(r.TemperatureZ) + math.Abs(r.VibrationZ) + math.Abs(r.SpeedZ) + math.Abs(r.BatteryZ)) / 4
		if !almostEqual(r.AnomalyScore, want, 1e-12) {
			t.Errorf("rows[%d].AnomalyScore = %v, want %v", i, r.AnomalyScore, want)
		}
		if r.AnomalyScore < 0 {
			t.Errorf("rows[%d].AnomalyScore negative", i)
		}
	}
}

func TestZScore(t *testing.T) {
	tests := []struct {
		name             string
		value, mean, std null.Float
		want             float64
	}{
		{"defined", null.FloatFrom(14), null.FloatFrom(10), null.FloatFrom(2), 2},
		{"negative", null.FloatFrom(6), null.FloatFrom(10), null.FloatFrom(2), -2},
		{"zero deviation", null.FloatFrom(10), null.FloatFrom(10), null.FloatFrom(0), 0},
		{"missing std", null.FloatFrom(10), null.FloatFrom(10), null.Float{}, 0},
		{"missing value", null.Float{}, null.FloatFrom(10), null.FloatFrom(1), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := zScore(tc.value, tc.mean, tc.std); got != tc.want {
				t.Errorf("zScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAddAnomalyScores_Empty(t *testing.T) {
	AddAnomalyScores(nil, 20, 5, 2.0) // must not panic
}
