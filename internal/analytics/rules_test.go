package analytics

import (
	"testing"

	"github.com/guregu/null"
)

func TestAddAlerts_OverheatOnly(t *testing.T) {
	rows := rowsOf(
		makeReading("R1", tick(0), 40, 0.5, 2, 50),
		makeReading("R1", tick(1), 80, 0.5, 2, 50),
	)
	AddAlerts(rows, DefaultConfig().Thresholds)
	AddHealth(rows)

	r := rows[1]
	if !r.Overheat {
		t.Error("Overheat = false, want true")
	}
	if r.HighVibration || r.LowBattery || r.BatteryDrop {
		t.Errorf("unexpected flags: vib=%v low=%v drop=%v", r.HighVibration, r.LowBattery, r.BatteryDrop)
	}
	if r.Health != 70 {
		t.Errorf("Health = %d, want 70", r.Health)
	}
}

func TestAddAlerts_Boundaries(t *testing.T) {
	tests := []struct {
		name                  string
		temp, vib, batt       float64
		overheat, vibe, lowBt bool
	}{
		{"all nominal", 50, 1.0, 80, false, false, false},
		{"temp at threshold", 75, 1.0, 80, false, false, false},
		{"temp above threshold", 75.01, 1.0, 80, true, false, false},
		{"vibration at threshold", 50, 1.5, 80, false, false, false},
		{"vibration above threshold", 50, 1.51, 80, false, true, false},
		{"battery at threshold", 50, 1.0, 30, false, false, false},
		{"battery below threshold", 50, 1.0, 29, false, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows := rowsOf(makeReading("R1", tick(0), tc.temp, tc.vib, 1, tc.batt))
			AddAlerts(rows, DefaultConfig().Thresholds)
			r := rows[0]
			if r.Overheat != tc.overheat {
				t.Errorf("Overheat = %v, want %v", r.Overheat, tc.overheat)
			}
			if r.HighVibration != tc.vibe {
				t.Errorf("HighVibration = %v, want %v", r.HighVibration, tc.vibe)
			}
			if r.LowBattery != tc.lowBt {
				t.Errorf("LowBattery = %v, want %v", r.LowBattery, tc.lowBt)
			}
		})
	}
}

func TestAddAlerts_BatteryDrop(t *testing.T) {
	tests := []struct {
		name     string
		prev     float64
		cur      float64
		wantDrop bool
	}{
		{"drop of 11", 50, 39, true},
		{"drop of exactly 10", 50, 40, false},
		{"rise", 40, 90, false},
		{"unchanged", 60, 60, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows := rowsOf(
				makeReading("R1", tick(0), 50, 1, 1, tc.prev),
				makeReading("R2", tick(1), 50, 1, 1, tc.cur),
			)
			AddAlerts(rows, DefaultConfig().Thresholds)
			if rows[0].BatteryDrop {
				t.Error("first row BatteryDrop = true, want false")
			}
			if rows[1].BatteryDrop != tc.wantDrop {
				t.Errorf("BatteryDrop = %v, want %v", rows[1].BatteryDrop, tc.wantDrop)
			}
		})
	}
}

func TestAddAlerts_MissingOperandNeverFires(t *testing.T) {
	r := makeReading("R1", tick(0), 0, 0, 0, 0)
	r.Temperature = null.Float{}
	r.Battery = null.Float{}
	rows := rowsOf(r, r)

	AddAlerts(rows, DefaultConfig().Thresholds)
	for i, row := range rows {
		if row.HasAlert() {
			t.Errorf("rows[%d] has an alert with missing operands: %+v", i, row)
		}
	}
}

func TestAddAlerts_ThresholdsAreConfigurable(t *testing.T) {
	th := DefaultConfig().Thresholds
	th.OverheatTemp = 60
	th.LowBattery = 90

	rows := rowsOf(makeReading("R1", tick(0), 65, 0.5, 1, 85))
	AddAlerts(rows, th)

	if !rows[0].Overheat {
		t.Error("Overheat with threshold 60 and temp 65 = false, want true")
	}
	if !rows[0].LowBattery {
		t.Error("LowBattery with threshold 90 and battery 85 = false, want true")
	}
}

func TestCrosses(t *testing.T) {
	tests := []struct {
		v    float64
		op   string
		th   float64
		want bool
	}{
		{2, ">", 1, true},
		{1, ">", 1, false}, // strict
		{0, "<", 1, true},
		{1, "<", 1, false}, // strict
		{1, ">=", 1, false},
		{1, "", 1, false},
	}
	for _, tc := range tests {
		if got := crosses(tc.v, tc.op, tc.th); got != tc.want {
			t.Errorf("crosses(%v %q %v) = %v, want %v", tc.v, tc.op, tc.th, got, tc.want)
		}
	}
}
