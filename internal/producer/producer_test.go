package producer

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

const testInterval = 10 * time.Millisecond

// recordingWriter collects appended readings and optionally fails.
type recordingWriter struct {
	mu   sync.Mutex
	got  []types.Reading
	fail error
}

func (w *recordingWriter) Append(r types.Reading) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return w.fail
	}
	w.got = append(w.got, r)
	return nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.got)
}

// panicGenerator panics on its first call.
type panicGenerator struct{}

func (panicGenerator) Generate(time.Time) types.Reading { panic("sensor on fire") }

func newTestGenerator() *RandomGenerator {
	return NewRandomGenerator([]string{"R1", "R2"}, rand.New(rand.NewSource(7)))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartStop(t *testing.T) {
	w := &recordingWriter{}
	p := New(w, newTestGenerator(), testInterval)

	if p.Status().Running {
		t.Fatal("new producer reports running")
	}

	p.Start()
	waitFor(t, "three readings", func() bool { return w.count() >= 3 })

	st := p.Status()
	if !st.Running || st.RunID == "" || st.Produced < 3 {
		t.Errorf("Status while running: got %+v", st)
	}

	p.Stop()
	if p.Status().Running {
		t.Error("Status after Stop: still running")
	}

	n := w.count()
	time.Sleep(3 * testInterval)
	if w.count() != n {
		t.Errorf("readings appended after Stop: %d -> %d", n, w.count())
	}
}

func TestStart_Idempotent(t *testing.T) {
	p := New(&recordingWriter{}, newTestGenerator(), testInterval)
	defer p.Stop()

	p.Start()
	id := p.Status().RunID
	p.Start()
	if got := p.Status().RunID; got != id {
		t.Errorf("second Start changed run id: %q -> %q", id, got)
	}
}

func TestStop_Idempotent(t *testing.T) {
	p := New(&recordingWriter{}, newTestGenerator(), testInterval)
	p.Stop() // never started

	p.Start()
	p.Stop()
	p.Stop()
	if p.Status().Running {
		t.Error("Status after double Stop: still running")
	}
}

func TestRestart_NewRunID(t *testing.T) {
	p := New(&recordingWriter{}, newTestGenerator(), testInterval)

	p.Start()
	first := p.Status().RunID
	p.Stop()

	p.Start()
	defer p.Stop()
	if second := p.Status().RunID; second == first {
		t.Errorf("restart reused run id %q", first)
	}
}

func TestAppendError_RecordedLoopContinues(t *testing.T) {
	w := &recordingWriter{fail: errors.New("store unavailable")}
	p := New(w, newTestGenerator(), testInterval)

	p.Start()
	defer p.Stop()

	waitFor(t, "append error", func() bool { return p.Status().Error != "" })
	if st := p.Status(); !st.Running || st.Error != "store unavailable" {
		t.Errorf("Status after append error: got %+v", st)
	}

	w.mu.Lock()
	w.fail = nil
	w.mu.Unlock()
	waitFor(t, "recovery", func() bool { return w.count() > 0 })
}

func TestStart_ClearsPreviousError(t *testing.T) {
	w := &recordingWriter{fail: errors.New("boom")}
	p := New(w, newTestGenerator(), testInterval)

	p.Start()
	waitFor(t, "append error", func() bool { return p.Status().Error != "" })
	p.Stop()

	w.mu.Lock()
	w.fail = nil
	w.mu.Unlock()

	p.Start()
	defer p.Stop()
	if st := p.Status(); st.Error != "" {
		t.Errorf("Error after restart: got %q, want empty", st.Error)
	}
}

func TestGeneratorPanic_EndsLoop(t *testing.T) {
	p := New(&recordingWriter{}, panicGenerator{}, testInterval)
	p.Start()

	waitFor(t, "loop exit", func() bool { return !p.Status().Running })
	if st := p.Status(); !strings.Contains(st.Error, "sensor on fire") {
		t.Errorf("Error after panic: got %q", st.Error)
	}
	p.Stop() // no-op, must not block or panic
}

func TestRandomGenerator_Ranges(t *testing.T) {
	g := newTestGenerator()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		r := g.Generate(now)
		if r.DeviceID != "R1" && r.DeviceID != "R2" {
			t.Fatalf("unexpected device %q", r.DeviceID)
		}
		checkRange(t, "temperature", r.Temperature.Float64, minTemperature, maxTemperature)
		checkRange(t, "vibration", r.Vibration.Float64, minVibration, maxVibration)
		checkRange(t, "speed", r.Speed.Float64, minSpeed, maxSpeed)
		checkRange(t, "battery", r.Battery.Float64, minBattery, maxBattery)
		if b := r.Battery.Float64; b != float64(int(b)) {
			t.Fatalf("battery %v is not a whole percentage", b)
		}
		if !r.Timestamp.Equal(now) {
			t.Fatalf("timestamp %v, want %v", r.Timestamp, now)
		}
	}
}

func TestRandomGenerator_TwoDecimals(t *testing.T) {
	g := newTestGenerator()
	for i := 0; i < 200; i++ {
		v := g.Generate(time.Now()).Temperature.Float64
		if scaled := v * 100; math.Abs(scaled-math.Round(scaled)) > 1e-6 {
			t.Fatalf("temperature %v has more than two decimals", v)
		}
	}
}

func checkRange(t *testing.T, name string, v, lo, hi float64) {
	t.Helper()
	if v < lo || v > hi {
		t.Fatalf("%s = %v, out of [%v, %v]", name, v, lo, hi)
	}
}
