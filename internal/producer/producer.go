package producer

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// Writer is the append side of the reading store.
type Writer interface {
	Append(r types.Reading) error
}

// Generator produces one synthetic reading stamped with now.
type Generator interface {
	Generate(now time.Time) types.Reading
}

// Status is a point-in-time view of the producer.
type Status struct {
	Running  bool   `json:"running"`
	Error    string `json:"error,omitempty"`
	RunID    string `json:"run_id,omitempty"`
	Produced int    `json:"produced"`
}

// Producer appends a generated reading to a Writer once per interval.
// Start and Stop may be called from any goroutine, any number of times.
type Producer struct {
	w        Writer
	gen      Generator
	interval time.Duration
	now      func() time.Time // injectable for deterministic tests

	mu       sync.Mutex
	running  bool
	stop     chan struct{} // nil once Stop has signalled the current run
	done     chan struct{}
	lastErr  string
	runID    string
	produced int
}

// New creates a stopped Producer.
func New(w Writer, gen Generator, interval time.Duration) *Producer {
	return &Producer{w: w, gen: gen, interval: interval, now: time.Now}
}

// Start launches the production loop. It is a no-op while a loop is running.
// Each start clears the previous error and gets a fresh run id.
func (p *Producer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	p.running = true
	p.lastErr = ""
	p.produced = 0
	p.runID = uuid.NewString()
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	slog.Info("producer: started", "run_id", p.runID, "interval", p.interval)
	go p.loop(p.stop, p.done)
}

// Stop signals the loop to exit and waits up to two intervals for it to do
// so. It is a no-op when nothing is running.
func (p *Producer) Stop() {
	p.mu.Lock()
	if !p.running || p.stop == nil {
		p.mu.Unlock()
		return
	}
	close(p.stop)
	p.stop = nil
	done := p.done
	p.mu.Unlock()

	select {
	case <-done:
		slog.Info("producer: stopped")
	case <-time.After(2 * p.interval):
		slog.Warn("producer: loop did not exit in time", "wait", 2*p.interval)
	}
}

// Status reports whether the loop is running and the last error it saw.
func (p *Producer) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Running:  p.running,
		Error:    p.lastErr,
		RunID:    p.runID,
		Produced: p.produced,
	}
}

func (p *Producer) loop(stop, done chan struct{}) {
	defer func() {
		p.mu.Lock()
		if r := recover(); r != nil {
			p.lastErr = fmt.Sprintf("panic: %v", r)
			slog.Error("producer: loop crashed", "run_id", p.runID, "err", p.lastErr)
		}
		p.running = false
		p.mu.Unlock()
		close(done)
	}()

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		p.produceOne()

		select {
		case <-stop:
			return
		case <-t.C:
		}
	}
}

// produceOne generates and appends a single reading. An append error is
// recorded and the loop carries on.
func (p *Producer) produceOne() {
	r := p.gen.Generate(p.now())
	err := p.w.Append(r)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lastErr = err.Error()
		slog.Warn("producer: append failed", "device_id", r.DeviceID, "err", err)
		return
	}
	p.produced++
	slog.Debug("producer: reading appended", "device_id", r.DeviceID)
}
