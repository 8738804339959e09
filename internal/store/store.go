package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sensorpipe/sensorpipe/internal/analytics"
	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// entry is a reading together with the time it was appended.
type entry struct {
	reading    types.Reading
	receivedAt time.Time
}

// Store is a thread-safe, append-only in-memory log of readings.
// Readings leave the log only through eviction: when they are older than the
// retention period, or when the log grows past maxReadings.
type Store struct {
	mu          sync.RWMutex
	entries     []entry
	retention   time.Duration
	maxReadings int
	now         func() time.Time // injectable for deterministic tests
}

// New creates a Store. A zero retention keeps readings forever; a zero
// maxReadings leaves the log unbounded.
func New(retention time.Duration, maxReadings int) *Store {
	return &Store{
		retention:   retention,
		maxReadings: maxReadings,
		now:         time.Now,
	}
}

// Append adds r to the end of the log. If the log is full the oldest
// readings are dropped to make room. A reading the pipeline would reject is
// refused with an error wrapping analytics.ErrMalformedReading, so a single
// bad producer cannot poison every later snapshot.
func (s *Store) Append(r types.Reading) error {
	if err := analytics.Validate([]types.Reading{r}); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{reading: r, receivedAt: s.now()})
	s.trimLocked()
	return nil
}

// Snapshot returns a copy of every reading currently held, in the order they
// were appended. Later appends do not affect the returned slice.
func (s *Store) Snapshot() []types.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Reading, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.reading
	}
	return out
}

// Count returns the number of readings currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Devices returns the distinct device ids in the log, sorted.
func (s *Store) Devices() []string {
	s.mu.RLock()
	seen := make(map[string]struct{})
	for _, e := range s.entries {
		seen[e.reading.DeviceID] = struct{}{}
	}
	s.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Evict removes readings appended at or before now minus retention, then
// trims the log to maxReadings. It returns the number of readings removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	if s.retention > 0 {
		cutoff := now.Add(-s.retention)
		// Entries are in append order, so receivedAt is non-decreasing.
		n := sort.Search(len(s.entries), func(i int) bool {
			return s.entries[i].receivedAt.After(cutoff)
		})
		s.dropLocked(n)
		removed += n
	}
	return removed + s.trimLocked()
}

// trimLocked drops the oldest entries beyond maxReadings. Callers hold mu.
func (s *Store) trimLocked() int {
	if s.maxReadings <= 0 || len(s.entries) <= s.maxReadings {
		return 0
	}
	n := len(s.entries) - s.maxReadings
	s.dropLocked(n)
	return n
}

// dropLocked removes the first n entries, copying the rest so the backing
// array does not pin evicted readings. Callers hold mu.
func (s *Store) dropLocked(n int) {
	if n <= 0 {
		return
	}
	rest := make([]entry, len(s.entries)-n)
	copy(rest, s.entries[n:])
	s.entries = rest
}

// Run starts the background eviction loop. It ticks at half the retention
// period (minimum 1 second) and blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.retention / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted readings", "count", n, "remaining", s.Count())
			}
		}
	}
}
