package protection

import (
	"context"
	"sync"
	"time"
)

// WindowResult is the state of a sliding-window bucket after one hit.
type WindowResult struct {
	Allowed   bool
	Remaining int
	// Reset is when the oldest counted request leaves the window.
	Reset time.Time
}

// WindowStore counts requests per key over a sliding window. A hit that would
// exceed max is rejected and not recorded.
type WindowStore interface {
	Hit(ctx context.Context, key string, window time.Duration, max int, now time.Time) (WindowResult, error)
}

// MemoryWindow is an in-process sliding log. Counters are lost on restart and
// are not shared between instances.
type MemoryWindow struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	maxIdle time.Duration
}

// NewMemoryWindow returns an empty store. Keys idle for longer than maxIdle
// are dropped by Cleanup.
func NewMemoryWindow(maxIdle time.Duration) *MemoryWindow {
	if maxIdle <= 0 {
		maxIdle = 2 * time.Minute
	}
	return &MemoryWindow{hits: make(map[string][]time.Time), maxIdle: maxIdle}
}

func (w *MemoryWindow) Hit(ctx context.Context, key string, window time.Duration, max int, now time.Time) (WindowResult, error) {
	if err := ctx.Err(); err != nil {
		return WindowResult{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	log := prune(w.hits[key], now.Add(-window))
	if len(log) >= max {
		w.hits[key] = log
		return WindowResult{Allowed: false, Remaining: 0, Reset: log[0].Add(window)}, nil
	}

	log = append(log, now)
	w.hits[key] = log
	return WindowResult{Allowed: true, Remaining: max - len(log), Reset: log[0].Add(window)}, nil
}

// Cleanup removes keys with no hit newer than maxIdle.
func (w *MemoryWindow) Cleanup(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.maxIdle)
	for key, log := range w.hits {
		if len(log) == 0 || !log[len(log)-1].After(cutoff) {
			delete(w.hits, key)
		}
	}
}

// Run calls Cleanup every interval until ctx is cancelled.
func (w *MemoryWindow) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			w.Cleanup(now)
		}
	}
}

func (w *MemoryWindow) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.hits)
}

// prune drops timestamps at or before cutoff. log is ordered oldest first.
func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return log
	}
	return append(log[:0], log[i:]...)
}
