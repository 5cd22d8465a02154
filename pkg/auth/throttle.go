package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultMaxFailures is the number of failures that trips the throttle
	DefaultMaxFailures = 3
	// DefaultThrottleWindow is how long failures are remembered, counted from the first one
	DefaultThrottleWindow = time.Minute
)

// Throttle tracks failed login attempts per identifier
type Throttle interface {
	RecordFailure(ctx context.Context, identifier string) error
	IsThrottled(ctx context.Context, identifier string) (bool, error)
	Reset(ctx context.Context, identifier string) error
}

// NormalizeIdentifier lowercases and trims an email so throttling is case-insensitive
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

type failureRecord struct {
	count     int
	expiresAt time.Time
}

// MemoryThrottle is an in-process Throttle. Entries expire lazily on access and
// are also removed by a periodic sweep.
type MemoryThrottle struct {
	maxFailures int
	window      time.Duration
	clock       clockwork.Clock

	mu      sync.Mutex
	records map[string]*failureRecord
}

// NewMemoryThrottle creates an in-memory throttle. Non-positive limits use the defaults.
func NewMemoryThrottle(maxFailures int, window time.Duration, clock clockwork.Clock) *MemoryThrottle {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryThrottle{
		maxFailures: maxFailures,
		window:      window,
		clock:       clock,
		records:     make(map[string]*failureRecord),
	}
}

// RecordFailure counts one failure. The window starts at the first failure and
// is not extended by later ones.
func (t *MemoryThrottle) RecordFailure(_ context.Context, identifier string) error {
	key := NormalizeIdentifier(identifier)
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[key]
	if !ok || !now.Before(rec.expiresAt) {
		t.records[key] = &failureRecord{count: 1, expiresAt: now.Add(t.window)}
		return nil
	}
	rec.count++
	return nil
}

// IsThrottled reports whether identifier has reached the failure limit inside the window
func (t *MemoryThrottle) IsThrottled(_ context.Context, identifier string) (bool, error) {
	key := NormalizeIdentifier(identifier)
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[key]
	if !ok {
		return false, nil
	}
	if !now.Before(rec.expiresAt) {
		delete(t.records, key)
		return false, nil
	}
	return rec.count >= t.maxFailures, nil
}

// Reset forgets identifier's failures
func (t *MemoryThrottle) Reset(_ context.Context, identifier string) error {
	t.mu.Lock()
	delete(t.records, NormalizeIdentifier(identifier))
	t.mu.Unlock()
	return nil
}

// Len returns the number of tracked identifiers
func (t *MemoryThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Sweep removes expired records and returns how many were dropped
func (t *MemoryThrottle) Sweep() int {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, rec := range t.records {
		if !now.Before(rec.expiresAt) {
			delete(t.records, key)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done
func (t *MemoryThrottle) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = t.window
	}
	ticker := t.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			t.Sweep()
		}
	}
}
