// Package ratelimit implements fixed-window request counting keyed by
// (client, rule). Buckets live in process memory; a multi-process deployment
// would need to swap the map for a store with atomic get-and-update.
package ratelimit

import (
	"sync"
	"time"
)

// Decision reports the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before the window
// reopens. Never negative.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

type bucket struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
	windowEnd   time.Time
}

// Limiter tracks request counts per client per named rule. Safe for
// concurrent use; checks against unrelated buckets never serialize on a
// shared lock.
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New returns a limiter backed by the wall clock.
func New() *Limiter {
	return NewWithClock(time.Now)
}

// NewWithClock lets tests drive window expiry deterministically.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

// Allow consumes one request unit for clientKey under rule and reports
// whether it is admitted. The check-then-update is atomic per bucket: two
// concurrent callers can never both observe an expired window and reset it,
// losing a count. Denial is a normal outcome, not an error.
//
// The window is fixed, not sliding: a burst at a window boundary can admit
// up to twice rule.Max across the two adjacent windows.
func (l *Limiter) Allow(clientKey string, rule Rule) Decision {
	b := l.bucket(rule.Name + "|" + clientKey)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	if b.windowEnd.IsZero() || !now.Before(b.windowEnd) {
		// Fresh bucket or expired window. A request landing exactly at
		// windowEnd opens the next window.
		b.windowStart = now
		b.windowEnd = now.Add(rule.Window)
		b.count = 1
	} else {
		b.count++
	}

	remaining := rule.Max - b.count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   b.count <= rule.Max,
		Limit:     rule.Max,
		Remaining: remaining,
		ResetAt:   b.windowEnd,
	}
}

func (l *Limiter) bucket(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[key]; ok {
		return b
	}
	b = &bucket{}
	l.buckets[key] = b
	return b
}

// PruneExpired evicts buckets whose window closed more than olderThan ago
// and returns how many were removed. An Allow racing an eviction simply
// recreates the bucket with a fresh window, which is indistinguishable from
// the expired-window path.
func (l *Limiter) PruneExpired(olderThan time.Duration) int {
	cutoff := l.now().Add(-olderThan)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		b.mu.Lock()
		stale := !b.windowEnd.IsZero() && b.windowEnd.Before(cutoff)
		b.mu.Unlock()
		if stale {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}
