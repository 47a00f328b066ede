package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestAllowWithinWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(fixedClock(&now))
	rule := Rule{Name: "chat", Max: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		d := l.Allow("10.0.0.1", rule)
		if !d.Allowed {
			t.Fatalf("request %d: expected allowed", i+1)
		}
		if want := 3 - (i + 1); d.Remaining != want {
			t.Fatalf("request %d: remaining = %d, want %d", i+1, d.Remaining, want)
		}
	}

	d := l.Allow("10.0.0.1", rule)
	if d.Allowed {
		t.Fatal("fourth request should be denied")
	}
	if d.Remaining != 0 {
		t.Fatalf("denied decision remaining = %d, want 0", d.Remaining)
	}
	if want := now.Add(time.Minute); !d.ResetAt.Equal(want) {
		t.Fatalf("ResetAt = %v, want %v", d.ResetAt, want)
	}
}

func TestWindowExpiryResetsCount(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(fixedClock(&now))
	rule := Rule{Name: "search", Max: 2, Window: time.Minute}

	l.Allow("c", rule)
	l.Allow("c", rule)
	if d := l.Allow("c", rule); d.Allowed {
		t.Fatal("expected denial inside window")
	}

	now = now.Add(61 * time.Second)
	d := l.Allow("c", rule)
	if !d.Allowed {
		t.Fatal("expected fresh window after expiry")
	}
	if d.Remaining != 1 {
		t.Fatalf("remaining after reset = %d, want 1", d.Remaining)
	}
}

func TestRequestExactlyAtResetStartsFreshWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(fixedClock(&now))
	rule := Rule{Name: "chat", Max: 1, Window: time.Minute}

	first := l.Allow("c", rule)
	if !first.Allowed {
		t.Fatal("first request should be allowed")
	}

	now = first.ResetAt
	d := l.Allow("c", rule)
	if !d.Allowed {
		t.Fatal("request at ResetAt should open a new window")
	}
	if want := now.Add(time.Minute); !d.ResetAt.Equal(want) {
		t.Fatalf("new window ResetAt = %v, want %v", d.ResetAt, want)
	}
}

func TestBucketsAreIndependent(t *testing.T) {
	l := New()
	rule := Rule{Name: "chat", Max: 1, Window: time.Minute}

	if d := l.Allow("a", rule); !d.Allowed {
		t.Fatal("client a first request denied")
	}
	if d := l.Allow("a", rule); d.Allowed {
		t.Fatal("client a second request should be denied")
	}
	if d := l.Allow("b", rule); !d.Allowed {
		t.Fatal("client b should have its own bucket")
	}

	// Same client, different rule name is also a distinct bucket.
	other := Rule{Name: "search", Max: 1, Window: time.Minute}
	if d := l.Allow("a", other); !d.Allowed {
		t.Fatal("distinct rule should not share the chat bucket")
	}
}

func TestConcurrentAllowNeverOverAdmits(t *testing.T) {
	l := New()
	rule := Rule{Name: "chat", Max: 50, Window: time.Minute}

	const workers = 20
	const perWorker = 10

	var wg sync.WaitGroup
	allowed := make(chan struct{}, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if d := l.Allow("shared", rule); d.Allowed {
					allowed <- struct{}{}
				}
			}
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for range allowed {
		count++
	}
	if count != rule.Max {
		t.Fatalf("admitted %d requests, want exactly %d", count, rule.Max)
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d := Decision{ResetAt: now.Add(42 * time.Second)}

	if got := d.RetryAfter(now); got != 42*time.Second {
		t.Fatalf("RetryAfter = %v, want 42s", got)
	}
	if got := d.RetryAfter(now.Add(time.Minute)); got != 0 {
		t.Fatalf("RetryAfter past reset = %v, want 0", got)
	}
}

func TestPruneExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(fixedClock(&now))
	rule := Rule{Name: "chat", Max: 5, Window: time.Minute}

	l.Allow("stale", rule)
	now = now.Add(30 * time.Minute)
	l.Allow("fresh", rule)

	if removed := l.PruneExpired(10 * time.Minute); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	// The fresh bucket must keep its count.
	d := l.Allow("fresh", rule)
	if d.Remaining != 3 {
		t.Fatalf("fresh bucket remaining = %d, want 3", d.Remaining)
	}
}

func TestRuleString(t *testing.T) {
	r := Rule{Name: "chat", Max: 10, Window: time.Minute}
	if got := r.String(); got != "10/minute" {
		t.Fatalf("String() = %q, want %q", got, "10/minute")
	}
	r = Rule{Name: "burst", Max: 5, Window: 30 * time.Second}
	if got := r.String(); got != "5/30s" {
		t.Fatalf("String() = %q, want %q", got, "5/30s")
	}
}
