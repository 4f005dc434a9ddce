// Package ratelimit implements fixed-window request limiting keyed by
// client identity. Handlers receive a Limiter by injection so tests can
// substitute their own policy.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // zero when Allowed
}

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	Allow(key string) Decision
}

// maxEntries bounds the window map so unbounded key cardinality cannot
// grow memory between cleanups.
const maxEntries = 10000

type entry struct {
	count   int
	resetAt time.Time
}

// Window is a fixed-window Limiter: up to limit requests per key per
// window, counters resetting at window boundaries.
type Window struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

// NewWindow creates a fixed-window limiter allowing limit requests per
// window duration for each key.
func NewWindow(limit int, window time.Duration) *Window {
	return &Window{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow implements Limiter.
func (w *Window) Allow(key string) Decision {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	e, ok := w.entries[key]
	if !ok || now.After(e.resetAt) {
		if !ok && len(w.entries) >= maxEntries {
			w.evictExpired(now)
		}
		w.entries[key] = &entry{count: 1, resetAt: now.Add(w.window)}
		return Decision{Allowed: true, Remaining: w.limit - 1}
	}

	if e.count >= w.limit {
		return Decision{Allowed: false, RetryAfter: e.resetAt.Sub(now)}
	}
	e.count++
	return Decision{Allowed: true, Remaining: w.limit - e.count}
}

// Cleanup drops expired entries. Run it periodically; Allow only evicts
// under memory pressure.
func (w *Window) Cleanup() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evictExpired(w.now())
}

func (w *Window) evictExpired(now time.Time) {
	for key, e := range w.entries {
		if now.After(e.resetAt) {
			delete(w.entries, key)
		}
	}
}
