package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxEntries caps the number of tracked clients per MemoryLimiter.
const DefaultMaxEntries = 10000

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket limiter keyed by client. Each
// client gets a bucket of Policy.Limit tokens refilled over Policy.Window.
type MemoryLimiter struct {
	policy     Policy
	maxEntries int
	now        func() time.Time

	mu        sync.Mutex
	entries   map[string]*memoryEntry
	lastSweep time.Time
}

// NewMemoryLimiter creates a limiter enforcing p.
func NewMemoryLimiter(p Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:     p,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		entries:    make(map[string]*memoryEntry),
	}
}

// WithMaxEntries sets how many clients are tracked before the oldest is
// evicted. Non-positive values keep the default.
func (m *MemoryLimiter) WithMaxEntries(n int) *MemoryLimiter {
	if n > 0 {
		m.maxEntries = n
	}
	return m
}

// Policy implements Limiter.
func (m *MemoryLimiter) Policy() Policy { return m.policy }

// Allow implements Limiter. It never returns an error.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	e, ok := m.entries[key]
	if !ok {
		every := m.policy.Window / time.Duration(max(m.policy.Limit, 1))
		e = &memoryEntry{limiter: rate.NewLimiter(rate.Every(every), m.policy.Limit)}
		m.entries[key] = e
	}
	e.lastSeen = now

	d := Decision{Limit: m.policy.Limit}
	res := e.limiter.ReserveN(now, 1)
	if !res.OK() {
		d.RetryAfter = m.policy.Window
		return d, nil
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		d.RetryAfter = delay
		return d, nil
	}

	d.Allowed = true
	d.Remaining = max(int(e.limiter.TokensAt(now)), 0)
	return d, nil
}

// sweep drops clients idle for a full window; their buckets are full again and
// equivalent to a fresh entry. Must be called with mu held.
func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.policy.Window && len(m.entries) < m.maxEntries {
		return
	}
	m.lastSweep = now

	for k, e := range m.entries {
		if now.Sub(e.lastSeen) >= m.policy.Window {
			delete(m.entries, k)
		}
	}

	for len(m.entries) >= m.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range m.entries {
			if oldestKey == "" || e.lastSeen.Before(oldest) {
				oldestKey, oldest = k, e.lastSeen
			}
		}
		delete(m.entries, oldestKey)
	}
}

// Len returns the number of tracked clients.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
