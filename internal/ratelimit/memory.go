package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-process sliding window. Instances sharing an API key
// should use RedisLimiter instead.
type MemoryLimiter struct {
	quota Quota
	now   func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemory creates a limiter enforcing q.
func NewMemory(q Quota) *MemoryLimiter {
	return &MemoryLimiter{quota: q, now: time.Now, windows: make(map[string][]time.Time)}
}

// WithClock overrides the time source.
func (m *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	m.now = now
	return m
}

// Allow records the request when it fits the window.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	if !m.quota.Enabled() {
		return Result{Allowed: true, Remaining: -1}, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	stamps := prune(m.windows[key], now.Add(-m.quota.Window))
	if len(stamps) >= m.quota.Limit {
		m.windows[key] = stamps
		return Result{Allowed: false, Remaining: 0, ResetAt: stamps[0].Add(m.quota.Window)}, nil
	}
	stamps = append(stamps, now)
	m.windows[key] = stamps
	return Result{
		Allowed:   true,
		Remaining: m.quota.Limit - len(stamps),
		ResetAt:   stamps[0].Add(m.quota.Window),
	}, nil
}

// prune drops timestamps at or before cutoff. stamps is ascending.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}
