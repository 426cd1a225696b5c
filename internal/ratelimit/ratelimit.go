// Package ratelimit keeps outbound calls inside an upstream's request quota
// using a sliding window, so an API key is throttled locally before the
// upstream starts answering 429.
package ratelimit

import (
	"context"
	"time"
)

// Quota is the number of requests allowed per window.
type Quota struct {
	Limit  int
	Window time.Duration
}

// Enabled reports whether the quota limits anything.
func (q Quota) Enabled() bool {
	return q.Limit > 0 && q.Window > 0
}

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether one more request under key fits the quota.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Key namespaces a quota key.
func Key(provider string) string {
	return "civicfin:quota:" + provider
}
