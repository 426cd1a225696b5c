// Package cache is the injected key/value cache behind every upstream call
// site and the final report. Backends store opaque bytes with a TTL; Fetch
// layers JSON read-through on top. A failing cache never fails a request:
// read errors are treated as misses and write errors are dropped.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Cache stores opaque values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Observer receives lookup outcomes: "hit", "miss" or "error".
type Observer interface {
	ObserveCache(site, outcome string)
}

// Key joins parts into a namespaced key.
func Key(parts ...string) string {
	return "civicfin:" + strings.Join(parts, ":")
}

// Fetch returns the cached value for key or calls load and stores its
// result. Only successful loads are cached. A nil Cache always loads.
func Fetch[T any](ctx context.Context, c Cache, obs Observer, site, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c != nil {
		raw, ok, err := c.Get(ctx, key)
		switch {
		case err != nil:
			observe(obs, site, "error")
		case ok:
			var v T
			if json.Unmarshal(raw, &v) == nil {
				observe(obs, site, "hit")
				return v, nil
			}
			observe(obs, site, "error")
		default:
			observe(obs, site, "miss")
		}
	}

	v, err := load(ctx)
	if err != nil || c == nil || ttl <= 0 {
		return v, err
	}
	if raw, mErr := json.Marshal(v); mErr == nil {
		_ = c.Set(ctx, key, raw, ttl)
	}
	return v, nil
}

func observe(obs Observer, site, outcome string) {
	if obs != nil {
		obs.ObserveCache(site, outcome)
	}
}
