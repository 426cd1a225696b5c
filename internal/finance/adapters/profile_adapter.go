package adapters

import (
	"context"
	"time"

	"civicfin/internal/cache"
	"civicfin/internal/finance/ports"
)

type profileAPI interface {
	CandidateIDs(ctx context.Context, bioguideID string) ([]string, error)
}

// ProfileAdapter exposes the member-profile upstream as an identifier
// source for the profile resolution strategy.
type ProfileAdapter struct {
	client   profileAPI
	cache    cache.Cache
	observer cache.Observer
	ttl      time.Duration
}

var _ ports.IdentifierSource = (*ProfileAdapter)(nil)

// NewProfileAdapter wraps client. A nil cache disables caching.
func NewProfileAdapter(client profileAPI, c cache.Cache, obs cache.Observer, ttl time.Duration) *ProfileAdapter {
	return &ProfileAdapter{client: client, cache: c, observer: obs, ttl: ttl}
}

// FECIDs returns the candidate ids listed on the member profile.
func (a *ProfileAdapter) FECIDs(ctx context.Context, legislatorID string) ([]string, error) {
	key := cache.Key(SiteProfile, legislatorID)
	return cache.Fetch(ctx, a.cache, a.observer, SiteProfile, key, a.ttl,
		func(ctx context.Context) ([]string, error) {
			return a.client.CandidateIDs(ctx, legislatorID)
		})
}
