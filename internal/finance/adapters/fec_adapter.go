package adapters

import (
	"context"
	"strconv"
	"strings"
	"time"

	"civicfin/internal/cache"
	"civicfin/internal/finance/models"
	"civicfin/internal/finance/ports"
	"civicfin/internal/sources/fec"
)

// Cache sites, used as metric labels.
const (
	SiteSearch        = "search"
	SiteCandidate     = "candidate"
	SiteTotals        = "totals"
	SiteContributions = "contributions"
	SiteExpenditures  = "expenditures"
	SiteProfile       = "profile"
)

// TTLs sets per-call-site cache lifetimes. Zero disables caching for a site.
type TTLs struct {
	Candidate    time.Duration
	Totals       time.Duration
	Transactions time.Duration
}

// DefaultTTLs returns the standard lifetimes.
func DefaultTTLs() TTLs {
	return TTLs{
		Candidate:    24 * time.Hour,
		Totals:       6 * time.Hour,
		Transactions: time.Hour,
	}
}

type fecAPI interface {
	SearchCandidates(ctx context.Context, q fec.SearchQuery) ([]models.Candidate, error)
	Candidate(ctx context.Context, candidateID string) (models.Candidate, error)
	Totals(ctx context.Context, candidateID string, cycle int) (models.FinancialSummary, error)
	Contributions(ctx context.Context, candidateID string, cycle, limit int) ([]models.Transaction, error)
	Expenditures(ctx context.Context, candidateID string, cycle, limit int) ([]models.Transaction, error)
}

// FECAdapter implements the candidate and finance ports over the OpenFEC
// client, reading through the cache keyed by (entity, id, cycle).
type FECAdapter struct {
	client      fecAPI
	cache       cache.Cache
	observer    cache.Observer
	ttl         TTLs
	searchLimit int
}

var (
	_ ports.CandidateSearcher = (*FECAdapter)(nil)
	_ ports.CandidateSource   = (*FECAdapter)(nil)
	_ ports.FinanceSource     = (*FECAdapter)(nil)
)

// FECOption configures an FECAdapter.
type FECOption func(*FECAdapter)

// WithCache enables read-through caching.
func WithCache(c cache.Cache, obs cache.Observer) FECOption {
	return func(a *FECAdapter) {
		a.cache = c
		a.observer = obs
	}
}

// WithTTLs overrides the default lifetimes.
func WithTTLs(ttl TTLs) FECOption {
	return func(a *FECAdapter) {
		a.ttl = ttl
	}
}

// WithSearchLimit caps search results per call.
func WithSearchLimit(n int) FECOption {
	return func(a *FECAdapter) {
		if n > 0 {
			a.searchLimit = n
		}
	}
}

// NewFECAdapter wraps client.
func NewFECAdapter(client fecAPI, opts ...FECOption) *FECAdapter {
	a := &FECAdapter{
		client:      client,
		ttl:         DefaultTTLs(),
		searchLimit: 20,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SearchCandidates runs a cached name search.
func (a *FECAdapter) SearchCandidates(ctx context.Context, q ports.SearchQuery) ([]models.Candidate, error) {
	query := fec.SearchQuery{
		Name:   q.Name,
		State:  q.State,
		Office: q.Office,
		Cycle:  q.Cycle,
		Limit:  a.searchLimit,
	}
	key := cache.Key(SiteSearch, strings.ToLower(q.Name), q.State, string(q.Office), strconv.Itoa(q.Cycle))
	return cache.Fetch(ctx, a.cache, a.observer, SiteSearch, key, a.ttl.Candidate,
		func(ctx context.Context) ([]models.Candidate, error) {
			return a.client.SearchCandidates(ctx, query)
		})
}

// Candidate fetches one candidate record.
func (a *FECAdapter) Candidate(ctx context.Context, candidateID string) (models.Candidate, error) {
	key := cache.Key(SiteCandidate, candidateID)
	return cache.Fetch(ctx, a.cache, a.observer, SiteCandidate, key, a.ttl.Candidate,
		func(ctx context.Context) (models.Candidate, error) {
			return a.client.Candidate(ctx, candidateID)
		})
}

// Totals fetches the cycle summary.
func (a *FECAdapter) Totals(ctx context.Context, candidateID string, cycle int) (models.FinancialSummary, error) {
	key := cache.Key(SiteTotals, candidateID, strconv.Itoa(cycle))
	return cache.Fetch(ctx, a.cache, a.observer, SiteTotals, key, a.ttl.Totals,
		func(ctx context.Context) (models.FinancialSummary, error) {
			return a.client.Totals(ctx, candidateID, cycle)
		})
}

// Contributions fetches up to limit itemized receipts.
func (a *FECAdapter) Contributions(ctx context.Context, candidateID string, cycle, limit int) ([]models.Transaction, error) {
	key := cache.Key(SiteContributions, candidateID, strconv.Itoa(cycle), strconv.Itoa(limit))
	return cache.Fetch(ctx, a.cache, a.observer, SiteContributions, key, a.ttl.Transactions,
		func(ctx context.Context) ([]models.Transaction, error) {
			return a.client.Contributions(ctx, candidateID, cycle, limit)
		})
}

// Expenditures fetches up to limit itemized disbursements.
func (a *FECAdapter) Expenditures(ctx context.Context, candidateID string, cycle, limit int) ([]models.Transaction, error) {
	key := cache.Key(SiteExpenditures, candidateID, strconv.Itoa(cycle), strconv.Itoa(limit))
	return cache.Fetch(ctx, a.cache, a.observer, SiteExpenditures, key, a.ttl.Transactions,
		func(ctx context.Context) ([]models.Transaction, error) {
			return a.client.Expenditures(ctx, candidateID, cycle, limit)
		})
}
