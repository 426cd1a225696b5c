package resolver

import (
	"context"

	"civicfin/internal/finance/models"
)

// Request carries one resolution attempt across strategies. Search results
// are memoized so the strict and loose search strategies share a single
// bounded fan-out.
type Request struct {
	Legislator models.LegislatorRef

	searched  bool
	results   []models.Candidate
	searchErr error
}

// NewRequest starts a resolution for legislator.
func NewRequest(legislator models.LegislatorRef) *Request {
	return &Request{Legislator: legislator}
}

// Search runs fn at most once and returns its memoized results.
func (r *Request) Search(ctx context.Context, fn func(ctx context.Context) ([]models.Candidate, error)) ([]models.Candidate, error) {
	if !r.searched {
		r.results, r.searchErr = fn(ctx)
		r.searched = true
	}
	return r.results, r.searchErr
}

// SearchResults returns whatever a previous Search produced.
func (r *Request) SearchResults() ([]models.Candidate, bool) {
	return r.results, r.searched
}
