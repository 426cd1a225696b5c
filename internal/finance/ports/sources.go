//go:generate mockgen -destination=mocks/mocks.go -package=mocks civicfin/internal/finance/ports IdentifierSource,LegislatorDirectory,CandidateSearcher,CandidateSource,FinanceSource,EventPublisher

// Package ports declares what the finance domain needs from the outside
// world, so resolver and aggregator never import upstream clients.
package ports

import (
	"context"

	"civicfin/internal/finance/models"
)

// IdentifierSource maps a legislator id to the FEC candidate ids it has
// filed under, in preference order. Unknown legislators return
// sentinel.ErrNotFound or an empty slice; both mean "no answer here".
type IdentifierSource interface {
	FECIDs(ctx context.Context, legislatorID string) ([]string, error)
}

// LegislatorDirectory resolves a legislator id to its reference record.
type LegislatorDirectory interface {
	Legislator(ctx context.Context, legislatorID string) (models.LegislatorRef, error)
}

// SearchQuery filters a candidate name search. Zero fields are omitted.
type SearchQuery struct {
	Name   string
	State  string
	Office models.Office
	Cycle  int
}

// CandidateSearcher runs fuzzy candidate searches.
type CandidateSearcher interface {
	SearchCandidates(ctx context.Context, q SearchQuery) ([]models.Candidate, error)
}

// CandidateSource fetches a single candidate record by id.
type CandidateSource interface {
	Candidate(ctx context.Context, candidateID string) (models.Candidate, error)
}

// FinanceSource supplies the raw campaign-finance data for one candidate and cycle.
type FinanceSource interface {
	Totals(ctx context.Context, candidateID string, cycle int) (models.FinancialSummary, error)
	Contributions(ctx context.Context, candidateID string, cycle, limit int) ([]models.Transaction, error)
	Expenditures(ctx context.Context, candidateID string, cycle, limit int) ([]models.Transaction, error)
}
