package models

import "time"

// AggregateResult is the aggregator output for one candidate and cycle.
// Partial is set when totals are authoritative but transaction detail could
// not be obtained; breakdowns are then empty, never synthesized.
type AggregateResult struct {
	CandidateID string            `json:"candidateId"`
	Cycle       int               `json:"cycle"`
	Summary     FinancialSummary  `json:"summary"`
	Industry    []IndustryEntry   `json:"industry"`
	Geography   []GeographicEntry `json:"geography"`
	Spending    SpendingSummary   `json:"spending"`
	Quality     DataQuality       `json:"quality"`
	Partial     bool              `json:"partial"`
}

// FinanceReport is the orchestrated response for one legislator and cycle.
// It is the only value that outlives a request, through the report cache.
type FinanceReport struct {
	Legislator    LegislatorRef     `json:"legislator"`
	Candidate     ResolvedCandidate `json:"candidate"`
	Resolution    Resolution        `json:"resolution"`
	Cycle         int               `json:"cycle"`
	CycleInferred bool              `json:"cycleInferred"`
	Aggregate     AggregateResult   `json:"aggregate"`
	LastUpdated   time.Time         `json:"lastUpdated"`
}

// CandidateReport is the resolution outcome alone, without finance data.
type CandidateReport struct {
	Legislator LegislatorRef     `json:"legislator"`
	Candidate  ResolvedCandidate `json:"candidate"`
	Resolution Resolution        `json:"resolution"`
}
