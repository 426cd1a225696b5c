package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"civicfin/internal/finance/models"
)

// FinanceResponse is the HTTP response for GET /finance.
type FinanceResponse struct {
	CandidateID             string               `json:"candidateId"`
	Cycle                   int                  `json:"cycle"`
	TotalRaised             float64              `json:"totalRaised"`
	TotalSpent              float64              `json:"totalSpent"`
	CashOnHand              float64              `json:"cashOnHand"`
	IndividualContributions float64              `json:"individualContributions"`
	PACContributions        float64              `json:"pacContributions"`
	PartyContributions      float64              `json:"partyContributions"`
	CandidateContributions  float64              `json:"candidateContributions"`
	IndustryBreakdown       []IndustryResponse   `json:"industryBreakdown"`
	GeographicBreakdown     []GeographicResponse `json:"geographicBreakdown"`
	Spending                SpendingResponse     `json:"spending"`
	DataQuality             models.DataQuality   `json:"dataQuality"`
	Legislator              models.LegislatorRef `json:"legislator"`
	CandidateName           string               `json:"candidateName"`
	Resolution              models.Resolution    `json:"resolution"`
	CycleInferred           bool                 `json:"cycleInferred"`
	Partial                 bool                 `json:"partial"`
	CoverageEndDate         *time.Time           `json:"coverageEndDate,omitempty"`
	LastUpdated             time.Time            `json:"lastUpdated"`
}

// IndustryResponse is one industry bucket.
type IndustryResponse struct {
	Industry     string             `json:"industry"`
	Amount       float64            `json:"amount"`
	Percentage   float64            `json:"percentage"`
	Count        int                `json:"count"`
	TopEmployers []EmployerResponse `json:"topEmployers"`
}

// EmployerResponse is one employer inside an industry bucket.
type EmployerResponse struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// GeographicResponse is one state bucket.
type GeographicResponse struct {
	State       string  `json:"state"`
	Amount      float64 `json:"amount"`
	Percentage  float64 `json:"percentage"`
	Count       int     `json:"count"`
	IsHomeState bool    `json:"isHomeState"`
}

// SpendingResponse summarizes analyzed expenditures.
type SpendingResponse struct {
	Available     bool            `json:"available"`
	TotalAnalyzed int             `json:"totalAnalyzed"`
	Amount        float64         `json:"amount"`
	TopPayees     []PayeeResponse `json:"topPayees"`
}

// PayeeResponse is one expenditure recipient.
type PayeeResponse struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// CandidateResponse is the HTTP response for GET /candidate.
type CandidateResponse struct {
	Legislator models.LegislatorRef     `json:"legislator"`
	Candidate  models.ResolvedCandidate `json:"candidate"`
	Resolution models.Resolution        `json:"resolution"`
}

// FromReport converts a finance report to its HTTP response. Breakdown
// slices are never nil so clients always see arrays.
func FromReport(r *models.FinanceReport) *FinanceResponse {
	agg := r.Aggregate
	s := agg.Summary
	resp := &FinanceResponse{
		CandidateID:             r.Candidate.CandidateID,
		Cycle:                   r.Cycle,
		TotalRaised:             money(s.TotalReceipts),
		TotalSpent:              money(s.TotalDisbursements),
		CashOnHand:              money(s.CashOnHand),
		IndividualContributions: money(s.IndividualContrib),
		PACContributions:        money(s.PACContrib),
		PartyContributions:      money(s.PartyContrib),
		CandidateContributions:  money(s.CandidateContrib),
		IndustryBreakdown:       make([]IndustryResponse, 0, len(agg.Industry)),
		GeographicBreakdown:     make([]GeographicResponse, 0, len(agg.Geography)),
		Spending: SpendingResponse{
			Available:     agg.Spending.Available,
			TotalAnalyzed: agg.Spending.TotalAnalyzed,
			Amount:        money(agg.Spending.Amount),
			TopPayees:     make([]PayeeResponse, 0, len(agg.Spending.TopPayees)),
		},
		DataQuality:     agg.Quality,
		Legislator:      r.Legislator,
		CandidateName:   r.Candidate.Name,
		Resolution:      r.Resolution,
		CycleInferred:   r.CycleInferred,
		Partial:         agg.Partial,
		CoverageEndDate: s.CoverageEndDate,
		LastUpdated:     r.LastUpdated,
	}
	for _, e := range agg.Industry {
		emps := make([]EmployerResponse, 0, len(e.TopEmployers))
		for _, emp := range e.TopEmployers {
			emps = append(emps, EmployerResponse{Name: emp.Name, Amount: money(emp.Amount), Count: emp.Count})
		}
		resp.IndustryBreakdown = append(resp.IndustryBreakdown, IndustryResponse{
			Industry:     e.Industry,
			Amount:       money(e.Amount),
			Percentage:   e.Percentage,
			Count:        e.Count,
			TopEmployers: emps,
		})
	}
	for _, g := range agg.Geography {
		resp.GeographicBreakdown = append(resp.GeographicBreakdown, GeographicResponse{
			State:       g.State,
			Amount:      money(g.Amount),
			Percentage:  g.Percentage,
			Count:       g.Count,
			IsHomeState: g.IsHomeState,
		})
	}
	for _, p := range agg.Spending.TopPayees {
		resp.Spending.TopPayees = append(resp.Spending.TopPayees, PayeeResponse{
			Name:       p.Name,
			Amount:     money(p.Amount),
			Percentage: p.Percentage,
			Count:      p.Count,
		})
	}
	return resp
}

// FromCandidateReport converts a resolution to its HTTP response.
func FromCandidateReport(r *models.CandidateReport) *CandidateResponse {
	return &CandidateResponse{
		Legislator: r.Legislator,
		Candidate:  r.Candidate,
		Resolution: r.Resolution,
	}
}

// money renders a cents-precise amount as a JSON number.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
