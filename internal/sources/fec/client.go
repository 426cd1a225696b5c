// Package fec is the client for the OpenFEC public campaign-finance API:
// candidate search and lookup, per-cycle totals, and itemized receipts
// (schedule A) and disbursements (schedule B).
package fec

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"civicfin/internal/finance/models"
	"civicfin/internal/sources/providers"
)

const (
	ProviderID = "fec"

	// maxPerPage is the API's page-size ceiling.
	maxPerPage = 100

	// DefaultBaseURL is the public OpenFEC endpoint.
	DefaultBaseURL = "https://api.open.fec.gov/v1"
)

// getter is the transport; *providers.JSONClient satisfies it.
type getter interface {
	Get(ctx context.Context, endpoint, path string, query url.Values, out any) error
}

// Client talks to OpenFEC.
type Client struct {
	http getter
}

// New wraps a configured JSON client.
func New(http getter) *Client {
	return &Client{http: http}
}

// SearchQuery filters a candidate search. Zero fields are omitted.
type SearchQuery struct {
	Name   string
	State  string
	Office models.Office
	Cycle  int
	Limit  int
}

// SearchCandidates runs a name search.
func (c *Client) SearchCandidates(ctx context.Context, q SearchQuery) ([]models.Candidate, error) {
	params := url.Values{}
	params.Set("q", q.Name)
	if q.State != "" {
		params.Set("state", strings.ToUpper(q.State))
	}
	if q.Office != "" {
		params.Set("office", string(q.Office))
	}
	if q.Cycle != 0 {
		params.Set("cycle", strconv.Itoa(q.Cycle))
	}
	params.Set("per_page", strconv.Itoa(pageSize(q.Limit, 20)))
	params.Set("sort", "-receipts")

	var resp candidatesResponse
	if err := c.http.Get(ctx, "candidates.search", "/candidates/search/", params, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, toCandidate(r))
	}
	return out, nil
}

// Candidate fetches one candidate by id.
func (c *Client) Candidate(ctx context.Context, candidateID string) (models.Candidate, error) {
	var resp candidatesResponse
	path := "/candidate/" + url.PathEscape(candidateID) + "/"
	if err := c.http.Get(ctx, "candidate", path, nil, &resp); err != nil {
		return models.Candidate{}, err
	}
	if len(resp.Results) == 0 {
		return models.Candidate{}, providers.NewProviderError(providers.ErrorNotFound, ProviderID,
			"candidate "+candidateID+" not found", nil)
	}
	return toCandidate(resp.Results[0]), nil
}

// Totals fetches the authoritative totals for a candidate and cycle.
func (c *Client) Totals(ctx context.Context, candidateID string, cycle int) (models.FinancialSummary, error) {
	params := url.Values{}
	params.Set("cycle", strconv.Itoa(cycle))
	params.Set("election_full", "false")

	var resp totalsResponse
	path := "/candidate/" + url.PathEscape(candidateID) + "/totals/"
	if err := c.http.Get(ctx, "candidate.totals", path, params, &resp); err != nil {
		return models.FinancialSummary{}, err
	}
	for _, r := range resp.Results {
		if r.Cycle == cycle || r.Cycle == 0 {
			return toSummary(r, cycle), nil
		}
	}
	return models.FinancialSummary{}, providers.NewProviderError(providers.ErrorNotFound, ProviderID,
		fmt.Sprintf("no totals for %s in %d", candidateID, cycle), nil)
}

// Contributions returns up to limit itemized receipts to the candidate's
// principal committees, largest first.
func (c *Client) Contributions(ctx context.Context, candidateID string, cycle, limit int) ([]models.Transaction, error) {
	committees, err := c.committees(ctx, candidateID, cycle)
	if err != nil {
		return nil, err
	}
	out := make([]models.Transaction, 0, limit)
	for _, committeeID := range committees {
		if len(out) >= limit {
			break
		}
		page, err := c.scheduleA(ctx, committeeID, cycle, limit-len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}

// Expenditures returns up to limit itemized disbursements, largest first.
func (c *Client) Expenditures(ctx context.Context, candidateID string, cycle, limit int) ([]models.Transaction, error) {
	committees, err := c.committees(ctx, candidateID, cycle)
	if err != nil {
		return nil, err
	}
	out := make([]models.Transaction, 0, limit)
	for _, committeeID := range committees {
		if len(out) >= limit {
			break
		}
		page, err := c.scheduleB(ctx, committeeID, cycle, limit-len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}

// committees returns the principal (P) then authorized (A) committee ids.
// A candidate with no committees has no itemized transactions.
func (c *Client) committees(ctx context.Context, candidateID string, cycle int) ([]string, error) {
	params := url.Values{}
	params.Set("cycle", strconv.Itoa(cycle))
	params.Add("designation", "P")
	params.Add("designation", "A")

	var resp committeesResponse
	path := "/candidate/" + url.PathEscape(candidateID) + "/committees/"
	if err := c.http.Get(ctx, "candidate.committees", path, params, &resp); err != nil {
		if providers.GetCategory(err) == providers.ErrorNotFound {
			return nil, nil
		}
		return nil, err
	}
	principal := make([]string, 0, len(resp.Results))
	authorized := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Designation == "P" {
			principal = append(principal, r.CommitteeID)
		} else {
			authorized = append(authorized, r.CommitteeID)
		}
	}
	return append(principal, authorized...), nil
}

func (c *Client) scheduleA(ctx context.Context, committeeID string, cycle, limit int) ([]models.Transaction, error) {
	params := url.Values{}
	params.Set("committee_id", committeeID)
	params.Set("two_year_transaction_period", strconv.Itoa(cycle))
	params.Set("is_individual", "true")
	params.Set("sort", "-contribution_receipt_amount")

	out := make([]models.Transaction, 0, limit)
	for len(out) < limit {
		perPage := pageSize(limit-len(out), maxPerPage)
		params.Set("per_page", strconv.Itoa(perPage))
		var resp scheduleAResponse
		if err := c.http.Get(ctx, "schedule_a", "/schedules/schedule_a/", params, &resp); err != nil {
			return nil, err
		}
		for _, r := range resp.Results {
			if len(out) == limit {
				break
			}
			out = append(out, models.Transaction{
				Amount:           nonNegative(r.Amount),
				Date:             parseDate(r.Date),
				CounterpartyName: strings.TrimSpace(r.ContributorName),
				Employer:         strings.TrimSpace(r.ContributorEmployer),
				Occupation:       strings.TrimSpace(r.ContributorOccupation),
				State:            strings.ToUpper(strings.TrimSpace(r.ContributorState)),
				City:             strings.TrimSpace(r.ContributorCity),
				Zip:              strings.TrimSpace(r.ContributorZip),
			})
		}
		if !advance(params, resp.Pagination, len(resp.Results), perPage) {
			break
		}
	}
	return out, nil
}

func (c *Client) scheduleB(ctx context.Context, committeeID string, cycle, limit int) ([]models.Transaction, error) {
	params := url.Values{}
	params.Set("committee_id", committeeID)
	params.Set("two_year_transaction_period", strconv.Itoa(cycle))
	params.Set("sort", "-disbursement_amount")

	out := make([]models.Transaction, 0, limit)
	for len(out) < limit {
		perPage := pageSize(limit-len(out), maxPerPage)
		params.Set("per_page", strconv.Itoa(perPage))
		var resp scheduleBResponse
		if err := c.http.Get(ctx, "schedule_b", "/schedules/schedule_b/", params, &resp); err != nil {
			return nil, err
		}
		for _, r := range resp.Results {
			if len(out) == limit {
				break
			}
			out = append(out, models.Transaction{
				Amount:           nonNegative(r.Amount),
				Date:             parseDate(r.Date),
				CounterpartyName: strings.TrimSpace(r.RecipientName),
				State:            strings.ToUpper(strings.TrimSpace(r.RecipientState)),
				City:             strings.TrimSpace(r.RecipientCity),
				Zip:              strings.TrimSpace(r.RecipientZip),
			})
		}
		if !advance(params, resp.Pagination, len(resp.Results), perPage) {
			break
		}
	}
	return out, nil
}

// advance copies the keyset cursor into params for the next page. It
// reports false when the result set is exhausted.
func advance(params url.Values, p pagination, got, requested int) bool {
	if got == 0 || got < requested || len(p.LastIndexes) == 0 {
		return false
	}
	for k, v := range p.LastIndexes {
		switch val := v.(type) {
		case nil:
			continue
		case float64:
			params.Set(k, strconv.FormatFloat(val, 'f', -1, 64))
		default:
			params.Set(k, fmt.Sprint(val))
		}
	}
	return true
}

func pageSize(want, ceiling int) int {
	if want <= 0 || want > ceiling {
		return ceiling
	}
	return want
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func toCandidate(r candidateRecord) models.Candidate {
	office := models.Office(strings.ToUpper(strings.TrimSpace(r.Office)))
	if office == "" {
		office = models.OfficeFromCandidateID(r.CandidateID)
	}
	return models.Candidate{
		CandidateID:   strings.TrimSpace(r.CandidateID),
		Name:          strings.TrimSpace(r.Name),
		Office:        office,
		State:         strings.ToUpper(strings.TrimSpace(r.State)),
		District:      strings.TrimSpace(r.District),
		Cycles:        r.Cycles,
		ElectionYears: r.ElectionYears,
	}
}

func toSummary(r totalsRecord, cycle int) models.FinancialSummary {
	s := models.FinancialSummary{
		Cycle:              cycle,
		TotalReceipts:      nonNegative(r.Receipts),
		TotalDisbursements: nonNegative(r.Disbursements),
		CashOnHand:         nonNegative(r.LastCashOnHandEndPeriod),
		IndividualContrib:  nonNegative(r.IndividualContributions),
		PACContrib:         nonNegative(r.OtherCommitteeContribs),
		PartyContrib:       nonNegative(r.PartyCommitteeContribs),
		CandidateContrib:   nonNegative(r.CandidateContribution),
	}
	if t := parseDate(r.CoverageEndDate); !t.IsZero() {
		s.CoverageEndDate = &t
	}
	return s
}

// IsNotFound reports whether err means the upstream has no such record.
func IsNotFound(err error) bool {
	var pe *providers.ProviderError
	return errors.As(err, &pe) && pe.Category == providers.ErrorNotFound
}
