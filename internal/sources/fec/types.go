package fec

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type pagination struct {
	Count       int            `json:"count"`
	Page        int            `json:"page"`
	Pages       int            `json:"pages"`
	PerPage     int            `json:"per_page"`
	LastIndexes map[string]any `json:"last_indexes"`
}

type candidateRecord struct {
	CandidateID   string `json:"candidate_id"`
	Name          string `json:"name"`
	Office        string `json:"office"`
	State         string `json:"state"`
	District      string `json:"district"`
	Cycles        []int  `json:"cycles"`
	ElectionYears []int  `json:"election_years"`
}

type candidatesResponse struct {
	Results    []candidateRecord `json:"results"`
	Pagination pagination        `json:"pagination"`
}

type totalsRecord struct {
	Cycle                   int             `json:"cycle"`
	Receipts                decimal.Decimal `json:"receipts"`
	Disbursements           decimal.Decimal `json:"disbursements"`
	LastCashOnHandEndPeriod decimal.Decimal `json:"last_cash_on_hand_end_period"`
	IndividualContributions decimal.Decimal `json:"individual_contributions"`
	OtherCommitteeContribs  decimal.Decimal `json:"other_political_committee_contributions"`
	PartyCommitteeContribs  decimal.Decimal `json:"political_party_committee_contributions"`
	CandidateContribution   decimal.Decimal `json:"candidate_contribution"`
	CoverageEndDate         string          `json:"coverage_end_date"`
}

type totalsResponse struct {
	Results []totalsRecord `json:"results"`
}

type committeeRecord struct {
	CommitteeID string `json:"committee_id"`
	Designation string `json:"designation"`
}

type committeesResponse struct {
	Results []committeeRecord `json:"results"`
}

type scheduleARecord struct {
	ContributorName       string          `json:"contributor_name"`
	ContributorEmployer   string          `json:"contributor_employer"`
	ContributorOccupation string          `json:"contributor_occupation"`
	ContributorState      string          `json:"contributor_state"`
	ContributorCity       string          `json:"contributor_city"`
	ContributorZip        string          `json:"contributor_zip"`
	Amount                decimal.Decimal `json:"contribution_receipt_amount"`
	Date                  string          `json:"contribution_receipt_date"`
}

type scheduleAResponse struct {
	Results    []scheduleARecord `json:"results"`
	Pagination pagination        `json:"pagination"`
}

type scheduleBRecord struct {
	RecipientName  string          `json:"recipient_name"`
	RecipientState string          `json:"recipient_state"`
	RecipientCity  string          `json:"recipient_city"`
	RecipientZip   string          `json:"recipient_zip"`
	Amount         decimal.Decimal `json:"disbursement_amount"`
	Date           string          `json:"disbursement_date"`
}

type scheduleBResponse struct {
	Results    []scheduleBRecord `json:"results"`
	Pagination pagination        `json:"pagination"`
}

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// parseDate accepts the timestamp shapes the API emits; unparseable or
// empty input yields the zero time.
func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
