package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialSummary holds the authoritative top-line totals for one cycle.
// Monetary fields are never negative.
type FinancialSummary struct {
	Cycle              int             `json:"cycle"`
	TotalReceipts      decimal.Decimal `json:"totalReceipts"`
	TotalDisbursements decimal.Decimal `json:"totalDisbursements"`
	CashOnHand         decimal.Decimal `json:"cashOnHand"`
	IndividualContrib  decimal.Decimal `json:"individualContrib"`
	PACContrib         decimal.Decimal `json:"pacContrib"`
	PartyContrib       decimal.Decimal `json:"partyContrib"`
	CandidateContrib   decimal.Decimal `json:"candidateContrib"`
	CoverageEndDate    *time.Time      `json:"coverageEndDate,omitempty"`
}

// Transaction is one contribution or expenditure line.
type Transaction struct {
	Amount           decimal.Decimal
	Date             time.Time
	CounterpartyName string
	Employer         string
	Occupation       string
	State            string
	City             string
	Zip              string
}

// IndustryEntry is one ranked industry bucket.
type IndustryEntry struct {
	Industry     string          `json:"industry"`
	Amount       decimal.Decimal `json:"amount"`
	Count        int             `json:"count"`
	Percentage   float64         `json:"percentage"`
	TopEmployers []EmployerEntry `json:"topEmployers"`
}

// EmployerEntry is one employer inside an industry bucket.
type EmployerEntry struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// GeographicEntry is one ranked contributor-state bucket.
type GeographicEntry struct {
	State       string          `json:"state"`
	Amount      decimal.Decimal `json:"amount"`
	Count       int             `json:"count"`
	Percentage  float64         `json:"percentage"`
	IsHomeState bool            `json:"isHomeState"`
}

// PayeeEntry is one ranked expenditure recipient.
type PayeeEntry struct {
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// SpendingSummary describes the analyzed expenditure sample.
type SpendingSummary struct {
	TotalAnalyzed int             `json:"totalAnalyzed"`
	Amount        decimal.Decimal `json:"amount"`
	TopPayees     []PayeeEntry    `json:"topPayees"`
	Available     bool            `json:"available"`
}
