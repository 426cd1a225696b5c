// Package fecstub serves a fixed slice of the OpenFEC API for scenarios that
// need upstream data the live API cannot guarantee. Point the server's FEC
// base URL at it and load testdata/legislators.yaml as the crosswalk.
package fecstub

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// NewcomerID is a House candidate whose only filing is for a cycle past the
// supported range, so the report falls back to the default cycle.
const NewcomerID = "H6ZZ01001"

type candidate struct {
	CandidateID   string `json:"candidate_id"`
	Name          string `json:"name"`
	Office        string `json:"office"`
	State         string `json:"state"`
	District      string `json:"district"`
	Cycles        []int  `json:"cycles"`
	ElectionYears []int  `json:"election_years"`
}

type totals struct {
	Cycle                   int    `json:"cycle"`
	Receipts                string `json:"receipts"`
	Disbursements           string `json:"disbursements"`
	LastCashOnHandEndPeriod string `json:"last_cash_on_hand_end_period"`
	IndividualContributions string `json:"individual_contributions"`
}

var candidates = map[string]candidate{
	NewcomerID: {
		CandidateID:   NewcomerID,
		Name:          "NEWCOMER, STUB",
		Office:        "H",
		State:         "ZZ",
		District:      "01",
		Cycles:        []int{2026},
		ElectionYears: []int{2026},
	},
}

var candidateTotals = map[string]totals{
	NewcomerID: {
		Cycle:                   2024,
		Receipts:                "125000.00",
		Disbursements:           "40000.00",
		LastCashOnHandEndPeriod: "85000.00",
		IndividualContributions: "110000.00",
	},
}

// Handler returns the stub API.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /candidate/{id}/", func(w http.ResponseWriter, r *http.Request) {
		c, ok := candidates[r.PathValue("id")]
		if !ok {
			writeResults(w, []candidate{})
			return
		}
		writeResults(w, []candidate{c})
	})
	mux.HandleFunc("GET /candidate/{id}/totals/", func(w http.ResponseWriter, r *http.Request) {
		t, ok := candidateTotals[r.PathValue("id")]
		if !ok || strconv.Itoa(t.Cycle) != r.URL.Query().Get("cycle") {
			writeResults(w, []totals{})
			return
		}
		writeResults(w, []totals{t})
	})
	// No committees means no itemized receipts or disbursements.
	mux.HandleFunc("GET /candidate/{id}/committees/", func(w http.ResponseWriter, _ *http.Request) {
		writeResults(w, []any{})
	})
	mux.HandleFunc("GET /candidates/search/", func(w http.ResponseWriter, _ *http.Request) {
		writeResults(w, []candidate{})
	})
	mux.HandleFunc("GET /schedules/{schedule}/", func(w http.ResponseWriter, _ *http.Request) {
		writeResults(w, []any{})
	})
	return mux
}

func writeResults[T any](w http.ResponseWriter, results []T) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
}
