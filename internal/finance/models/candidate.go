package models

import (
	"slices"
	"strings"
)

// Office is the federal office code carried by FEC candidate records and as
// the first character of every candidate id.
type Office string

const (
	OfficeHouse     Office = "H"
	OfficeSenate    Office = "S"
	OfficePresident Office = "P"
)

// Valid reports whether the office is one this engine aggregates for.
func (o Office) Valid() bool {
	return o == OfficeHouse || o == OfficeSenate
}

// OfficeFromCandidateID reads the office prefix of an FEC candidate id
// (H0MI09011, S4MI00355, ...).
func OfficeFromCandidateID(candidateID string) Office {
	id := strings.TrimSpace(candidateID)
	if id == "" {
		return ""
	}
	return Office(strings.ToUpper(id[:1]))
}

// Candidate is a raw upstream candidate record.
type Candidate struct {
	CandidateID   string `json:"candidateId"`
	Name          string `json:"name"`
	Office        Office `json:"office"`
	State         string `json:"state"`
	District      string `json:"district,omitempty"`
	Cycles        []int  `json:"cycles,omitempty"`
	ElectionYears []int  `json:"electionYears,omitempty"`
}

// LatestCycle returns the most recent entry of Cycles, or 0.
func (c Candidate) LatestCycle() int {
	if len(c.Cycles) == 0 {
		return 0
	}
	return slices.Max(c.Cycles)
}

// Resolved converts the record into the authoritative resolution output.
func (c Candidate) Resolved() ResolvedCandidate {
	return ResolvedCandidate{
		CandidateID:   c.CandidateID,
		Name:          c.Name,
		Office:        c.Office,
		State:         c.State,
		District:      c.District,
		ElectionYears: slices.Clone(c.ElectionYears),
		Cycles:        slices.Clone(c.Cycles),
	}
}

// CandidateMatch is a scored search hit. Transient, never persisted.
type CandidateMatch struct {
	Candidate Candidate
	Score     int
}

// ResolvedCandidate is the single external candidate a legislator resolved to.
type ResolvedCandidate struct {
	CandidateID   string `json:"candidateId"`
	Name          string `json:"name"`
	Office        Office `json:"office"`
	State         string `json:"state"`
	District      string `json:"district,omitempty"`
	ElectionYears []int  `json:"electionYears,omitempty"`
	Cycles        []int  `json:"cycles,omitempty"`
}

// History returns every cycle and election year known for the candidate.
func (r ResolvedCandidate) History() []int {
	out := make([]int, 0, len(r.Cycles)+len(r.ElectionYears))
	out = append(out, r.Cycles...)
	out = append(out, r.ElectionYears...)
	return out
}

// Resolution describes how a candidate was resolved.
type Resolution struct {
	Strategy       string `json:"strategy"`
	OfficeFallback bool   `json:"officeFallback"`
	LowConfidence  bool   `json:"lowConfidence"`
	Score          int    `json:"score,omitempty"`
}
