package models

import (
	"fmt"
	"strings"
)

// Chamber is the legislative chamber a legislator currently sits in.
type Chamber string

const (
	ChamberHouse  Chamber = "house"
	ChamberSenate Chamber = "senate"
)

// ParseChamber accepts the spellings used by the crosswalk and profile sources
// ("House", "rep", "sen", "Senate", ...).
func ParseChamber(raw string) (Chamber, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "house", "rep", "representative", "h":
		return ChamberHouse, nil
	case "senate", "sen", "senator", "s":
		return ChamberSenate, nil
	default:
		return "", fmt.Errorf("unknown chamber %q", raw)
	}
}

// Office returns the candidate office matching the chamber.
func (c Chamber) Office() Office {
	switch c {
	case ChamberHouse:
		return OfficeHouse
	case ChamberSenate:
		return OfficeSenate
	default:
		return ""
	}
}

// LegislatorRef identifies the official a request is about. Immutable per request.
type LegislatorRef struct {
	ExternalID  string  `json:"externalId"`
	DisplayName string  `json:"displayName"`
	Chamber     Chamber `json:"chamber"`
	State       string  `json:"state"`
	District    string  `json:"district,omitempty"`
}
