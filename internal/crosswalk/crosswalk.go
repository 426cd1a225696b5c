// Package crosswalk maps legislator identifiers to the FEC candidate ids they
// have filed under. It is the authoritative first step of candidate
// resolution; the resolver falls back to profile and search only when the
// crosswalk has nothing.
package crosswalk

import (
	"context"
	"strconv"
	"strings"

	"civicfin/internal/finance/models"
	"civicfin/pkg/platform/sentinel"
	pstrings "civicfin/pkg/platform/strings"
)

// ErrNotFound is returned for unknown legislator ids.
var ErrNotFound = sentinel.ErrNotFound

// Lookup is the read side every store implements.
type Lookup interface {
	Legislator(ctx context.Context, legislatorID string) (models.LegislatorRef, error)
	FECIDs(ctx context.Context, legislatorID string) ([]string, error)
}

// Legislator is one entry of the congress-legislators dataset.
type Legislator struct {
	ID    Identifiers `yaml:"id"`
	Name  Name        `yaml:"name"`
	Terms []Term      `yaml:"terms"`
}

// Identifiers holds the cross-system ids for a legislator.
type Identifiers struct {
	Bioguide string   `yaml:"bioguide"`
	FEC      []string `yaml:"fec"`
}

// Name is the structured legislator name.
type Name struct {
	First        string `yaml:"first"`
	Middle       string `yaml:"middle"`
	Last         string `yaml:"last"`
	OfficialFull string `yaml:"official_full"`
}

// Term is one term of service. Type is "rep" or "sen".
type Term struct {
	Type     string `yaml:"type"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	State    string `yaml:"state"`
	District *int   `yaml:"district"`
}

// DisplayName prefers the official full name.
func (n Name) DisplayName() string {
	if full := strings.TrimSpace(n.OfficialFull); full != "" {
		return full
	}
	return pstrings.CollapseSpaces(strings.Join([]string{n.First, n.Middle, n.Last}, " "))
}

// CurrentTerm returns the term with the latest start date.
func (l Legislator) CurrentTerm() (Term, bool) {
	if len(l.Terms) == 0 {
		return Term{}, false
	}
	latest := l.Terms[0]
	for _, t := range l.Terms[1:] {
		// ISO dates compare lexically.
		if t.Start > latest.Start {
			latest = t
		}
	}
	return latest, true
}

// Ref converts the entry into the request-scoped legislator reference.
func (l Legislator) Ref() models.LegislatorRef {
	ref := models.LegislatorRef{
		ExternalID:  strings.TrimSpace(l.ID.Bioguide),
		DisplayName: l.Name.DisplayName(),
	}
	if term, ok := l.CurrentTerm(); ok {
		if ch, err := models.ParseChamber(term.Type); err == nil {
			ref.Chamber = ch
		}
		ref.State = strings.ToUpper(strings.TrimSpace(term.State))
		if term.District != nil && ref.Chamber == models.ChamberHouse {
			ref.District = strconv.Itoa(*term.District)
		}
	}
	return ref
}

// CandidateIDs returns the normalized FEC ids in dataset order.
func (l Legislator) CandidateIDs() []string {
	ids := make([]string, 0, len(l.ID.FEC))
	for _, id := range l.ID.FEC {
		ids = append(ids, strings.ToUpper(id))
	}
	return pstrings.DedupeAndTrim(ids)
}
