// Package congress reads enhanced member profiles, which carry the FEC
// candidate identifiers a legislator has filed under.
package congress

import (
	"context"
	"net/url"
	"strings"

	"civicfin/internal/finance/models"
	"civicfin/internal/sources/providers"
	pstrings "civicfin/pkg/platform/strings"
)

const ProviderID = "congress"

type getter interface {
	Get(ctx context.Context, endpoint, path string, query url.Values, out any) error
}

type term struct {
	Chamber        string `json:"chamber"`
	StateCode      string `json:"stateCode"`
	District       int    `json:"district"`
	StartYear      int    `json:"startYear"`
	FECCandidateID string `json:"fecCandidateId"`
}

type member struct {
	BioguideID      string   `json:"bioguideId"`
	DirectOrderName string   `json:"directOrderName"`
	FECCandidateID  string   `json:"fecCandidateId"`
	FECCandidateIDs []string `json:"fecCandidateIds"`
	Terms           []term   `json:"terms"`
}

type memberResponse struct {
	Member member `json:"member"`
}

// Profile is the subset of a member profile the resolver uses.
type Profile struct {
	BioguideID   string
	Name         string
	Chamber      models.Chamber
	State        string
	CandidateIDs []string
}

// Client reads member profiles.
type Client struct {
	http getter
}

// New wraps a configured JSON client.
func New(http getter) *Client {
	return &Client{http: http}
}

// Profile fetches the member profile for a bioguide id.
func (c *Client) Profile(ctx context.Context, bioguideID string) (Profile, error) {
	var resp memberResponse
	params := url.Values{"format": {"json"}}
	if err := c.http.Get(ctx, "member", "/member/"+url.PathEscape(bioguideID), params, &resp); err != nil {
		return Profile{}, err
	}
	m := resp.Member
	if m.BioguideID == "" {
		return Profile{}, providers.NewProviderError(providers.ErrorNotFound, ProviderID, "member "+bioguideID+" not found", nil)
	}

	p := Profile{BioguideID: m.BioguideID, Name: strings.TrimSpace(m.DirectOrderName)}
	ids := []string{m.FECCandidateID}
	ids = append(ids, m.FECCandidateIDs...)

	// Latest term first so its filing id wins ordering.
	var latest *term
	for i := range m.Terms {
		t := &m.Terms[i]
		if latest == nil || t.StartYear > latest.StartYear {
			latest = t
		}
	}
	if latest != nil {
		if ch, err := models.ParseChamber(chamberWord(latest.Chamber)); err == nil {
			p.Chamber = ch
		}
		p.State = strings.ToUpper(latest.StateCode)
		ids = append([]string{latest.FECCandidateID}, ids...)
	}
	for _, t := range m.Terms {
		ids = append(ids, t.FECCandidateID)
	}
	upper := make([]string, 0, len(ids))
	for _, id := range ids {
		upper = append(upper, strings.ToUpper(id))
	}
	p.CandidateIDs = pstrings.DedupeAndTrim(upper)
	return p, nil
}

// CandidateIDs returns only the FEC identifiers for a bioguide id.
func (c *Client) CandidateIDs(ctx context.Context, bioguideID string) ([]string, error) {
	p, err := c.Profile(ctx, bioguideID)
	if err != nil {
		return nil, err
	}
	return p.CandidateIDs, nil
}

// chamberWord strips the "of Representatives" tail used in term records.
func chamberWord(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
