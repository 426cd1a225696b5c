package crosswalk

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"civicfin/internal/finance/models"
)

// MemoryStore serves the crosswalk from memory. It is immutable after load
// and safe for concurrent use.
type MemoryStore struct {
	byID map[string]Legislator
}

// NewMemoryStore indexes entries by upper-cased bioguide id. Entries
// without an id are skipped; later duplicates win.
func NewMemoryStore(entries []Legislator) *MemoryStore {
	byID := make(map[string]Legislator, len(entries))
	for _, e := range entries {
		key := normalizeID(e.ID.Bioguide)
		if key == "" {
			continue
		}
		byID[key] = e
	}
	return &MemoryStore{byID: byID}
}

// LoadFile reads a congress-legislators YAML file.
func LoadFile(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open crosswalk file: %w", err)
	}
	defer f.Close()
	entries, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("crosswalk file %s: %w", path, err)
	}
	return NewMemoryStore(entries), nil
}

// Decode parses the YAML list format.
func Decode(r io.Reader) ([]Legislator, error) {
	var entries []Legislator
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode crosswalk yaml: %w", err)
	}
	return entries, nil
}

func (s *MemoryStore) Legislator(_ context.Context, legislatorID string) (models.LegislatorRef, error) {
	e, ok := s.byID[normalizeID(legislatorID)]
	if !ok {
		return models.LegislatorRef{}, ErrNotFound
	}
	return e.Ref(), nil
}

func (s *MemoryStore) FECIDs(_ context.Context, legislatorID string) ([]string, error) {
	e, ok := s.byID[normalizeID(legislatorID)]
	if !ok {
		return nil, ErrNotFound
	}
	return e.CandidateIDs(), nil
}

// Entries returns every entry ordered by bioguide id.
func (s *MemoryStore) Entries() []Legislator {
	out := make([]Legislator, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Legislator) int {
		return strings.Compare(normalizeID(a.ID.Bioguide), normalizeID(b.ID.Bioguide))
	})
	return out
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
