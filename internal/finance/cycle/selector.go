// Package cycle picks the two-year reporting cycle a finance request is
// answered for.
package cycle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"civicfin/internal/finance/models"
	dErrors "civicfin/pkg/domain-errors"
)

// Source records where a selected cycle came from.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceHistory  Source = "candidate_history"
	SourceDefault  Source = "default"
)

// Selection is the chosen cycle. Inferred is true when the cycle is the
// supported default rather than the caller's or the candidate's own.
type Selection struct {
	Cycle    int
	Source   Source
	Inferred bool
}

// Selector implements the cycle fallback chain.
type Selector struct {
	defaultCycle int
}

// NewSelector creates a selector; a zero or invalid defaultCycle uses MaxCycle.
func NewSelector(defaultCycle int) *Selector {
	if !models.ValidCycle(defaultCycle) {
		defaultCycle = models.MaxCycle
	}
	return &Selector{defaultCycle: defaultCycle}
}

// Validate enforces the cycle invariant at the boundary.
func Validate(c int) error {
	if c%2 != 0 {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("cycle %d must be an even year", c))
	}
	if c < models.MinCycle || c > models.MaxCycle {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("cycle %d must be between %d and %d", c, models.MinCycle, models.MaxCycle))
	}
	return nil
}

// Parse reads a cycle from a query value. Empty input means "not supplied".
func Parse(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	c, err := strconv.Atoi(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "cycle must be numeric")
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Select returns the explicit cycle when supplied (validated, never
// corrected), otherwise the most recent supported cycle in the candidate's
// history, otherwise the default.
func (s *Selector) Select(explicit *int, candidate *models.ResolvedCandidate) (Selection, error) {
	if explicit != nil {
		if err := Validate(*explicit); err != nil {
			return Selection{}, err
		}
		return Selection{Cycle: *explicit, Source: SourceExplicit}, nil
	}

	if candidate != nil {
		if latest, ok := latestSupported(candidate.History()); ok {
			return Selection{Cycle: latest, Source: SourceHistory}, nil
		}
	}

	return Selection{Cycle: s.defaultCycle, Source: SourceDefault, Inferred: true}, nil
}

// latestSupported returns the largest valid cycle in history. Odd election
// years (special elections) count toward the cycle that ends the next year.
func latestSupported(history []int) (int, bool) {
	best, found := 0, false
	for _, year := range history {
		c := year
		if c%2 != 0 {
			c++
		}
		if !models.ValidCycle(c) {
			continue
		}
		if !found || c > best {
			best, found = c, true
		}
	}
	return best, found
}

// Current returns the cycle a search should start from at time now: the
// even ceiling of the year, clamped into the supported range.
func Current(now time.Time) int {
	c := now.Year()
	if c%2 != 0 {
		c++
	}
	if c > models.MaxCycle {
		return models.MaxCycle
	}
	if c < models.MinCycle {
		return models.MinCycle
	}
	return c
}

// SearchWindow returns up to n cycles counting back from start by two years,
// stopping at MinCycle.
func SearchWindow(start, n int) []int {
	out := make([]int, 0, n)
	for c := start; len(out) < n && c >= models.MinCycle; c -= 2 {
		out = append(out, c)
	}
	return out
}
