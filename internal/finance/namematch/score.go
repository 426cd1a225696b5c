// Package namematch scores how well an upstream candidate name matches a
// legislator's display name. Every similarity check in the resolver goes
// through Score; nothing else compares names.
//
// Names are normalized (lowercase, periods/commas/hyphens stripped, spaces
// collapsed), "Last, First" order is rewritten to "First Last", and
// honorific/suffix tokens are dropped. The weights are additive:
//
//	exact full name            +100
//	last name (len > 2)        +50
//	first name (len > 1)       +30   or first initial only  +15
//	one last name contains other (len > 2)  +20
//	middle token               +10   or middle initial only +5
//	length differs by > 10     -10
//
// First and middle tokens only count once the surnames agree (exactly or by
// containment), so two unrelated people who share a first initial score 0.
// The result is floored at 0. Score is pure and never panics.
package namematch

import (
	"strings"
	"unicode/utf8"

	pstrings "civicfin/pkg/platform/strings"
)

const (
	WeightExactFullName = 100
	WeightLastName      = 50
	WeightFirstName     = 30
	WeightFirstInitial  = 15
	WeightLastContains  = 20
	WeightMiddle        = 10
	WeightMiddleInitial = 5
	PenaltyLengthDiff   = 10
	LengthDiffLimit     = 10
)

var ignoredTokens = map[string]struct{}{
	"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {},
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "hon": {},
}

type parsed struct {
	full   string
	tokens []string
}

func (p parsed) first() string { return p.tokens[0] }
func (p parsed) last() string  { return p.tokens[len(p.tokens)-1] }

// middle is only defined for three or more tokens; with two, tokens[1] is the surname.
func (p parsed) middle() (string, bool) {
	if len(p.tokens) < 3 {
		return "", false
	}
	return p.tokens[1], true
}

// Score compares an upstream candidate name with a legislator name.
func Score(candidateName, legislatorName string) int {
	a := parse(candidateName)
	b := parse(legislatorName)
	if len(a.tokens) == 0 || len(b.tokens) == 0 {
		return 0
	}

	score := 0
	if a.full == b.full {
		score += WeightExactFullName
	}

	lastA, lastB := a.last(), b.last()
	surnameAgrees := false
	switch {
	case lastA == lastB && runeLen(lastA) > 2:
		score += WeightLastName
		surnameAgrees = true
	case runeLen(lastA) > 2 && runeLen(lastB) > 2 &&
		(strings.Contains(lastA, lastB) || strings.Contains(lastB, lastA)):
		score += WeightLastContains
		surnameAgrees = true
	}

	if surnameAgrees && len(a.tokens) > 1 && len(b.tokens) > 1 {
		score += firstNameScore(a.first(), b.first())
		if midA, ok := a.middle(); ok {
			if midB, ok := b.middle(); ok {
				score += middleScore(midA, midB)
			}
		}
	}

	diff := runeLen(a.full) - runeLen(b.full)
	if diff < 0 {
		diff = -diff
	}
	if diff > LengthDiffLimit {
		score -= PenaltyLengthDiff
	}

	if score < 0 {
		return 0
	}
	return score
}

func firstNameScore(a, b string) int {
	if a == b && runeLen(a) > 1 {
		return WeightFirstName
	}
	if initial(a) == initial(b) {
		return WeightFirstInitial
	}
	return 0
}

func middleScore(a, b string) int {
	if a == b {
		return WeightMiddle
	}
	if initial(a) == initial(b) {
		return WeightMiddleInitial
	}
	return 0
}

// Normalize lowercases name, reorders "Last, First" and strips punctuation
// and suffix tokens. Exposed for callers that need a stable name key.
func Normalize(name string) string {
	return parse(name).full
}

func parse(name string) parsed {
	name = reorder(name)
	name = strings.ToLower(name)
	name = strings.NewReplacer(".", "", ",", "", "-", "").Replace(name)
	raw := strings.Fields(name)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, skip := ignoredTokens[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return parsed{full: strings.Join(tokens, " "), tokens: tokens}
}

// reorder turns "Last, First Middle[, Suffix]" into "First Middle Last".
func reorder(name string) string {
	parts := strings.Split(name, ",")
	if len(parts) < 2 {
		return name
	}
	last := strings.TrimSpace(parts[0])
	given := strings.TrimSpace(parts[1])
	if last == "" || given == "" {
		return strings.Join(parts, " ")
	}
	return pstrings.CollapseSpaces(given + " " + last)
}

func initial(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
