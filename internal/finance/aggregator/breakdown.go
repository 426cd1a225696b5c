package aggregator

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"civicfin/internal/finance/models"
)

var hundred = decimal.NewFromInt(100)

type bucket struct {
	label  string
	amount decimal.Decimal
	count  int
}

// tally accumulates amounts per label and remembers how many records
// carried a usable attribute.
type tally struct {
	buckets  map[string]*bucket
	analyzed decimal.Decimal
	with     int
}

func newTally() *tally {
	return &tally{buckets: make(map[string]*bucket)}
}

func (t *tally) add(label string, amount decimal.Decimal) {
	b, ok := t.buckets[label]
	if !ok {
		b = &bucket{label: label}
		t.buckets[label] = b
	}
	b.amount = b.amount.Add(amount)
	b.count++
	t.analyzed = t.analyzed.Add(amount)
	t.with++
}

// ranked returns buckets ordered by amount desc, count desc, label asc and
// truncated to limit. limit <= 0 keeps everything.
func (t *tally) ranked(limit int) []*bucket {
	out := make([]*bucket, 0, len(t.buckets))
	for _, b := range t.buckets {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *bucket) int {
		if c := b.amount.Cmp(a.amount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.label, b.label)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// percentage is amount / total * 100 rounded to two places; 0 when the
// total is zero.
func percentage(amount, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return amount.Div(total).Mul(hundred).Round(2).InexactFloat64()
}

// industryBreakdown groups contributions by classified employer. The
// returned count is the number of records that carried an employer.
func industryBreakdown(txs []models.Transaction, topIndustries, topEmployers int) ([]models.IndustryEntry, int) {
	industries := newTally()
	employers := make(map[string]*tally)
	for _, tx := range txs {
		employer := NormalizeEmployer(tx.Employer)
		if employer == "" {
			continue
		}
		industry := ClassifyIndustry(employer, tx.Occupation)
		industries.add(industry, tx.Amount)
		per, ok := employers[industry]
		if !ok {
			per = newTally()
			employers[industry] = per
		}
		per.add(employer, tx.Amount)
	}

	entries := make([]models.IndustryEntry, 0, min(len(industries.buckets), max(topIndustries, 0)))
	for _, b := range industries.ranked(topIndustries) {
		top := employers[b.label].ranked(topEmployers)
		emps := make([]models.EmployerEntry, 0, len(top))
		for _, e := range top {
			emps = append(emps, models.EmployerEntry{Name: e.label, Amount: e.amount, Count: e.count})
		}
		entries = append(entries, models.IndustryEntry{
			Industry:     b.label,
			Amount:       b.amount,
			Count:        b.count,
			Percentage:   percentage(b.amount, industries.analyzed),
			TopEmployers: emps,
		})
	}
	return entries, industries.with
}

// geographicBreakdown groups contributions by contributor state.
func geographicBreakdown(txs []models.Transaction, homeState string, topStates int) ([]models.GeographicEntry, int) {
	states := newTally()
	home := strings.ToUpper(strings.TrimSpace(homeState))
	for _, tx := range txs {
		state, ok := normalizeState(tx.State)
		if !ok {
			continue
		}
		states.add(state, tx.Amount)
	}

	entries := make([]models.GeographicEntry, 0, min(len(states.buckets), max(topStates, 0)))
	for _, b := range states.ranked(topStates) {
		entries = append(entries, models.GeographicEntry{
			State:       b.label,
			Amount:      b.amount,
			Count:       b.count,
			Percentage:  percentage(b.amount, states.analyzed),
			IsHomeState: home != "" && b.label == home,
		})
	}
	return entries, states.with
}

// spendingSummary ranks expenditure recipients.
func spendingSummary(txs []models.Transaction, topPayees int) models.SpendingSummary {
	payees := newTally()
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
		name := strings.ToUpper(strings.Join(strings.Fields(tx.CounterpartyName), " "))
		if name == "" {
			continue
		}
		payees.add(name, tx.Amount)
	}

	top := payees.ranked(topPayees)
	entries := make([]models.PayeeEntry, 0, len(top))
	for _, b := range top {
		entries = append(entries, models.PayeeEntry{
			Name:       b.label,
			Amount:     b.amount,
			Count:      b.count,
			Percentage: percentage(b.amount, payees.analyzed),
		})
	}
	return models.SpendingSummary{
		TotalAnalyzed: len(txs),
		Amount:        total,
		TopPayees:     entries,
		Available:     true,
	}
}

// normalizeState accepts two ASCII letters after trimming.
func normalizeState(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != 2 {
		return "", false
	}
	for i := 0; i < 2; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", false
		}
	}
	return s, true
}
