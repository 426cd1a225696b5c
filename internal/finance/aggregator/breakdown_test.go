package aggregator

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfin/internal/finance/models"
)

var employers = []string{
	"MICHIGAN STATE UNIVERSITY", "RETIRED", "HONIGMAN LLP", "GENERAL MOTORS",
	"HENRY FORD HOSPITAL", "COMERICA BANK", "UAW LOCAL 600", "SELF-EMPLOYED",
	"GOOGLE", "DTE ENERGY", "ACME HOLDINGS", "WAYNE COUNTY",
}

var states = []string{"MI", "OH", "NY", "CA", "FL", "IL", "TX", "DC", "WA", "MA", "PA", "GA"}

func syntheticContributions(n int) []models.Transaction {
	out := make([]models.Transaction, 0, n)
	for i := range n {
		out = append(out, models.Transaction{
			Amount:   usd(fmt.Sprintf("%d.%02d", 25+(i*37)%2900, i%100)),
			Employer: employers[(i*7)%len(employers)],
			State:    states[(i*5)%len(states)],
		})
	}
	return out
}

func TestIndustryBreakdownInvariants(t *testing.T) {
	txs := syntheticContributions(400)
	entries, with := industryBreakdown(txs, 5, 2)

	require.Len(t, entries, 5)
	assert.Equal(t, 400, with)

	analyzed := usd("0")
	for _, tx := range txs {
		analyzed = analyzed.Add(tx.Amount)
	}
	for i, e := range entries {
		if i > 0 {
			assert.True(t, entries[i-1].Amount.GreaterThanOrEqual(e.Amount), "entries must be sorted by amount desc")
		}
		want := e.Amount.Div(analyzed).InexactFloat64() * 100
		assert.LessOrEqual(t, math.Abs(want-e.Percentage), 0.1)
		assert.LessOrEqual(t, len(e.TopEmployers), 2)
	}
}

func TestGeographicBreakdownSkipsInvalidStates(t *testing.T) {
	txs := []models.Transaction{
		{Amount: usd("100"), State: "MI"},
		{Amount: usd("100"), State: "OH"},
		{Amount: usd("300"), State: "ZZZ"},
		{Amount: usd("300"), State: "1A"},
		{Amount: usd("300"), State: ""},
	}
	entries, with := geographicBreakdown(txs, "mi", 10)

	assert.Equal(t, 2, with)
	require.Len(t, entries, 2)
	// Equal amounts and counts fall back to label order.
	assert.Equal(t, "MI", entries[0].State)
	assert.True(t, entries[0].IsHomeState)
	assert.Equal(t, "OH", entries[1].State)
	assert.Equal(t, 50.0, entries[1].Percentage)
}

func TestPercentageOfZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, percentage(usd("10"), usd("0")))
}

func TestRankedTieBreaks(t *testing.T) {
	tl := newTally()
	tl.add("B", usd("10"))
	tl.add("A", usd("5"))
	tl.add("A", usd("5"))
	tl.add("C", usd("10"))

	got := tl.ranked(0)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].label, "equal amount, higher count first")
	assert.Equal(t, "B", got[1].label)
	assert.Equal(t, "C", got[2].label)
}
