package finance

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
}

// RegisterSteps registers finance report step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &financeSteps{tc: tc}

	ctx.Step(`^I request finance for legislator "([^"]*)"$`, steps.requestFinance)
	ctx.Step(`^I request finance for legislator "([^"]*)" in cycle (\d+)$`, steps.requestFinanceCycle)
	ctx.Step(`^I request finance for legislator "([^"]*)" with query "([^"]*)"$`, steps.requestFinanceQuery)
	ctx.Step(`^the candidate id should start with "([^"]*)"$`, steps.candidateIDPrefix)
	ctx.Step(`^the data quality confidence should be one of "([^"]*)"$`, steps.confidenceOneOf)
	ctx.Step(`^the industry breakdown should be sorted by amount$`, steps.industrySorted)
	ctx.Step(`^the industry percentages should not exceed 100$`, steps.industryPercentBounded)
	ctx.Step(`^at most one geographic entry should be the home state$`, steps.singleHomeState)
}

type financeSteps struct {
	tc TestContext
}

func (s *financeSteps) requestFinance(_ context.Context, id string) error {
	return s.tc.GET("/v1/legislators/"+id+"/finance", nil)
}

func (s *financeSteps) requestFinanceCycle(_ context.Context, id string, cycle int) error {
	return s.tc.GET(fmt.Sprintf("/v1/legislators/%s/finance?cycle=%d", id, cycle), nil)
}

func (s *financeSteps) requestFinanceQuery(_ context.Context, id, query string) error {
	return s.tc.GET("/v1/legislators/"+id+"/finance?"+query, nil)
}

func (s *financeSteps) candidateIDPrefix(_ context.Context, prefix string) error {
	v, err := s.tc.GetResponseField("candidateId")
	if err != nil {
		return err
	}
	id, _ := v.(string)
	if len(id) < len(prefix) || id[:len(prefix)] != prefix {
		return fmt.Errorf("expected candidate id starting with %q, got %q", prefix, id)
	}
	return nil
}

func (s *financeSteps) confidenceOneOf(_ context.Context, csv string) error {
	v, err := s.tc.GetResponseField("dataQuality.overallDataConfidence")
	if err != nil {
		return err
	}
	got, _ := v.(string)
	if !slices.Contains(splitCSV(csv), got) {
		return fmt.Errorf("confidence %q not in %q", got, csv)
	}
	return nil
}

func (s *financeSteps) industrySorted(context.Context) error {
	entries, err := s.list("industryBreakdown")
	if err != nil {
		return err
	}
	prev := math.Inf(1)
	for i, e := range entries {
		amount, _ := e["amount"].(float64)
		if amount > prev {
			return fmt.Errorf("industry entry %d (%v) exceeds previous amount %v", i, amount, prev)
		}
		prev = amount
	}
	return nil
}

func (s *financeSteps) industryPercentBounded(context.Context) error {
	entries, err := s.list("industryBreakdown")
	if err != nil {
		return err
	}
	var sum float64
	for _, e := range entries {
		pct, _ := e["percentage"].(float64)
		sum += pct
	}
	if sum > 100.1 {
		return fmt.Errorf("industry percentages sum to %.2f", sum)
	}
	return nil
}

func (s *financeSteps) singleHomeState(context.Context) error {
	entries, err := s.list("geographicBreakdown")
	if err != nil {
		return err
	}
	home := 0
	for _, e := range entries {
		if flag, _ := e["isHomeState"].(bool); flag {
			home++
		}
	}
	if home > 1 {
		return fmt.Errorf("%d entries flagged as home state", home)
	}
	return nil
}

func (s *financeSteps) list(field string) ([]map[string]any, error) {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list", field)
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s holds a non-object entry", field)
		}
		out = append(out, m)
	}
	return out, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
