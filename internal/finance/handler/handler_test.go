package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfin/internal/finance/models"
	dErrors "civicfin/pkg/domain-errors"
	"civicfin/pkg/testutil"
)

type stubService struct {
	gotID    string
	gotCycle *int
	gotMode  models.Mode
	report   *models.FinanceReport
	cand     *models.CandidateReport
	err      error
	calls    int
}

func (s *stubService) Finance(_ context.Context, id string, cycle *int, mode models.Mode) (*models.FinanceReport, error) {
	s.calls++
	s.gotID, s.gotCycle, s.gotMode = id, cycle, mode
	return s.report, s.err
}

func (s *stubService) Candidate(_ context.Context, id string) (*models.CandidateReport, error) {
	s.calls++
	s.gotID = id
	return s.cand, s.err
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	New(svc, nil).Register(r)
	return r
}

func petersReport() *models.FinanceReport {
	return &models.FinanceReport{
		Legislator: models.LegislatorRef{ExternalID: "P000595", DisplayName: "Gary C. Peters", Chamber: models.ChamberSenate, State: "MI"},
		Candidate:  models.ResolvedCandidate{CandidateID: "S4MI00355", Name: "PETERS, GARY", Office: models.OfficeSenate, State: "MI"},
		Resolution: models.Resolution{Strategy: "crosswalk"},
		Cycle:      2024,
		Aggregate: models.AggregateResult{
			CandidateID: "S4MI00355",
			Cycle:       2024,
			Summary: models.FinancialSummary{
				TotalReceipts:      decimal.RequireFromString("12500000.25"),
				TotalDisbursements: decimal.RequireFromString("9800000"),
				PACContrib:         decimal.RequireFromString("2500000"),
			},
			Industry: []models.IndustryEntry{{
				Industry: "Education", Amount: decimal.NewFromInt(2900), Count: 1, Percentage: 61.7,
				TopEmployers: []models.EmployerEntry{{Name: "MICHIGAN STATE UNIVERSITY", Amount: decimal.NewFromInt(2900), Count: 1}},
			}},
			Geography: []models.GeographicEntry{{State: "MI", Amount: decimal.NewFromInt(4150), Count: 3, Percentage: 88.3, IsHomeState: true}},
			Quality: models.DataQuality{
				Industry:              models.DataQualityMetric{TotalAnalyzed: 5, WithAttribute: 5, CompletenessPercentage: 100, Confidence: models.ConfidenceHigh},
				Geography:             models.DataQualityMetric{TotalAnalyzed: 5, WithAttribute: 5, CompletenessPercentage: 100, Confidence: models.ConfidenceHigh},
				OverallDataConfidence: models.ConfidenceHigh,
			},
		},
		LastUpdated: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleFinance(t *testing.T) {
	t.Run("renders the finance shape with camelCase keys", func(t *testing.T) {
		svc := &stubService{report: petersReport()}
		rec := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/v1/legislators/p000595/finance?cycle=2024&mode=full"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "P000595", svc.gotID)
		require.NotNil(t, svc.gotCycle)
		assert.Equal(t, 2024, *svc.gotCycle)
		assert.Equal(t, models.ModeFull, svc.gotMode)

		body := testutil.DecodeJSON[map[string]any](t, rec)
		assert.Equal(t, "S4MI00355", body["candidateId"])
		assert.Equal(t, 12500000.25, body["totalRaised"])
		assert.Equal(t, 9800000.0, body["totalSpent"])
		assert.Equal(t, 2500000.0, body["pacContributions"])
		assert.Equal(t, false, body["partial"])

		industries := body["industryBreakdown"].([]any)
		require.Len(t, industries, 1)
		assert.Equal(t, "Education", industries[0].(map[string]any)["industry"])

		geo := body["geographicBreakdown"].([]any)
		assert.Equal(t, true, geo[0].(map[string]any)["isHomeState"])

		quality := body["dataQuality"].(map[string]any)
		assert.Equal(t, "high", quality["overallDataConfidence"])

		spending := body["spending"].(map[string]any)
		assert.Equal(t, []any{}, spending["topPayees"])
	})

	t.Run("defaults to sample mode and inferred cycle", func(t *testing.T) {
		svc := &stubService{report: petersReport()}
		rec := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/v1/legislators/P000595/finance"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, svc.gotCycle)
		assert.Equal(t, models.ModeSample, svc.gotMode)
	})

	t.Run("invalid cycles are rejected before the service is called", func(t *testing.T) {
		for _, q := range []string{"cycle=2023", "cycle=1998", "cycle=abc", "mode=everything"} {
			svc := &stubService{}
			rec := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/v1/legislators/P000595/finance?"+q))
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
			assert.Equal(t, 0, svc.calls, q)
		}
	})

	t.Run("not found and unavailable map to distinct statuses", func(t *testing.T) {
		notFound := &stubService{err: dErrors.New(dErrors.CodeNotFound, "no campaign-finance candidate record found for legislator")}
		rec := testutil.DoRequest(newRouter(notFound), testutil.NewRequest(t, http.MethodGet, "/v1/legislators/N000188/finance"))
		testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")

		unavailable := &stubService{err: dErrors.New(dErrors.CodeUnavailable, "campaign-finance totals are unavailable")}
		rec = testutil.DoRequest(newRouter(unavailable), testutil.NewRequest(t, http.MethodGet, "/v1/legislators/P000595/finance"))
		testutil.AssertStatusAndError(t, rec, http.StatusServiceUnavailable, "unavailable")
	})
}

func TestHandleCandidate(t *testing.T) {
	svc := &stubService{cand: &models.CandidateReport{
		Legislator: models.LegislatorRef{ExternalID: "O000172", Chamber: models.ChamberHouse, State: "NY"},
		Candidate:  models.ResolvedCandidate{CandidateID: "S8NY00201", Office: models.OfficeSenate},
		Resolution: models.Resolution{Strategy: "crosswalk", OfficeFallback: true},
	}}
	rec := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/v1/legislators/O000172/candidate"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := testutil.DecodeJSON[CandidateResponse](t, rec)
	assert.Equal(t, "S8NY00201", body.Candidate.CandidateID)
	assert.True(t, body.Resolution.OfficeFallback)
}

func TestParseLegislatorID(t *testing.T) {
	_, err := ParseLegislatorID("   ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = ParseLegislatorID("P000595P000595P000595")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	id, err := ParseLegislatorID(" p000595 ")
	require.NoError(t, err)
	assert.Equal(t, "P000595", id)
}
