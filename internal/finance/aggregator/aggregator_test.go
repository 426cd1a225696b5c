package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civicfin/internal/finance/models"
	"civicfin/internal/finance/ports/mocks"
	"civicfin/internal/finance/quality"
	dErrors "civicfin/pkg/domain-errors"
	"civicfin/pkg/platform/sentinel"
)

// =============================================================================
// Aggregator Test Suite
// =============================================================================
// Justification for unit tests: the partial-failure contract and breakdown
// arithmetic depend only on what the finance source returns, so a mocked
// source pins every branch without network.

const petersID = "S4MI00355"

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	petersSummary = models.FinancialSummary{
		Cycle:              2024,
		TotalReceipts:      usd("12500000.00"),
		TotalDisbursements: usd("9800000.50"),
		CashOnHand:         usd("2700000.00"),
		IndividualContrib:  usd("9000000.00"),
		PACContrib:         usd("2500000.00"),
		PartyContrib:       usd("40000.00"),
		CandidateContrib:   usd("0"),
	}

	contributions = []models.Transaction{
		{Amount: usd("1000"), Employer: "Michigan State University", Occupation: "Professor", State: "MI"},
		{Amount: usd("500"), Employer: "RETIRED", Occupation: "RETIRED", State: "FL"},
		{Amount: usd("250"), Employer: "Honigman LLP", Occupation: "Attorney", State: "mi"},
		{Amount: usd("250"), Employer: "INFORMATION REQUESTED", State: "MI"},
		{Amount: usd("100"), Employer: "", State: ""},
	}

	expenditures = []models.Transaction{
		{Amount: usd("3000"), CounterpartyName: "ACME MEDIA"},
		{Amount: usd("1000"), CounterpartyName: "acme  media"},
		{Amount: usd("500"), CounterpartyName: "USPS"},
	}
)

type AggregatorSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockFinanceSource
	agg    *Aggregator
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockFinanceSource(s.ctrl)
	classifier, err := quality.New(quality.DefaultThresholds())
	s.Require().NoError(err)
	s.agg, err = New(s.source, classifier, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
}

func (s *AggregatorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AggregatorSuite) request() Request {
	return Request{CandidateID: petersID, Cycle: 2024, State: "MI", Mode: models.ModeSample}
}

func (s *AggregatorSuite) expectAll(limit int) {
	s.source.EXPECT().Totals(gomock.Any(), petersID, 2024).Return(petersSummary, nil)
	s.source.EXPECT().Contributions(gomock.Any(), petersID, 2024, limit).Return(contributions, nil)
	s.source.EXPECT().Expenditures(gomock.Any(), petersID, 2024, limit).Return(expenditures, nil)
}

// =============================================================================
// Full aggregation
// =============================================================================

func (s *AggregatorSuite) TestAggregateBuildsBreakdowns() {
	s.expectAll(100)

	res, err := s.agg.Aggregate(context.Background(), s.request())
	s.Require().NoError(err)

	s.False(res.Partial)
	s.True(petersSummary.TotalReceipts.Equal(res.Summary.TotalReceipts))

	s.Run("industry buckets skip placeholder and blank employers", func() {
		s.Require().Len(res.Industry, 3)
		s.Equal("Education", res.Industry[0].Industry)
		s.Equal(57.14, res.Industry[0].Percentage)
		s.Equal(IndustryRetired, res.Industry[1].Industry)
		s.Equal(28.57, res.Industry[1].Percentage)
		s.Equal("Legal", res.Industry[2].Industry)
		s.Equal(14.29, res.Industry[2].Percentage)
		s.Require().Len(res.Industry[0].TopEmployers, 1)
		s.Equal("MICHIGAN STATE UNIVERSITY", res.Industry[0].TopEmployers[0].Name)
	})

	s.Run("geography flags the home state", func() {
		s.Require().Len(res.Geography, 2)
		s.Equal("MI", res.Geography[0].State)
		s.True(res.Geography[0].IsHomeState)
		s.Equal(3, res.Geography[0].Count)
		s.Equal(75.0, res.Geography[0].Percentage)
		s.Equal("FL", res.Geography[1].State)
		s.False(res.Geography[1].IsHomeState)
	})

	s.Run("completeness drives confidence", func() {
		s.Equal(5, res.Quality.Industry.TotalAnalyzed)
		s.Equal(3, res.Quality.Industry.WithAttribute)
		s.Equal(60.0, res.Quality.Industry.CompletenessPercentage)
		s.Equal(80.0, res.Quality.Geography.CompletenessPercentage)
		s.Equal(models.ConfidenceMedium, res.Quality.OverallDataConfidence)
	})

	s.Run("spending merges payee spellings", func() {
		s.True(res.Spending.Available)
		s.Equal(3, res.Spending.TotalAnalyzed)
		s.True(usd("4500").Equal(res.Spending.Amount))
		s.Require().Len(res.Spending.TopPayees, 2)
		s.Equal("ACME MEDIA", res.Spending.TopPayees[0].Name)
		s.Equal(2, res.Spending.TopPayees[0].Count)
		s.Equal(88.89, res.Spending.TopPayees[0].Percentage)
	})
}

func (s *AggregatorSuite) TestFullModeUsesLargerPage() {
	s.expectAll(500)

	req := s.request()
	req.Mode = models.ModeFull
	_, err := s.agg.Aggregate(context.Background(), req)
	s.Require().NoError(err)
}

func (s *AggregatorSuite) TestAggregateIsIdempotent() {
	s.source.EXPECT().Totals(gomock.Any(), petersID, 2024).Return(petersSummary, nil).Times(2)
	s.source.EXPECT().Contributions(gomock.Any(), petersID, 2024, 100).Return(contributions, nil).Times(2)
	s.source.EXPECT().Expenditures(gomock.Any(), petersID, 2024, 100).Return(expenditures, nil).Times(2)

	first, err := s.agg.Aggregate(context.Background(), s.request())
	s.Require().NoError(err)
	second, err := s.agg.Aggregate(context.Background(), s.request())
	s.Require().NoError(err)

	a, err := json.Marshal(first)
	s.Require().NoError(err)
	b, err := json.Marshal(second)
	s.Require().NoError(err)
	s.Equal(string(a), string(b))
}

// =============================================================================
// Failure handling
// =============================================================================

func (s *AggregatorSuite) TestContributionFailureReturnsTotalsOnly() {
	s.source.EXPECT().Totals(gomock.Any(), petersID, 2024).Return(petersSummary, nil)
	s.source.EXPECT().Contributions(gomock.Any(), petersID, 2024, 100).Return(nil, errors.New("schedule_a: 502"))
	s.source.EXPECT().Expenditures(gomock.Any(), petersID, 2024, 100).Return(expenditures, nil)

	res, err := s.agg.Aggregate(context.Background(), s.request())
	s.Require().NoError(err)

	s.True(res.Partial)
	s.True(petersSummary.TotalReceipts.Equal(res.Summary.TotalReceipts))
	s.NotNil(res.Industry)
	s.Empty(res.Industry)
	s.NotNil(res.Geography)
	s.Empty(res.Geography)
	s.Equal(models.ConfidenceLow, res.Quality.OverallDataConfidence)
	s.Equal(models.ConfidenceUnavailable, res.Quality.Industry.Confidence)
	s.True(res.Spending.Available)
}

func (s *AggregatorSuite) TestEmptyContributionsArePartial() {
	s.source.EXPECT().Totals(gomock.Any(), petersID, 2024).Return(petersSummary, nil)
	s.source.EXPECT().Contributions(gomock.Any(), petersID, 2024, 100).Return(nil, nil)
	s.source.EXPECT().Expenditures(gomock.Any(), petersID, 2024, 100).Return(nil, nil)

	res, err := s.agg.Aggregate(context.Background(), s.request())
	s.Require().NoError(err)
	s.True(res.Partial)
	s.Equal(models.ConfidenceLow, res.Quality.OverallDataConfidence)
	s.True(res.Spending.Available)
	s.Equal(0, res.Spending.TotalAnalyzed)
}

func (s *AggregatorSuite) TestExpenditureFailureOnlyBlanksSpending() {
	s.source.EXPECT().Totals(gomock.Any(), petersID, 2024).Return(petersSummary, nil)
	s.source.EXPECT().Contributions(gomock.Any(), petersID, 2024, 100).Return(contributions, nil)
	s.source.EXPECT().Expenditures(gomock.Any(), petersID, 2024, 100).Return(nil, errors.New("timeout"))

	res, err := s.agg.Aggregate(context.Background(), s.request())
	s.Require().NoError(err)
	s.False(res.Partial)
	s.Len(res.Industry, 3)
	s.False(res.Spending.Available)
	s.NotNil(res.Spending.TopPayees)
}

func (s *AggregatorSuite) TestTotalsFailureIsUnavailable() {
	s.source.EXPECT().Totals(gomock.Any(), petersID, 2024).Return(models.FinancialSummary{}, errors.New("connection refused"))
	s.source.EXPECT().Contributions(gomock.Any(), petersID, 2024, 100).Return(contributions, nil)
	s.source.EXPECT().Expenditures(gomock.Any(), petersID, 2024, 100).Return(expenditures, nil)

	res, err := s.agg.Aggregate(context.Background(), s.request())
	s.Nil(res)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *AggregatorSuite) TestMissingTotalsIsNotFound() {
	s.source.EXPECT().Totals(gomock.Any(), petersID, 2024).
		Return(models.FinancialSummary{}, fmt.Errorf("totals: %w", sentinel.ErrNotFound))
	s.source.EXPECT().Contributions(gomock.Any(), petersID, 2024, 100).Return(nil, nil)
	s.source.EXPECT().Expenditures(gomock.Any(), petersID, 2024, 100).Return(nil, nil)

	_, err := s.agg.Aggregate(context.Background(), s.request())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AggregatorSuite) TestInvalidRequestMakesNoCalls() {
	req := s.request()
	req.Cycle = 2023
	_, err := s.agg.Aggregate(context.Background(), req)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	req = s.request()
	req.CandidateID = ""
	_, err = s.agg.Aggregate(context.Background(), req)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *AggregatorSuite) TestCancelledContextIsTimeout() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.source.EXPECT().Totals(gomock.Any(), petersID, 2024).Return(models.FinancialSummary{}, context.Canceled).AnyTimes()
	s.source.EXPECT().Contributions(gomock.Any(), petersID, 2024, 100).Return(nil, context.Canceled).AnyTimes()
	s.source.EXPECT().Expenditures(gomock.Any(), petersID, 2024, 100).Return(nil, context.Canceled).AnyTimes()

	_, err := s.agg.Aggregate(ctx, s.request())
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

// =============================================================================
// Construction
// =============================================================================

func TestNewRequiresCollaborators(t *testing.T) {
	classifier, err := quality.New(quality.DefaultThresholds())
	require.NoError(t, err)

	_, err = New(nil, classifier)
	assert.Error(t, err)

	_, err = New(mocks.NewMockFinanceSource(gomock.NewController(t)), nil)
	assert.Error(t, err)
}

func TestWithConfigKeepsDefaultsForZeroFields(t *testing.T) {
	classifier, err := quality.New(quality.DefaultThresholds())
	require.NoError(t, err)

	a, err := New(mocks.NewMockFinanceSource(gomock.NewController(t)), classifier,
		WithConfig(Config{FullPageSize: 250, TopStates: 3}))
	require.NoError(t, err)

	assert.Equal(t, 100, a.cfg.PageSize(models.ModeSample))
	assert.Equal(t, 250, a.cfg.PageSize(models.ModeFull))
	assert.Equal(t, 3, a.cfg.TopStates)
	assert.Equal(t, 10, a.cfg.TopIndustries)
}
