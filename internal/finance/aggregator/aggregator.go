// Package aggregator turns one candidate's raw FEC data for a cycle into
// totals, ranked breakdowns and completeness metrics.
//
// Totals are authoritative: if they cannot be fetched the whole call fails.
// Transaction detail is best effort: if it cannot be fetched the result is
// marked partial and carries empty breakdowns, never invented ones.
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"civicfin/internal/finance/models"
	"civicfin/internal/finance/ports"
	"civicfin/internal/finance/quality"
	dErrors "civicfin/pkg/domain-errors"
	"civicfin/pkg/platform/sentinel"
	"civicfin/pkg/requestcontext"
)

// Fetch kinds reported to the Observer.
const (
	FetchTotals        = "totals"
	FetchContributions = "contributions"
	FetchExpenditures  = "expenditures"
)

// Totals failures surface with these messages: unavailable when the fetch
// failed, not found when the upstream holds no totals for the cycle.
const (
	msgTotalsUnavailable = "campaign-finance totals are unavailable"
	msgNoFinancialData   = "no campaign-finance data available for this candidate and cycle"
)

// Config sizes transaction pulls and breakdowns.
type Config struct {
	SamplePageSize int
	FullPageSize   int
	TopIndustries  int
	TopEmployers   int
	TopStates      int
	TopPayees      int
}

// DefaultConfig returns the standard sizes.
func DefaultConfig() Config {
	return Config{
		SamplePageSize: 100,
		FullPageSize:   500,
		TopIndustries:  10,
		TopEmployers:   5,
		TopStates:      10,
		TopPayees:      10,
	}
}

// PageSize returns the transaction limit for mode.
func (c Config) PageSize(mode models.Mode) int {
	if mode == models.ModeFull {
		return c.FullPageSize
	}
	return c.SamplePageSize
}

// Request identifies one aggregation.
type Request struct {
	CandidateID string
	Cycle       int
	// State is the legislator's home state, used to flag home-state giving.
	State string
	Mode  models.Mode
}

// Observer receives per-fetch latency. outcome is "ok" or "error".
type Observer interface {
	ObserveFetch(kind, outcome string, d time.Duration)
}

// Aggregator fetches and summarizes finance data.
type Aggregator struct {
	source     ports.FinanceSource
	classifier *quality.Classifier
	cfg        Config
	logger     *slog.Logger
	observer   Observer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConfig overrides the default sizes. Non-positive fields keep their default.
func WithConfig(cfg Config) Option {
	return func(a *Aggregator) {
		def := DefaultConfig()
		a.cfg = Config{
			SamplePageSize: orDefault(cfg.SamplePageSize, def.SamplePageSize),
			FullPageSize:   orDefault(cfg.FullPageSize, def.FullPageSize),
			TopIndustries:  orDefault(cfg.TopIndustries, def.TopIndustries),
			TopEmployers:   orDefault(cfg.TopEmployers, def.TopEmployers),
			TopStates:      orDefault(cfg.TopStates, def.TopStates),
			TopPayees:      orDefault(cfg.TopPayees, def.TopPayees),
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(a *Aggregator) {
		a.observer = o
	}
}

// New creates an Aggregator.
func New(source ports.FinanceSource, classifier *quality.Classifier, opts ...Option) (*Aggregator, error) {
	if source == nil {
		return nil, errors.New("finance source is required")
	}
	if classifier == nil {
		return nil, errors.New("quality classifier is required")
	}
	a := &Aggregator{
		source:     source,
		classifier: classifier,
		cfg:        DefaultConfig(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type fetched struct {
	summary          models.FinancialSummary
	summaryErr       error
	contributions    []models.Transaction
	contributionsErr error
	expenditures     []models.Transaction
	expendituresErr  error
}

// Aggregate fetches totals, contributions and expenditures concurrently and
// builds the result. Only a totals failure is returned as an error.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (*models.AggregateResult, error) {
	if req.CandidateID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "candidate id is required")
	}
	if !models.ValidCycle(req.Cycle) {
		return nil, dErrors.New(dErrors.CodeValidation, "cycle must be an even year between 2000 and 2024")
	}

	ctx, span := otel.Tracer("civicfin/aggregator").Start(ctx, "aggregator.Aggregate")
	defer span.End()
	span.SetAttributes(
		attribute.String("candidate.id", req.CandidateID),
		attribute.Int("cycle", req.Cycle),
		attribute.String("mode", string(req.Mode)),
	)

	data := a.fetch(ctx, req)

	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "finance aggregation cancelled")
	}
	if data.summaryErr != nil {
		a.logger.WarnContext(ctx, "totals fetch failed",
			"request_id", requestcontext.RequestID(ctx),
			"candidate_id", req.CandidateID,
			"cycle", req.Cycle,
			"error", data.summaryErr,
		)
		if isNotFound(data.summaryErr) {
			return nil, dErrors.Wrap(data.summaryErr, dErrors.CodeNotFound, msgNoFinancialData)
		}
		return nil, dErrors.Wrap(data.summaryErr, dErrors.CodeUnavailable, msgTotalsUnavailable)
	}

	result := &models.AggregateResult{
		CandidateID: req.CandidateID,
		Cycle:       req.Cycle,
		Summary:     data.summary,
		Industry:    []models.IndustryEntry{},
		Geography:   []models.GeographicEntry{},
		Spending:    models.SpendingSummary{TopPayees: []models.PayeeEntry{}},
	}

	if data.contributionsErr != nil {
		result.Partial = true
		result.Quality.Industry = a.classifier.Metric(0, 0)
		result.Quality.Geography = a.classifier.Metric(0, 0)
		a.logger.WarnContext(ctx, "contribution fetch failed, returning totals only",
			"request_id", requestcontext.RequestID(ctx),
			"candidate_id", req.CandidateID,
			"cycle", req.Cycle,
			"error", data.contributionsErr,
		)
	} else {
		var withEmployer, withState int
		result.Industry, withEmployer = industryBreakdown(data.contributions, a.cfg.TopIndustries, a.cfg.TopEmployers)
		result.Geography, withState = geographicBreakdown(data.contributions, req.State, a.cfg.TopStates)
		result.Quality.Industry = a.classifier.Metric(len(data.contributions), withEmployer)
		result.Quality.Geography = a.classifier.Metric(len(data.contributions), withState)
		// Nothing to analyze is as partial as a failed fetch.
		result.Partial = len(data.contributions) == 0
	}

	if data.expendituresErr != nil {
		a.logger.InfoContext(ctx, "expenditure fetch failed, spending summary omitted",
			"candidate_id", req.CandidateID,
			"cycle", req.Cycle,
			"error", data.expendituresErr,
		)
	} else {
		result.Spending = spendingSummary(data.expenditures, a.cfg.TopPayees)
	}

	result.Quality.OverallDataConfidence = a.classifier.Classify(true, result.Quality.Industry, result.Quality.Geography)
	span.SetAttributes(
		attribute.Bool("partial", result.Partial),
		attribute.String("confidence", string(result.Quality.OverallDataConfidence)),
	)
	return result, nil
}

// fetch runs the three upstream calls in parallel. Goroutines record their
// error instead of returning it so one failure never cancels the others.
func (a *Aggregator) fetch(ctx context.Context, req Request) *fetched {
	limit := a.cfg.PageSize(req.Mode)
	data := &fetched{}

	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		data.summary, data.summaryErr = a.source.Totals(ctx, req.CandidateID, req.Cycle)
		a.observe(FetchTotals, data.summaryErr, time.Since(start))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		data.contributions, data.contributionsErr = a.source.Contributions(ctx, req.CandidateID, req.Cycle, limit)
		a.observe(FetchContributions, data.contributionsErr, time.Since(start))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		data.expenditures, data.expendituresErr = a.source.Expenditures(ctx, req.CandidateID, req.Cycle, limit)
		a.observe(FetchExpenditures, data.expendituresErr, time.Since(start))
		return nil
	})
	_ = g.Wait()

	return data
}

func (a *Aggregator) observe(kind string, err error, d time.Duration) {
	if a.observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	a.observer.ObserveFetch(kind, outcome, d)
}

type notFounder interface {
	NotFound() bool
}

func isNotFound(err error) bool {
	if errors.Is(err, sentinel.ErrNotFound) {
		return true
	}
	var nf notFounder
	return errors.As(err, &nf) && nf.NotFound()
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
