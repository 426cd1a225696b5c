// Package service sequences legislator lookup, candidate resolution, cycle
// selection and aggregation into one finance report.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"civicfin/internal/cache"
	"civicfin/internal/finance/aggregator"
	"civicfin/internal/finance/cycle"
	"civicfin/internal/finance/metrics"
	"civicfin/internal/finance/models"
	"civicfin/internal/finance/ports"
	"civicfin/internal/finance/resolver"
	dErrors "civicfin/pkg/domain-errors"
	"civicfin/pkg/platform/sentinel"
	"civicfin/pkg/requestcontext"
)

const (
	siteReport = "report"

	// DefaultLoadTimeout bounds a shared report build once it is detached
	// from the request that started it.
	DefaultLoadTimeout = 45 * time.Second
)

// CandidateResolver finds the candidate record for a legislator.
type CandidateResolver interface {
	Resolve(ctx context.Context, legislator models.LegislatorRef) (*resolver.Resolution, error)
}

// FinanceAggregator builds the aggregate for a resolved candidate.
type FinanceAggregator interface {
	Aggregate(ctx context.Context, req aggregator.Request) (*models.AggregateResult, error)
}

// Service orchestrates finance reports.
type Service struct {
	directory  ports.LegislatorDirectory
	resolver   CandidateResolver
	cycles     *cycle.Selector
	aggregator FinanceAggregator

	cache         cache.Cache
	cacheObserver cache.Observer
	reportTTL     time.Duration

	events  ports.EventPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	group       singleflight.Group
	loadTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithReportCache caches finished reports for ttl.
func WithReportCache(c cache.Cache, obs cache.Observer, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheObserver = obs
		s.reportTTL = ttl
	}
}

// WithEventPublisher sets where resolution events go.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithLoadTimeout bounds a shared report build. Builds run detached from
// any single caller so one disconnect cannot fail the others waiting on it.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithClock overrides the time source for LastUpdated. By default the
// request time captured by the requesttime middleware is used.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(directory ports.LegislatorDirectory, r CandidateResolver, cycles *cycle.Selector, agg FinanceAggregator, opts ...Option) (*Service, error) {
	if directory == nil || r == nil || cycles == nil || agg == nil {
		return nil, errors.New("directory, resolver, cycle selector and aggregator are required")
	}
	s := &Service{
		directory:   directory,
		resolver:    r,
		cycles:      cycles,
		aggregator:  agg,
		logger:      slog.New(slog.DiscardHandler),
		loadTimeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Finance returns the report for legislatorID. explicitCycle is validated
// before any upstream call; nil lets the candidate's history decide.
func (s *Service) Finance(ctx context.Context, legislatorID string, explicitCycle *int, mode models.Mode) (*models.FinanceReport, error) {
	start := time.Now()
	report, err := s.finance(ctx, legislatorID, explicitCycle, mode)
	s.metrics.ObserveReportLatency(time.Since(start))
	switch {
	case err != nil:
		s.metrics.IncrementReport(string(dErrors.CodeOf(err)))
	case report.Aggregate.Partial:
		s.metrics.IncrementReport("partial")
	default:
		s.metrics.IncrementReport("ok")
	}
	if err == nil {
		s.metrics.IncrementConfidence(string(report.Aggregate.Quality.OverallDataConfidence))
	}
	return report, err
}

func (s *Service) finance(ctx context.Context, legislatorID string, explicitCycle *int, mode models.Mode) (*models.FinanceReport, error) {
	legislatorID = normalizeID(legislatorID)
	if legislatorID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "legislator id is required")
	}
	if explicitCycle != nil {
		if err := cycle.Validate(*explicitCycle); err != nil {
			return nil, err
		}
	}
	if mode == "" {
		mode = models.ModeSample
	}
	if _, ok := models.ParseMode(string(mode)); !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "mode must be sample or full")
	}

	key := reportKey(legislatorID, explicitCycle, mode)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.load(ctx, key, legislatorID, explicitCycle, mode)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*models.FinanceReport), nil
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "finance request abandoned")
	}
}

// load runs on a context that keeps the first caller's values but not its
// cancellation; every caller joined on key waits on its own context instead.
func (s *Service) load(ctx context.Context, key, legislatorID string, explicitCycle *int, mode models.Mode) (*models.FinanceReport, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
	defer cancel()

	report, err := cache.Fetch(ctx, s.cache, s.cacheObserver, siteReport, key, s.reportTTL,
		func(ctx context.Context) (*models.FinanceReport, error) {
			return s.build(ctx, legislatorID, explicitCycle, mode)
		})
	var de *dErrors.Error
	if err != nil && ctx.Err() != nil && !errors.As(err, &de) {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "finance report timed out")
	}
	return report, err
}

func (s *Service) build(ctx context.Context, legislatorID string, explicitCycle *int, mode models.Mode) (*models.FinanceReport, error) {
	ctx, span := otel.Tracer("civicfin/service").Start(ctx, "service.Finance")
	defer span.End()
	span.SetAttributes(attribute.String("legislator.id", legislatorID), attribute.String("mode", string(mode)))

	legislator, res, err := s.resolve(ctx, legislatorID)
	if err != nil {
		return nil, err
	}

	sel, err := s.cycles.Select(explicitCycle, &res.Candidate)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("cycle", sel.Cycle), attribute.String("cycle.source", string(sel.Source)))

	agg, err := s.aggregator.Aggregate(ctx, aggregator.Request{
		CandidateID: res.Candidate.CandidateID,
		Cycle:       sel.Cycle,
		State:       legislator.State,
		Mode:        mode,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "finance aggregation failed",
			"request_id", requestcontext.RequestID(ctx),
			"legislator_id", legislatorID,
			"candidate_id", res.Candidate.CandidateID,
			"cycle", sel.Cycle,
			"error", err,
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "finance report built",
		"request_id", requestcontext.RequestID(ctx),
		"legislator_id", legislatorID,
		"candidate_id", res.Candidate.CandidateID,
		"strategy", res.Meta.Strategy,
		"cycle", sel.Cycle,
		"cycle_source", sel.Source,
		"partial", agg.Partial,
		"confidence", agg.Quality.OverallDataConfidence,
	)

	return &models.FinanceReport{
		Legislator:    legislator,
		Candidate:     res.Candidate,
		Resolution:    res.Meta,
		Cycle:         sel.Cycle,
		CycleInferred: sel.Inferred,
		Aggregate:     *agg,
		LastUpdated:   s.clock(ctx).UTC(),
	}, nil
}

func (s *Service) clock(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requestcontext.Now(ctx)
}

// Candidate resolves legislatorID without fetching finance data.
func (s *Service) Candidate(ctx context.Context, legislatorID string) (*models.CandidateReport, error) {
	legislatorID = normalizeID(legislatorID)
	if legislatorID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "legislator id is required")
	}
	legislator, res, err := s.resolve(ctx, legislatorID)
	if err != nil {
		return nil, err
	}
	return &models.CandidateReport{
		Legislator: legislator,
		Candidate:  res.Candidate,
		Resolution: res.Meta,
	}, nil
}

func (s *Service) resolve(ctx context.Context, legislatorID string) (models.LegislatorRef, *resolver.Resolution, error) {
	legislator, err := s.directory.Legislator(ctx, legislatorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.LegislatorRef{}, nil, dErrors.New(dErrors.CodeNotFound, "legislator not found")
		}
		return models.LegislatorRef{}, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "legislator directory unavailable")
	}

	res, err := s.resolver.Resolve(ctx, legislator)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.publish(ctx, ports.ResolutionEvent{
				Type:           ports.EventNotFound,
				LegislatorID:   legislator.ExternalID,
				LegislatorName: legislator.DisplayName,
			})
		}
		return legislator, nil, err
	}

	switch {
	case res.Meta.LowConfidence:
		s.publish(ctx, resolutionEvent(ports.EventLowConfidence, legislator, res))
	case res.Meta.OfficeFallback:
		s.publish(ctx, resolutionEvent(ports.EventOfficeFallback, legislator, res))
	}
	return legislator, res, nil
}

func (s *Service) publish(ctx context.Context, event ports.ResolutionEvent) {
	if s.events == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish resolution event",
			"event_type", event.Type,
			"legislator_id", event.LegislatorID,
			"error", err,
		)
	}
}

func resolutionEvent(eventType string, legislator models.LegislatorRef, res *resolver.Resolution) ports.ResolutionEvent {
	return ports.ResolutionEvent{
		Type:           eventType,
		LegislatorID:   legislator.ExternalID,
		LegislatorName: legislator.DisplayName,
		CandidateID:    res.Candidate.CandidateID,
		Strategy:       res.Meta.Strategy,
		Score:          res.Meta.Score,
		OfficeFallback: res.Meta.OfficeFallback,
		LowConfidence:  res.Meta.LowConfidence,
	}
}

func reportKey(legislatorID string, explicitCycle *int, mode models.Mode) string {
	c := "latest"
	if explicitCycle != nil {
		c = strconv.Itoa(*explicitCycle)
	}
	return cache.Key(siteReport, legislatorID, c, string(mode))
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
