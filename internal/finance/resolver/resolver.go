// Package resolver maps a legislator to exactly one FEC candidate record by
// running an ordered list of strategies. The first strategy to produce a
// candidate wins; a strategy that errors is logged and skipped.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"civicfin/internal/finance/models"
	dErrors "civicfin/pkg/domain-errors"
	"civicfin/pkg/requestcontext"
)

// Strategy names, used in responses, logs and metrics.
const (
	StrategyCrosswalk = "crosswalk"
	StrategyProfile   = "profile"
	StrategySearch    = "search"
	StrategyLoose     = "loose"
)

var (
	// ErrResolutionNotFound means every strategy ran and none produced a candidate.
	ErrResolutionNotFound = dErrors.New(dErrors.CodeNotFound, "no campaign-finance candidate record found for legislator")

	// ErrSearchUnavailable means resolution fell through to search and the
	// search upstream could not be reached, so absence is not established.
	ErrSearchUnavailable = errors.New("candidate search unavailable")
)

// Strategy is one way of finding a candidate. A nil resolution with a nil
// error means "no answer here, try the next strategy".
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req *Request) (*Resolution, error)
}

// Resolution is an accepted candidate plus how it was found.
type Resolution struct {
	Candidate models.ResolvedCandidate
	Meta      models.Resolution
}

// Observer receives strategy outcomes: "resolved", "miss", "error" or "rejected".
type Observer interface {
	ObserveStrategy(strategy, outcome string)
	ObserveResolveLatency(d time.Duration)
}

// Resolver runs strategies in order.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
	observer   Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}

// New creates a resolver over strategies, which run in the given order.
func New(strategies []Strategy, opts ...Option) (*Resolver, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("at least one strategy is required")
	}
	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("strategy %d is nil", i)
		}
	}
	r := &Resolver{
		strategies: strategies,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve finds the candidate for legislator.
func (r *Resolver) Resolve(ctx context.Context, legislator models.LegislatorRef) (*Resolution, error) {
	ctx, span := otel.Tracer("civicfin/resolver").Start(ctx, "resolver.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("legislator.id", legislator.ExternalID))

	start := time.Now()
	defer func() {
		if r.observer != nil {
			r.observer.ObserveResolveLatency(time.Since(start))
		}
	}()

	req := NewRequest(legislator)
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "candidate resolution cancelled")
		}

		res, err := s.Attempt(ctx, req)
		if err != nil {
			r.observe(s.Name(), "error")
			r.logger.WarnContext(ctx, "resolution strategy failed",
				"request_id", requestcontext.RequestID(ctx),
				"legislator_id", legislator.ExternalID,
				"strategy", s.Name(),
				"error", err,
			)
			continue
		}
		if res == nil {
			r.observe(s.Name(), "miss")
			continue
		}
		if err := validateOffice(legislator, res); err != nil {
			r.observe(s.Name(), "rejected")
			r.logger.WarnContext(ctx, "resolution rejected",
				"legislator_id", legislator.ExternalID,
				"strategy", s.Name(),
				"candidate_id", res.Candidate.CandidateID,
				"error", err,
			)
			continue
		}

		res.Meta.Strategy = s.Name()
		r.observe(s.Name(), "resolved")
		span.SetAttributes(
			attribute.String("resolution.strategy", s.Name()),
			attribute.String("candidate.id", res.Candidate.CandidateID),
		)
		if res.Meta.OfficeFallback || res.Meta.LowConfidence {
			r.logger.InfoContext(ctx, "candidate resolved with reduced confidence",
				"legislator_id", legislator.ExternalID,
				"candidate_id", res.Candidate.CandidateID,
				"strategy", s.Name(),
				"office_fallback", res.Meta.OfficeFallback,
				"low_confidence", res.Meta.LowConfidence,
			)
		}
		return res, nil
	}

	if req.searched && req.searchErr != nil && len(req.results) == 0 {
		return nil, dErrors.Wrap(errors.Join(ErrSearchUnavailable, req.searchErr), dErrors.CodeUnavailable,
			"candidate search is temporarily unavailable")
	}
	return nil, ErrResolutionNotFound
}

func (r *Resolver) observe(strategy, outcome string) {
	if r.observer != nil {
		r.observer.ObserveStrategy(strategy, outcome)
	}
}

// validateOffice rejects records for offices this engine does not report on
// and flags a chamber mismatch as an office fallback.
func validateOffice(legislator models.LegislatorRef, res *Resolution) error {
	c := &res.Candidate
	if c.CandidateID == "" {
		return fmt.Errorf("resolution has no candidate id")
	}
	if c.Office == "" {
		c.Office = models.OfficeFromCandidateID(c.CandidateID)
	}
	if !c.Office.Valid() {
		return fmt.Errorf("candidate %s is filed for office %q", c.CandidateID, c.Office)
	}
	if want := legislator.Chamber.Office(); want != "" && c.Office != want {
		res.Meta.OfficeFallback = true
	}
	return nil
}
