package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"civicfin/internal/finance/models"
	"civicfin/internal/finance/ports"
	"civicfin/pkg/platform/sentinel"
)

// identifierStrategy resolves through a source that returns FEC ids
// directly. The crosswalk and profile strategies differ only in source.
type identifierStrategy struct {
	name       string
	source     ports.IdentifierSource
	candidates ports.CandidateSource
	logger     *slog.Logger
}

// NewCrosswalkStrategy resolves through the authoritative crosswalk.
// candidates may be nil, in which case ids are accepted without history.
func NewCrosswalkStrategy(source ports.IdentifierSource, candidates ports.CandidateSource, logger *slog.Logger) Strategy {
	return newIdentifierStrategy(StrategyCrosswalk, source, candidates, logger)
}

// NewProfileStrategy resolves through the enhanced member profile source.
func NewProfileStrategy(source ports.IdentifierSource, candidates ports.CandidateSource, logger *slog.Logger) Strategy {
	return newIdentifierStrategy(StrategyProfile, source, candidates, logger)
}

func newIdentifierStrategy(name string, source ports.IdentifierSource, candidates ports.CandidateSource, logger *slog.Logger) *identifierStrategy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &identifierStrategy{name: name, source: source, candidates: candidates, logger: logger}
}

func (s *identifierStrategy) Name() string { return s.name }

func (s *identifierStrategy) Attempt(ctx context.Context, req *Request) (*Resolution, error) {
	if s.source == nil {
		return nil, nil
	}
	ids, err := s.source.FECIDs(ctx, req.Legislator.ExternalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	id, fallback, ok := SelectID(ids, req.Legislator.Chamber.Office())
	if !ok {
		return nil, nil
	}
	if fallback {
		s.logger.InfoContext(ctx, "no identifier matches chamber, using first",
			"strategy", s.name,
			"legislator_id", req.Legislator.ExternalID,
			"chamber", req.Legislator.Chamber,
			"candidate_id", id,
		)
	}

	return &Resolution{
		Candidate: s.hydrate(ctx, id, req.Legislator),
		Meta:      models.Resolution{OfficeFallback: fallback},
	}, nil
}

// hydrate fills in name and history from the candidate source. Failure
// still accepts the id, with the legislator's own name and state.
func (s *identifierStrategy) hydrate(ctx context.Context, id string, legislator models.LegislatorRef) models.ResolvedCandidate {
	if s.candidates != nil {
		c, err := s.candidates.Candidate(ctx, id)
		if err == nil && c.CandidateID != "" {
			return c.Resolved()
		}
		s.logger.WarnContext(ctx, "candidate hydration failed",
			"strategy", s.name,
			"candidate_id", id,
			"error", err,
		)
	}
	return models.ResolvedCandidate{
		CandidateID: id,
		Name:        legislator.DisplayName,
		Office:      models.OfficeFromCandidateID(id),
		State:       legislator.State,
		District:    legislator.District,
	}
}

// SelectID picks the first id whose office prefix matches office. When none
// matches it returns the first id, with fallback set if an office was
// requested. ok is false for an empty list.
func SelectID(ids []string, office models.Office) (id string, fallback, ok bool) {
	var first string
	for _, raw := range ids {
		candidate := strings.ToUpper(strings.TrimSpace(raw))
		if candidate == "" {
			continue
		}
		if first == "" {
			first = candidate
		}
		if office != "" && models.OfficeFromCandidateID(candidate) == office {
			return candidate, false, true
		}
	}
	if first == "" {
		return "", false, false
	}
	return first, office != "", true
}

// notFounder is implemented by upstream error types that can say "no such record".
type notFounder interface {
	NotFound() bool
}

func isNotFound(err error) bool {
	var nf notFounder
	return errors.As(err, &nf) && nf.NotFound()
}
