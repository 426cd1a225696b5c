package resolver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"civicfin/internal/finance/cycle"
	"civicfin/internal/finance/models"
	"civicfin/internal/finance/namematch"
	"civicfin/internal/finance/ports"
)

// DefaultMinAcceptScore is the lowest name score a search hit can be accepted with.
const DefaultMinAcceptScore = 60

// exactMatchScore ends the fan-out early: full name plus surname agreement
// on a record for the right office and state cannot be beaten.
const exactMatchScore = namematch.WeightExactFullName + namematch.WeightLastName

// SearchConfig bounds the search fan-out.
type SearchConfig struct {
	MinAcceptScore int
	Cycles         int           // cycles searched, counting back from the current one
	MaxCalls       int           // upper bound on upstream calls; zero means variants x cycles
	Timeout        time.Duration // budget for the whole fan-out; zero means the caller's deadline
	Now            func() time.Time
}

func (c SearchConfig) withDefaults() SearchConfig {
	if c.MinAcceptScore <= 0 {
		c.MinAcceptScore = DefaultMinAcceptScore
	}
	if c.Cycles <= 0 {
		c.Cycles = 3
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type searcher struct {
	source ports.CandidateSearcher
	cfg    SearchConfig
	logger *slog.Logger
}

// run performs the bounded fan-out over name variants and cycles, returning
// candidates deduplicated by id in first-seen order. It fails only when
// every call failed.
func (s *searcher) run(ctx context.Context, legislator models.LegislatorRef) ([]models.Candidate, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	variants := namematch.Variants(legislator.DisplayName)
	if len(variants) == 0 {
		return nil, nil
	}
	cycles := cycle.SearchWindow(cycle.Current(s.cfg.Now()), s.cfg.Cycles)
	maxCalls := s.cfg.MaxCalls
	if maxCalls <= 0 {
		maxCalls = len(variants) * len(cycles)
	}
	office := legislator.Chamber.Office()

	seen := make(map[string]struct{})
	var out []models.Candidate
	var errs []error
	calls := 0

search:
	for _, c := range cycles {
		for _, variant := range variants {
			if calls >= maxCalls || ctx.Err() != nil {
				break search
			}
			calls++
			found, err := s.source.SearchCandidates(ctx, ports.SearchQuery{
				Name:   variant,
				State:  legislator.State,
				Office: office,
				Cycle:  c,
			})
			if err != nil {
				errs = append(errs, err)
				continue
			}
			for _, cand := range found {
				if _, dup := seen[cand.CandidateID]; dup || cand.CandidateID == "" {
					continue
				}
				seen[cand.CandidateID] = struct{}{}
				out = append(out, cand)
				if cand.Office == office && cand.State == legislator.State &&
					namematch.Score(cand.Name, legislator.DisplayName) >= exactMatchScore {
					break search
				}
			}
		}
	}

	s.logger.DebugContext(ctx, "candidate search finished",
		"legislator_id", legislator.ExternalID,
		"calls", calls,
		"results", len(out),
		"failures", len(errs),
	)
	if len(out) == 0 && len(errs) > 0 && len(errs) == calls {
		return nil, fmt.Errorf("all %d candidate searches failed: %w", calls, errors.Join(errs...))
	}
	return out, nil
}

// SearchStrategy accepts the best-scoring search hit at or above MinAcceptScore.
type SearchStrategy struct {
	search *searcher
}

// NewSearchStrategy creates the fuzzy search strategy.
func NewSearchStrategy(source ports.CandidateSearcher, cfg SearchConfig, logger *slog.Logger) *SearchStrategy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SearchStrategy{search: &searcher{source: source, cfg: cfg.withDefaults(), logger: logger}}
}

func (s *SearchStrategy) Name() string { return StrategySearch }

func (s *SearchStrategy) Attempt(ctx context.Context, req *Request) (*Resolution, error) {
	results, err := req.Search(ctx, func(ctx context.Context) ([]models.Candidate, error) {
		return s.search.run(ctx, req.Legislator)
	})
	if err != nil {
		return nil, err
	}

	best, ok := BestMatch(results, req.Legislator, s.search.cfg.MinAcceptScore)
	if !ok {
		return nil, nil
	}
	return &Resolution{
		Candidate: best.Candidate.Resolved(),
		Meta:      models.Resolution{Score: best.Score},
	}, nil
}

// BestMatch scores every result against the legislator's display name and
// returns the best one scoring at least minScore. Records whose office and
// state both match rank first, then higher score, then state match, then
// the most recent cycle, then candidate id.
func BestMatch(results []models.Candidate, legislator models.LegislatorRef, minScore int) (models.CandidateMatch, bool) {
	office := legislator.Chamber.Office()
	matches := make([]models.CandidateMatch, 0, len(results))
	for _, c := range results {
		score := namematch.Score(c.Name, legislator.DisplayName)
		if score >= minScore {
			matches = append(matches, models.CandidateMatch{Candidate: c, Score: score})
		}
	}
	if len(matches) == 0 {
		return models.CandidateMatch{}, false
	}

	slices.SortStableFunc(matches, func(a, b models.CandidateMatch) int {
		aState := a.Candidate.State == legislator.State
		bState := b.Candidate.State == legislator.State
		aPreferred := aState && a.Candidate.Office == office
		bPreferred := bState && b.Candidate.Office == office
		if c := compareBool(aPreferred, bPreferred); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := compareBool(aState, bState); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Candidate.LatestCycle(), a.Candidate.LatestCycle()); c != 0 {
			return c
		}
		return cmp.Compare(a.Candidate.CandidateID, b.Candidate.CandidateID)
	})
	return matches[0], true
}

// compareBool orders true before false.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

// LooseStrategy runs after SearchStrategy found results but none cleared
// the score bar. It takes the first result for the legislator's state and
// office, flagged low confidence.
type LooseStrategy struct{}

// NewLooseStrategy creates the loose fallback strategy.
func NewLooseStrategy() *LooseStrategy {
	return &LooseStrategy{}
}

func (s *LooseStrategy) Name() string { return StrategyLoose }

func (s *LooseStrategy) Attempt(_ context.Context, req *Request) (*Resolution, error) {
	results, searched := req.SearchResults()
	if !searched || len(results) == 0 {
		return nil, nil
	}
	office := req.Legislator.Chamber.Office()
	for _, c := range results {
		if c.State == req.Legislator.State && c.Office == office {
			return &Resolution{
				Candidate: c.Resolved(),
				Meta: models.Resolution{
					LowConfidence: true,
					Score:         namematch.Score(c.Name, req.Legislator.DisplayName),
				},
			}, nil
		}
	}
	return nil, nil
}
