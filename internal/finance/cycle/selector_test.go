package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civicfin/internal/finance/models"
	dErrors "civicfin/pkg/domain-errors"
)

type SelectorSuite struct {
	suite.Suite
	selector *Selector
}

func TestSelectorSuite(t *testing.T) {
	suite.Run(t, new(SelectorSuite))
}

func (s *SelectorSuite) SetupTest() {
	s.selector = NewSelector(0)
}

func cyclePtr(c int) *int { return &c }

func (s *SelectorSuite) TestExplicitCycle() {
	s.Run("odd year is a validation error", func() {
		_, err := s.selector.Select(cyclePtr(2023), nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("year before range is a validation error", func() {
		_, err := s.selector.Select(cyclePtr(1998), nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("year after range is a validation error", func() {
		_, err := s.selector.Select(cyclePtr(2026), nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("valid year is returned unchanged", func() {
		sel, err := s.selector.Select(cyclePtr(2024), nil)
		s.Require().NoError(err)
		s.Equal(2024, sel.Cycle)
		s.Equal(SourceExplicit, sel.Source)
		s.False(sel.Inferred)
	})

	s.Run("explicit cycle wins over candidate history", func() {
		cand := &models.ResolvedCandidate{Cycles: []int{2020, 2022, 2024}}
		sel, err := s.selector.Select(cyclePtr(2018), cand)
		s.Require().NoError(err)
		s.Equal(2018, sel.Cycle)
	})
}

func (s *SelectorSuite) TestInferredCycle() {
	s.Run("picks most recent cycle from history", func() {
		cand := &models.ResolvedCandidate{Cycles: []int{2014, 2020, 2016}, ElectionYears: []int{2014, 2020}}
		sel, err := s.selector.Select(nil, cand)
		s.Require().NoError(err)
		s.Equal(2020, sel.Cycle)
		s.Equal(SourceHistory, sel.Source)
		s.False(sel.Inferred)
	})

	s.Run("ignores cycles outside the supported range", func() {
		cand := &models.ResolvedCandidate{Cycles: []int{1996, 2022, 2026}}
		sel, err := s.selector.Select(nil, cand)
		s.Require().NoError(err)
		s.Equal(2022, sel.Cycle)
	})

	s.Run("odd special election year rounds up", func() {
		cand := &models.ResolvedCandidate{ElectionYears: []int{2017}}
		sel, err := s.selector.Select(nil, cand)
		s.Require().NoError(err)
		s.Equal(2018, sel.Cycle)
	})

	s.Run("no history falls back to default and flags inference", func() {
		sel, err := s.selector.Select(nil, &models.ResolvedCandidate{})
		s.Require().NoError(err)
		s.Equal(models.MaxCycle, sel.Cycle)
		s.Equal(SourceDefault, sel.Source)
		s.True(sel.Inferred)
	})

	s.Run("unresolved candidate falls back to default", func() {
		sel, err := s.selector.Select(nil, nil)
		s.Require().NoError(err)
		s.Equal(2024, sel.Cycle)
		s.True(sel.Inferred)
	})

	s.Run("configured default is honored", func() {
		sel, err := NewSelector(2022).Select(nil, nil)
		s.Require().NoError(err)
		s.Equal(2022, sel.Cycle)
	})
}

func (s *SelectorSuite) TestParse() {
	s.Run("empty means not supplied", func() {
		c, err := Parse(" ")
		s.NoError(err)
		s.Nil(c)
	})

	s.Run("non numeric is a validation error", func() {
		_, err := Parse("twenty")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("odd numeric is a validation error", func() {
		_, err := Parse("2021")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("valid value parses", func() {
		c, err := Parse("2022")
		s.Require().NoError(err)
		s.Equal(2022, *c)
	})
}

func (s *SelectorSuite) TestCurrentAndWindow() {
	s.Equal(2024, Current(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)))
	s.Equal(2024, Current(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)))
	s.Equal(2010, Current(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)))

	s.Equal([]int{2024, 2022, 2020}, SearchWindow(2024, 3))
	s.Equal([]int{2002, 2000}, SearchWindow(2002, 3))
}
