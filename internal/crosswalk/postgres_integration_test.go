//go:build integration

package crosswalk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"civicfin/internal/finance/models"
	"civicfin/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "legislator_fec_ids", "legislators"))
}

func (s *PostgresStoreSuite) TestImportAndLookup() {
	ctx := context.Background()
	file, err := LoadFile("testdata/legislators.yaml")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Import(ctx, file.Entries()))

	ref, err := s.store.Legislator(ctx, "P000595")
	s.Require().NoError(err)
	s.Equal(models.ChamberSenate, ref.Chamber)
	s.Equal("MI", ref.State)

	ids, err := s.store.FECIDs(ctx, "p000595")
	s.Require().NoError(err)
	s.Equal([]string{"H8MI09068", "S4MI00355"}, ids)

	ids, err = s.store.FECIDs(ctx, "N000188")
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *PostgresStoreSuite) TestImportReplacesIDs() {
	ctx := context.Background()
	entry := Legislator{
		ID:    Identifiers{Bioguide: "P000595", FEC: []string{"H8MI09068"}},
		Name:  Name{OfficialFull: "Gary C. Peters"},
		Terms: []Term{{Type: "sen", Start: "2015-01-06", State: "MI"}},
	}
	s.Require().NoError(s.store.Import(ctx, []Legislator{entry}))

	entry.ID.FEC = []string{"S4MI00355"}
	s.Require().NoError(s.store.Import(ctx, []Legislator{entry}))

	ids, err := s.store.FECIDs(ctx, "P000595")
	s.Require().NoError(err)
	s.Equal([]string{"S4MI00355"}, ids)
}

func (s *PostgresStoreSuite) TestUnknownLegislator() {
	_, err := s.store.FECIDs(context.Background(), "X000000")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.store.Legislator(context.Background(), "X000000")
	s.ErrorIs(err, ErrNotFound)
}
