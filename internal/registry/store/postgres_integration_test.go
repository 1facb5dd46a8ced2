//go:build integration

package store_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"marketfactory/internal/registry/models"
	"marketfactory/internal/registry/service"
	"marketfactory/internal/registry/store"
	"marketfactory/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(s.postgres.Exec(context.Background(), store.Schema))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "markets"))
}

func (s *PostgresStoreSuite) insert(ids ...string) {
	for i, id := range ids {
		_, err := s.postgres.DB.Exec(`INSERT INTO markets (idx, account_id) VALUES ($1, $2)`, i, id)
		s.Require().NoError(err)
	}
}

func (s *PostgresStoreSuite) TestLenGetAll() {
	ctx := context.Background()
	s.insert("a.near", "b.near", "c.near")

	n, err := s.store.Len(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(3), n)

	id, ok, err := s.store.Get(ctx, 1)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(models.MarketID("b.near"), id)

	_, ok, err = s.store.Get(ctx, math.MaxUint64)
	s.Require().NoError(err)
	s.False(ok)

	all, err := s.store.All(ctx)
	s.Require().NoError(err)
	s.Equal([]models.MarketID{"a.near", "b.near", "c.near"}, all)
}

func (s *PostgresStoreSuite) TestRangeSkipsGaps() {
	ctx := context.Background()
	s.insert("a.near", "b.near", "c.near")
	_, err := s.postgres.DB.Exec(`DELETE FROM markets WHERE idx = 1`)
	s.Require().NoError(err)

	got, err := s.store.Range(ctx, 0, 3)
	s.Require().NoError(err)
	s.Equal([]models.MarketID{"a.near", "c.near"}, got)

	got, err = s.store.Range(ctx, math.MaxUint64-1, math.MaxUint64)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *PostgresStoreSuite) TestServiceOverPostgres() {
	ctx := context.Background()
	s.insert("a", "b", "c", "d", "e")
	svc := service.New(s.store)

	page, err := svc.ListPage(ctx, 2, 2)
	s.Require().NoError(err)
	s.Equal([]models.MarketID{"c", "d"}, page)

	page, err = svc.ListPage(ctx, 4, math.MaxUint64)
	s.Require().NoError(err)
	s.Equal([]models.MarketID{"e"}, page)

	count, err := svc.Count(ctx)
	s.Require().NoError(err)
	s.Equal(models.U64(5), count)
}
