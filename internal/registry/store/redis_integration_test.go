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

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client, "")
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) push(ids ...any) {
	s.Require().NoError(s.redis.Client.RPush(context.Background(), store.DefaultListKey, ids...).Err())
}

func (s *RedisStoreSuite) TestMissingKeyIsEmpty() {
	ctx := context.Background()
	n, err := s.store.Len(ctx)
	s.Require().NoError(err)
	s.Zero(n)

	_, ok, err := s.store.Get(ctx, 0)
	s.Require().NoError(err)
	s.False(ok)

	all, err := s.store.All(ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *RedisStoreSuite) TestLenGetRange() {
	ctx := context.Background()
	s.push("a.near", "b.near", "c.near")

	n, err := s.store.Len(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(3), n)

	id, ok, err := s.store.Get(ctx, 2)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(models.MarketID("c.near"), id)

	got, err := s.store.Range(ctx, 1, 3)
	s.Require().NoError(err)
	s.Equal([]models.MarketID{"b.near", "c.near"}, got)

	got, err = s.store.Range(ctx, 0, math.MaxUint64)
	s.Require().NoError(err)
	s.Len(got, 3)
}

func (s *RedisStoreSuite) TestServiceOverRedis() {
	ctx := context.Background()
	s.push("a", "b", "c", "d", "e")
	svc := service.New(s.store)

	page, err := svc.ListPage(ctx, 10, 5)
	s.Require().NoError(err)
	s.Empty(page)

	page, err = svc.ListPage(ctx, 1, 3)
	s.Require().NoError(err)
	s.Equal([]models.MarketID{"b", "c", "d"}, page)

	all, err := svc.ListAll(ctx)
	s.Require().NoError(err)
	s.Equal([]models.MarketID{"a", "b", "c", "d", "e"}, all)
}
