//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civicfin/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = NewRedis(s.redis.Client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, Key("totals", "S4MI00355", "2024"), []byte(`{"cycle":2024}`), time.Minute))

	got, ok, err := s.cache.Get(ctx, Key("totals", "S4MI00355", "2024"))
	s.Require().NoError(err)
	s.True(ok)
	s.JSONEq(`{"cycle":2024}`, string(got))

	ttl, err := s.redis.Client.TTL(ctx, Key("totals", "S4MI00355", "2024")).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisCacheSuite) TestMiss() {
	_, ok, err := s.cache.Get(context.Background(), "absent")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisCacheSuite) TestFetchThroughRedis() {
	ctx := context.Background()
	loads := 0
	load := func(context.Context) ([]int, error) {
		loads++
		return []int{2020, 2022, 2024}, nil
	}
	for range 2 {
		got, err := Fetch(ctx, s.cache, nil, "cycles", "k", time.Minute, load)
		s.Require().NoError(err)
		s.Equal([]int{2020, 2022, 2024}, got)
	}
	s.Equal(1, loads)
}
