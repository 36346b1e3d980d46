package redis

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

type testStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type CacheTestSuite struct {
	suite.Suite
	client *Client
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	s.client, _ = newTestClient(s.T())
	s.cache = NewRedisCache(s.client, logging.NewNopLogger(), WithPrefix("test:"), WithoutJitter())
}

func (s *CacheTestSuite) TestSetGet_RoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "k1", testStruct{Name: "John", Age: 30}, time.Minute))

	var got testStruct
	s.Require().NoError(s.cache.Get(ctx, "k1", &got))
	s.Equal(testStruct{Name: "John", Age: 30}, got)

	ttl := s.client.GetUnderlyingClient().TTL(ctx, "test:k1").Val()
	s.Equal(time.Minute, ttl)
}

func (s *CacheTestSuite) TestGet_Miss() {
	var got testStruct
	s.Equal(ErrCacheMiss, s.cache.Get(context.Background(), "absent", &got))
}

func (s *CacheTestSuite) TestGet_NullMarkerIsMiss() {
	ctx := context.Background()
	s.Require().NoError(s.client.Set(ctx, "test:k1", nullMarker, 0).Err())

	var got testStruct
	s.Equal(ErrCacheMiss, s.cache.Get(ctx, "k1", &got))
}

func (s *CacheTestSuite) TestDeleteAndExists() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "k1", 1, 0))

	ok, err := s.cache.Exists(ctx, "k1")
	s.NoError(err)
	s.True(ok)

	s.NoError(s.cache.Delete(ctx, "k1", "k2"))
	ok, err = s.cache.Exists(ctx, "k1")
	s.NoError(err)
	s.False(ok)
	s.NoError(s.cache.Delete(ctx))
}

func (s *CacheTestSuite) TestGetOrSet_LoadsOnceThenHits() {
	ctx := context.Background()
	var calls int32
	loader := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return &testStruct{Name: "Jane", Age: 41}, nil
	}

	var first, second testStruct
	s.Require().NoError(s.cache.GetOrSet(ctx, "k1", &first, time.Minute, loader))
	s.Require().NoError(s.cache.GetOrSet(ctx, "k1", &second, time.Minute, loader))
	s.Equal("Jane", first.Name)
	s.Equal(first, second)
	s.Equal(int32(1), atomic.LoadInt32(&calls))
}

func (s *CacheTestSuite) TestGetOrSet_NilValueCachesNull() {
	ctx := context.Background()
	var got testStruct
	err := s.cache.GetOrSet(ctx, "k1", &got, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	s.Equal(ErrCacheMiss, err)

	raw, err := s.client.Get(ctx, "test:k1").Result()
	s.NoError(err)
	s.Equal(nullMarker, raw)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	boom := stderrors.New("boom")
	var got testStruct
	err := s.cache.GetOrSet(context.Background(), "k1", &got, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	s.ErrorIs(err, boom)
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	ctx := context.Background()
	for _, k := range []string{"summary:2025:apr", "summary:2025:may", "settings:current"} {
		s.Require().NoError(s.cache.Set(ctx, k, 1, 0))
	}
	n, err := s.cache.DeleteByPrefix(ctx, "summary:")
	s.NoError(err)
	s.Equal(int64(2), n)

	ok, _ := s.cache.Exists(ctx, "settings:current")
	s.True(ok)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestGetOrSet_ConcurrentMissesShareLoader(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewRedisCache(client, nil)

	var calls int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var v int
			assert.NoError(t, cache.GetOrSet(context.Background(), "answer", &v, time.Minute, loader))
			assert.Equal(t, 42, v)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	require.LessOrEqual(t, atomic.LoadInt32(&calls), int32(8))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestJitterTTL(t *testing.T) {
	c := &redisCache{jitter: true}
	for i := 0; i < 100; i++ {
		got := c.jitterTTL(time.Minute)
		assert.GreaterOrEqual(t, got, 54*time.Second)
		assert.LessOrEqual(t, got, 66*time.Second)
	}
	assert.Zero(t, c.jitterTTL(0))
}

//Personal.AI order the ending
