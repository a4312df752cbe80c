package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientWithRDB(db, "test:", logging.NewNopLogger())
	s.cache = NewRedisCache(client, logging.NewNopLogger(), WithoutJitter(), WithDefaultTTL(time.Minute))
}

func (s *CacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

type testStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := testStruct{Name: "John", Age: 30}
	raw, _ := json.Marshal(val)

	s.mock.ExpectGet("test:key1").SetVal(string(raw))

	var dest testStruct
	s.NoError(s.cache.Get(context.Background(), "key1", &dest))
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)
	s.Equal(ErrCacheMiss, err)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:key1").SetErr(errors.New("READONLY"))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:key1").SetVal("{not json")

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_UsesDefaultTTL() {
	raw, _ := json.Marshal(testStruct{Name: "a"})
	s.mock.ExpectSet("test:k", raw, time.Minute).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "k", testStruct{Name: "a"}, 0))
}

func (s *CacheTestSuite) TestDelete_Success() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "k1", "k2"))
}

func (s *CacheTestSuite) TestDelete_NoKeys() {
	s.NoError(s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestGetOrSet_Hit() {
	val := testStruct{Name: "John", Age: 30}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(raw))

	var dest testStruct
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(context.Context) (interface{}, error) {
		s.Fail("loader must not run on a hit")
		return nil, nil
	})
	s.NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_MissLoadsAndStores() {
	val := testStruct{Name: "Jane", Age: 41}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").RedisNil()
	s.mock.ExpectSet("test:key1", raw, 2*time.Minute).SetVal("OK")

	var dest testStruct
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, 2*time.Minute, func(context.Context) (interface{}, error) {
		return val, nil
	})
	s.NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	s.mock.ExpectGet("test:key1").RedisNil()

	boom := errors.New("db down")
	var dest testStruct
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	s.ErrorIs(err, boom)
}

func (s *CacheTestSuite) TestGetOrSet_BackendDownFallsThrough() {
	val := testStruct{Name: "x"}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetErr(errors.New("connection refused"))
	s.mock.ExpectSet("test:key1", raw, time.Minute).SetErr(errors.New("connection refused"))

	var dest testStruct
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return val, nil
	})
	s.NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:rules:*", 100).SetVal([]string{"test:rules:a", "test:rules:b"}, 7)
	s.mock.ExpectScan(7, "test:rules:*", 100).SetVal([]string{"test:rules:c"}, 0)
	s.mock.ExpectDel("test:rules:a", "test:rules:b", "test:rules:c").SetVal(3)

	n, err := s.cache.DeleteByPrefix(context.Background(), "rules:")
	s.NoError(err)
	s.Equal(int64(3), n)
}

func (s *CacheTestSuite) TestDeleteByPrefix_NothingMatches() {
	s.mock.ExpectScan(0, "test:rules:*", 100).SetVal(nil, 0)

	n, err := s.cache.DeleteByPrefix(context.Background(), "rules:")
	s.NoError(err)
	s.Zero(n)
}

func (s *CacheTestSuite) TestDeleteByPrefix_ScanError() {
	s.mock.ExpectScan(0, "test:rules:*", 100).SetErr(errors.New("LOADING"))

	_, err := s.cache.DeleteByPrefix(context.Background(), "rules:")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestGetOrSet_ConcurrentMissesShareLoader(t *testing.T) {
	client, _ := newMiniClient(t)
	cache := NewRedisCache(client, nil)

	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return testStruct{Name: "shared"}, nil
	}

	var wg sync.WaitGroup
	results := make([]testStruct, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, cache.GetOrSet(context.Background(), "hot", &results[i], time.Minute, loader))
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "shared", r.Name)
	}

	var cached testStruct
	require.NoError(t, cache.Get(context.Background(), "hot", &cached))
	assert.Equal(t, "shared", cached.Name)
}

func TestJitterTTL(t *testing.T) {
	assert.Equal(t, time.Duration(0), jitterTTL(0))
	assert.Equal(t, 5*time.Nanosecond, jitterTTL(5*time.Nanosecond))
	for i := 0; i < 100; i++ {
		got := jitterTTL(10 * time.Second)
		assert.GreaterOrEqual(t, got, 9*time.Second)
		assert.LessOrEqual(t, got, 11*time.Second)
	}
}

//Personal.AI order the ending
