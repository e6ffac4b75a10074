package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotes-backend/internal/domain"
)

type stubStore struct {
	loadFn func(ctx context.Context) ([]domain.Task, error)
	saveFn func(ctx context.Context, tasks []domain.Task) error
}

func (s *stubStore) LoadAll(ctx context.Context) ([]domain.Task, error) {
	if s.loadFn == nil {
		return nil, errors.New("unexpected LoadAll call")
	}
	return s.loadFn(ctx)
}

func (s *stubStore) SaveAll(ctx context.Context, tasks []domain.Task) error {
	if s.saveFn == nil {
		return errors.New("unexpected SaveAll call")
	}
	return s.saveFn(ctx, tasks)
}

func TestCacheLoadMissThenHit(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	expected := []domain.Task{{ID: "t1", Title: "Write code", Content: "now", Date: 3}}

	var calls int
	cache := NewCache(&stubStore{
		loadFn: func(context.Context) ([]domain.Task, error) {
			calls++
			return append([]domain.Task(nil), expected...), nil
		},
	}, client, time.Minute, nil)

	tasks, err := cache.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, tasks)
	assert.Equal(t, 1, calls)

	ttl := mr.TTL(DefaultCacheKey)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "unexpected TTL: %v", ttl)

	tasks, err = cache.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, tasks)
	assert.Equal(t, 1, calls, "second load must be served from redis")
}

func TestCacheSaveEvicts(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	var saved []domain.Task
	cache := NewCache(&stubStore{
		loadFn: func(context.Context) ([]domain.Task, error) { return []domain.Task{}, nil },
		saveFn: func(_ context.Context, tasks []domain.Task) error {
			saved = tasks
			return nil
		},
	}, client, time.Minute, nil)

	_, err := cache.LoadAll(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(DefaultCacheKey))

	require.NoError(t, cache.SaveAll(ctx, []domain.Task{{ID: "new"}}))
	assert.Equal(t, []domain.Task{{ID: "new"}}, saved)
	assert.False(t, mr.Exists(DefaultCacheKey))
}

func TestCacheSaveFailureKeepsEntry(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	boom := errors.New("boom")

	cache := NewCache(&stubStore{
		loadFn: func(context.Context) ([]domain.Task, error) { return []domain.Task{{ID: "a"}}, nil },
		saveFn: func(context.Context, []domain.Task) error { return boom },
	}, client, time.Minute, nil)

	_, err := cache.LoadAll(ctx)
	require.NoError(t, err)

	err = cache.SaveAll(ctx, nil)
	assert.ErrorIs(t, err, boom)
	assert.True(t, mr.Exists(DefaultCacheKey))
}

func TestCacheCorruptEntryFallsBack(t *testing.T) {
	mr, client := newRedis(t)
	require.NoError(t, mr.Set(DefaultCacheKey, "{garbage"))

	cache := NewCache(&stubStore{
		loadFn: func(context.Context) ([]domain.Task, error) { return []domain.Task{{ID: "base"}}, nil },
	}, client, time.Minute, nil)

	tasks, err := cache.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{{ID: "base"}}, tasks)
}

func TestCacheRedisDownFallsBackToBase(t *testing.T) {
	client := deadRedis(t)

	cache := NewCache(&stubStore{
		loadFn: func(context.Context) ([]domain.Task, error) { return []domain.Task{{ID: "base"}}, nil },
		saveFn: func(context.Context, []domain.Task) error { return nil },
	}, client, time.Minute, nil)

	tasks, err := cache.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{{ID: "base"}}, tasks)
	require.NoError(t, cache.SaveAll(context.Background(), nil))
}

func TestCacheZeroTTLDoesNotStore(t *testing.T) {
	mr, client := newRedis(t)

	cache := NewCache(&stubStore{
		loadFn: func(context.Context) ([]domain.Task, error) { return []domain.Task{}, nil },
	}, client, 0, nil)

	_, err := cache.LoadAll(context.Background())
	require.NoError(t, err)
	assert.False(t, mr.Exists(DefaultCacheKey))
}

func TestCacheSaveBumpsGeneration(t *testing.T) {
	mr, client := newRedis(t)
	cache := NewCache(&stubStore{
		saveFn: func(context.Context, []domain.Task) error { return nil },
	}, client, time.Minute, nil)

	require.NoError(t, cache.SaveAll(context.Background(), nil))
	require.NoError(t, cache.SaveAll(context.Background(), nil))

	gen, err := mr.Get(DefaultGenerationKey)
	require.NoError(t, err)
	assert.Equal(t, "2", gen)
}

func TestCacheReadRacingSaveDoesNotFill(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	stale := []domain.Task{{ID: "a"}}
	current := []domain.Task{{ID: "a"}, {ID: "b"}}
	durable := stale

	var cache *Cache
	var loads int
	cache = NewCache(&stubStore{
		loadFn: func(context.Context) ([]domain.Task, error) {
			loads++
			snapshot := durable
			if loads == 1 {
				// A save lands after this read took its snapshot.
				require.NoError(t, cache.SaveAll(ctx, current))
			}
			return snapshot, nil
		},
		saveFn: func(_ context.Context, tasks []domain.Task) error {
			durable = tasks
			return nil
		},
	}, client, time.Minute, nil)

	tasks, err := cache.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, stale, tasks)
	assert.False(t, mr.Exists(DefaultCacheKey), "stale snapshot must not be cached")

	tasks, err = cache.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, current, tasks)
	assert.Equal(t, 2, loads)
	assert.True(t, mr.Exists(DefaultCacheKey))
}

func TestCacheLoadAllFreshBypassesRedis(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()

	base := []domain.Task{{ID: "a"}}
	cache := NewCache(&stubStore{
		loadFn: func(context.Context) ([]domain.Task, error) { return base, nil },
	}, client, time.Minute, nil)

	_, err := cache.LoadAll(ctx)
	require.NoError(t, err)

	base = []domain.Task{{ID: "a"}, {ID: "written-elsewhere"}}

	cached, err := cache.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	fresh, err := cache.LoadAllFresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, base, fresh)
}
