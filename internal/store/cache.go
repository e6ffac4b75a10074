package store

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tasknotes-backend/internal/domain"
)

const (
	DefaultCacheKey      = "tasknotes:cache:collection"
	DefaultGenerationKey = "tasknotes:cache:generation"
)

// fillIfCurrent sets KEYS[1] only while KEYS[2] still holds the generation
// observed before the base load. A missing generation reads as "".
var fillIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[2])
if gen == false then gen = "" end
if gen ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Cache wraps a Store with a Redis read-through copy of the collection.
// Redis failures are logged and bypassed; they never fail a call.
//
// Every successful SaveAll bumps a generation counter before evicting. A
// LoadAll only fills the cache if the generation it saw before reading the
// base store is still current, so a read that raced a save cannot
// reinstate the old collection.
type Cache struct {
	base   Store
	redis  *redis.Client
	ttl    time.Duration
	key    string
	genKey string
	log    *log.Logger
}

// NewCache creates a caching Store wrapper using the provided Redis client and TTL.
func NewCache(base Store, client *redis.Client, ttl time.Duration, logger *log.Logger) *Cache {
	if base == nil {
		panic("store.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Cache{
		base:   base,
		redis:  client,
		ttl:    ttl,
		key:    DefaultCacheKey,
		genKey: DefaultGenerationKey,
		log:    logger,
	}
}

func (c *Cache) LoadAll(ctx context.Context) ([]domain.Task, error) {
	if tasks, ok := c.loadFromCache(ctx); ok {
		return tasks, nil
	}

	gen, genOK := c.generation(ctx)

	tasks, err := c.base.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	if genOK {
		c.fill(ctx, gen, tasks)
	}
	return tasks, nil
}

// LoadAllFresh bypasses Redis and reads the base store.
func (c *Cache) LoadAllFresh(ctx context.Context) ([]domain.Task, error) {
	return c.base.LoadAll(ctx)
}

func (c *Cache) SaveAll(ctx context.Context, tasks []domain.Task) error {
	if err := c.base.SaveAll(ctx, tasks); err != nil {
		return err
	}

	c.invalidate(ctx)
	return nil
}

func (c *Cache) loadFromCache(ctx context.Context) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("cache read failed")
			_ = c.redis.Del(ctx, c.key).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := sonic.ConfigStd.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, c.key).Err()
		return nil, false
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, true
}

func (c *Cache) generation(ctx context.Context) (string, bool) {
	if c.redis == nil || c.ttl == 0 {
		return "", false
	}
	gen, err := c.redis.Get(ctx, c.genKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", true
	case err != nil:
		c.log.WithError(err).Warn("cache generation read failed")
		return "", false
	}
	return gen, true
}

func (c *Cache) fill(ctx context.Context, gen string, tasks []domain.Task) {
	data, err := sonic.ConfigStd.Marshal(tasks)
	if err != nil {
		return
	}
	keys := []string{c.key, c.genKey}
	if err := fillIfCurrent.Run(ctx, c.redis, keys, gen, data, max(c.ttl.Milliseconds(), 1)).Err(); err != nil {
		c.log.WithError(err).Warn("cache write failed")
	}
}

func (c *Cache) invalidate(ctx context.Context) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, c.genKey).Err(); err != nil {
		c.log.WithError(err).Warn("cache generation bump failed")
	}
	if err := c.redis.Del(ctx, c.key).Err(); err != nil {
		c.log.WithError(err).Warn("cache evict failed")
	}
}
