package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tasknotes-backend/internal/config"
	"tasknotes-backend/internal/db"
	"tasknotes-backend/internal/store"
)

// openStore builds the configured medium, optionally wrapped by the Redis
// cache. The returned closer releases every connection that was opened.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.Store, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var medium store.Medium
	switch cfg.StoreDriver {
	case "file":
		medium = store.NewFile(cfg.StorePath)
		logger.WithField("path", cfg.StorePath).Info("using file store")

	case "memory":
		medium = store.NewMemory()
		logger.Warn("using in-memory store, tasks are lost on exit")

	case "postgres", "sqlite":
		driver, conn := string(store.Postgres), cfg.ConnString()
		if cfg.StoreDriver == "sqlite" {
			driver, conn = string(store.SQLite), cfg.SQLitePath
		}
		database, err := db.Connect(ctx, driver, conn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect %s: %w", driver, err)
		}
		closers = append(closers, func() { _ = database.Close() })

		m, err := store.NewSQL(ctx, database, store.Dialect(driver))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		medium = m
		logger.WithField("driver", driver).Info("connected to database")

	case "redis":
		rc, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { _ = rc.Close() })
		medium = store.NewRedis(rc, cfg.RedisKey)
		logger.Info("connected to redis store")

	case "badger":
		bdb, err := store.OpenBadger(cfg.BadgerDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger: %w", err)
		}
		closers = append(closers, func() { _ = bdb.Close() })
		medium = store.NewBadger(bdb)
		logger.WithField("dir", cfg.BadgerDir).Info("opened badger store")

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	var st store.Store = store.New(medium)

	if cfg.CacheRedisURL != "" {
		rc, err := db.ConnectRedis(ctx, cfg.CacheRedisURL)
		if err != nil {
			// The cache is optional; run uncached rather than refuse to start.
			logger.WithError(err).Warn("cache redis unavailable, continuing without cache")
		} else {
			closers = append(closers, func() { _ = rc.Close() })
			st = store.NewCache(st, rc, cfg.CacheTTL, logger)
			logger.WithField("ttl", cfg.CacheTTL.String()).Info("read cache enabled")
		}
	}

	return st, closeAll, nil
}
