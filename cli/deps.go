package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"backendprojects/config"
	"backendprojects/store"
)

// openStore connects the configured backend and puts the Redis cache in
// front of it when one is configured.
func openStore(ctx context.Context) (store.Store, error) {
	var s store.Store
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on exit")
		s = store.NewMemoryStore()
	default:
		ms, err := store.ConnectMongo(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase, cfg.Store.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		log.WithField("database", cfg.Store.MongoDatabase).Info("connected to MongoDB")
		s = ms
	}

	if cfg.Cache.Addr == "" {
		return s, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		_ = s.Close(ctx)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.WithField("addr", cfg.Cache.Addr).Info("read cache enabled")
	return store.NewCachedStore(s, rdb, cfg.Cache.TTL, log), nil
}
