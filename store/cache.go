package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"backendprojects/graph/model"
)

const cachePrefix = "backendprojects"

// CachedStore serves FindByID from Redis and drops the cached entry whenever
// the document is updated or deleted. Redis failures are logged and the call
// falls through to the wrapped store.
type CachedStore struct {
	inner    Store
	rdb      *redis.Client
	clients  *cachedCollection[model.Client]
	projects *cachedCollection[model.Project]
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedStore {
	return &CachedStore{
		inner:    inner,
		rdb:      rdb,
		clients:  &cachedCollection[model.Client]{inner: inner.Clients(), rdb: rdb, kind: KindClient, ttl: ttl, log: log},
		projects: &cachedCollection[model.Project]{inner: inner.Projects(), rdb: rdb, kind: KindProject, ttl: ttl, log: log},
	}
}

func (s *CachedStore) Clients() Collection[model.Client]   { return s.clients }
func (s *CachedStore) Projects() Collection[model.Project] { return s.projects }

func (s *CachedStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return s.inner.Ping(ctx)
}

func (s *CachedStore) Close(ctx context.Context) error {
	return errors.Join(s.rdb.Close(), s.inner.Close(ctx))
}

type cachedCollection[T any] struct {
	inner Collection[T]
	rdb   *redis.Client
	kind  string
	ttl   time.Duration
	log   logrus.FieldLogger
}

func cacheKey(kind, id string) string {
	return cachePrefix + ":" + kind + ":" + id
}

func generationKey(kind, id string) string {
	return cacheKey(kind, id) + ":gen"
}

func (c *cachedCollection[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	return c.inner.Insert(ctx, doc)
}

func (c *cachedCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	key := cacheKey(c.kind, id)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		out := new(T)
		if err := json.Unmarshal(raw, out); err == nil {
			return out, nil
		}
		c.log.WithField("key", key).Warn("dropping undecodable cache entry")
		c.forget(ctx, id)
	case !errors.Is(err, redis.Nil):
		c.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}

	return c.fill(ctx, id)
}

// fill reads id from the wrapped store and caches it. The generation key is
// watched across the read, so a write that lands in between aborts the SET
// and the stale document never reaches the cache.
func (c *cachedCollection[T]) fill(ctx context.Context, id string) (*T, error) {
	key := cacheKey(c.kind, id)
	var (
		doc     *T
		readErr error
		read    bool
	)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		doc, readErr = c.inner.FindByID(ctx, id)
		read = true
		if readErr != nil || doc == nil {
			return nil
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey(c.kind, id))

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		c.log.WithField("key", key).Debug("skipped cache fill after concurrent write")
	default:
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	if !read {
		return c.inner.FindByID(ctx, id)
	}
	return doc, readErr
}

func (c *cachedCollection[T]) FindAll(ctx context.Context) ([]*T, error) {
	return c.inner.FindAll(ctx)
}

func (c *cachedCollection[T]) FindWhere(ctx context.Context, filter Filter) ([]*T, error) {
	return c.inner.FindWhere(ctx, filter)
}

func (c *cachedCollection[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	doc, err := c.inner.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.forget(ctx, id)
	return doc, nil
}

func (c *cachedCollection[T]) UpdateByID(ctx context.Context, id string, fields Fields) (*T, error) {
	doc, err := c.inner.UpdateByID(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	c.forget(ctx, id)
	return doc, nil
}

// forget drops the cached entry and bumps the generation so that fills
// which read the old document before this write are discarded.
func (c *cachedCollection[T]) forget(ctx context.Context, id string) {
	key := cacheKey(c.kind, id)
	gen := generationKey(c.kind, id)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gen)
		pipe.Expire(ctx, gen, c.ttl)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache invalidation failed")
	}
}
