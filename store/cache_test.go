package store

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backendprojects/graph/model"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *MemoryStore, *CachedStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger, _ := test.NewNullLogger()
	inner := NewMemoryStore()
	return mr, inner, NewCachedStore(inner, rdb, time.Minute, logger)
}

func TestCachedStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		_, _, s := setupCache(t)
		return s
	})
}

func TestCachedStore_ServesFromCache(t *testing.T) {
	mr, inner, s := setupCache(t)
	ctx := context.Background()

	c, err := inner.Clients().Insert(ctx, &model.Client{Name: "Acme", Email: "a@acme.com", Phone: "555"})
	require.NoError(t, err)

	_, err = s.Clients().FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cacheKey(KindClient, c.ID)))
	assert.Equal(t, time.Minute, mr.TTL(cacheKey(KindClient, c.ID)))

	// Change the backing document behind the cache's back.
	_, err = inner.Clients().UpdateByID(ctx, c.ID, Fields{model.FieldName: "Other"})
	require.NoError(t, err)

	got, err := s.Clients().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
}

func TestCachedStore_InvalidatesOnWrite(t *testing.T) {
	mr, _, s := setupCache(t)
	ctx := context.Background()

	p, err := s.Projects().Insert(ctx, &model.Project{Name: "Site", Description: "d", Status: model.StatusNotStarted, ClientID: "c1"})
	require.NoError(t, err)
	_, err = s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	key := cacheKey(KindProject, p.ID)
	require.True(t, mr.Exists(key))

	_, err = s.Projects().UpdateByID(ctx, p.ID, Fields{model.FieldName: "New"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	_, err = s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(key))

	_, err = s.Projects().DeleteByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))
}

func TestCachedStore_AbsentIsNotCached(t *testing.T) {
	mr, _, s := setupCache(t)

	got, err := s.Clients().FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(cacheKey(KindClient, "missing")))
}

func TestCachedStore_RedisDown(t *testing.T) {
	mr, inner, s := setupCache(t)
	ctx := context.Background()

	c, err := inner.Clients().Insert(ctx, &model.Client{Name: "Acme"})
	require.NoError(t, err)
	mr.Close()

	got, err := s.Clients().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Error(t, s.Ping(ctx))
}

func TestCachedStore_CorruptEntry(t *testing.T) {
	mr, inner, s := setupCache(t)
	ctx := context.Background()

	c, err := inner.Clients().Insert(ctx, &model.Client{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(KindClient, c.ID), "{not json"))

	got, err := s.Clients().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	raw, err := mr.Get(cacheKey(KindClient, c.ID))
	require.NoError(t, err)
	var cached model.Client
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, c.ID, cached.ID)
}

// pausingStore hands out a client collection whose next FindByID stops after
// reading until release is closed.
type pausingStore struct {
	*MemoryStore
	clients *pausingCollection
}

func (s *pausingStore) Clients() Collection[model.Client] { return s.clients }

type pausingCollection struct {
	Collection[model.Client]
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (c *pausingCollection) FindByID(ctx context.Context, id string) (*model.Client, error) {
	doc, err := c.Collection.FindByID(ctx, id)
	if c.armed.CompareAndSwap(true, false) {
		close(c.read)
		<-c.release
	}
	return doc, err
}

func TestCachedStore_WriteDuringFill(t *testing.T) {
	cases := map[string]func(ctx context.Context, s Store, id string) error{
		"delete": func(ctx context.Context, s Store, id string) error {
			_, err := s.Clients().DeleteByID(ctx, id)
			return err
		},
		"update": func(ctx context.Context, s Store, id string) error {
			_, err := s.Clients().UpdateByID(ctx, id, Fields{model.FieldName: "Renamed"})
			return err
		},
	}
	for name, write := range cases {
		t.Run(name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			logger, _ := test.NewNullLogger()
			ctx := context.Background()

			mem := NewMemoryStore()
			c, err := mem.Clients().Insert(ctx, &model.Client{Name: "Acme", Email: "a@acme.com", Phone: "555"})
			require.NoError(t, err)

			pausing := &pausingCollection{
				Collection: mem.Clients(),
				read:       make(chan struct{}),
				release:    make(chan struct{}),
			}
			pausing.armed.Store(true)
			s := NewCachedStore(&pausingStore{MemoryStore: mem, clients: pausing}, rdb, time.Minute, logger)

			done := make(chan *model.Client, 1)
			go func() {
				got, _ := s.Clients().FindByID(ctx, c.ID)
				done <- got
			}()

			<-pausing.read
			require.NoError(t, write(ctx, s, c.ID))
			close(pausing.release)

			stale := <-done
			require.NotNil(t, stale)
			assert.Equal(t, "Acme", stale.Name)
			assert.False(t, mr.Exists(cacheKey(KindClient, c.ID)))

			got, err := s.Clients().FindByID(ctx, c.ID)
			require.NoError(t, err)
			if name == "delete" {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, "Renamed", got.Name)
			}
		})
	}
}
