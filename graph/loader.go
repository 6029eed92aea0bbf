package graph

import (
	"context"
	"sync"

	"backendprojects/graph/model"
	"backendprojects/store"
)

type loadersKey struct{}

// Loaders memoizes relationship lookups for the lifetime of one request.
type Loaders struct {
	clients store.Collection[model.Client]

	mu      sync.Mutex
	results map[string]*clientResult
}

type clientResult struct {
	once   sync.Once
	client *model.Client
	err    error
}

// WithLoaders attaches a fresh set of loaders to ctx. Call it once per
// request.
func WithLoaders(ctx context.Context, s store.Store) context.Context {
	return context.WithValue(ctx, loadersKey{}, &Loaders{
		clients: s.Clients(),
		results: map[string]*clientResult{},
	})
}

func loadersFrom(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey{}).(*Loaders)
	return l
}

// Client returns the client with the given id, hitting the store at most
// once per id. Concurrent callers for the same id share one lookup.
func (l *Loaders) Client(ctx context.Context, id string) (*model.Client, error) {
	l.mu.Lock()
	res, ok := l.results[id]
	if !ok {
		res = &clientResult{}
		l.results[id] = res
	}
	l.mu.Unlock()

	res.once.Do(func() {
		res.client, res.err = l.clients.FindByID(ctx, id)
	})
	if res.client == nil {
		return nil, res.err
	}
	c := *res.client
	return &c, res.err
}

// Forget drops the memoized lookup for id. Safe on a nil *Loaders.
func (l *Loaders) Forget(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.results, id)
	l.mu.Unlock()
}
