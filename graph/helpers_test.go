package graph

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"backendprojects/graph/model"
	"backendprojects/store"
)

var errStoreDown = errors.New("connection refused")

// countingStore counts lookups and can be told to fail operations.
type countingStore struct {
	store.Store
	clients  *countingCollection[model.Client]
	projects *countingCollection[model.Project]
}

func newCountingStore() *countingStore {
	inner := store.NewMemoryStore()
	return &countingStore{
		Store:    inner,
		clients:  &countingCollection[model.Client]{Collection: inner.Clients(), failDelete: map[string]bool{}},
		projects: &countingCollection[model.Project]{Collection: inner.Projects(), failDelete: map[string]bool{}},
	}
}

func (s *countingStore) Clients() store.Collection[model.Client]   { return s.clients }
func (s *countingStore) Projects() store.Collection[model.Project] { return s.projects }

type countingCollection[T any] struct {
	store.Collection[T]
	findByID atomic.Int32
	failAll  atomic.Bool

	mu         sync.Mutex
	failDelete map[string]bool
}

func (c *countingCollection[T]) failDeleteOf(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failDelete[id] = true
}

func (c *countingCollection[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	if c.failAll.Load() {
		return nil, errStoreDown
	}
	return c.Collection.Insert(ctx, doc)
}

func (c *countingCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	c.findByID.Add(1)
	if c.failAll.Load() {
		return nil, errStoreDown
	}
	return c.Collection.FindByID(ctx, id)
}

func (c *countingCollection[T]) FindAll(ctx context.Context) ([]*T, error) {
	if c.failAll.Load() {
		return nil, errStoreDown
	}
	return c.Collection.FindAll(ctx)
}

func (c *countingCollection[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	c.mu.Lock()
	fail := c.failDelete[id]
	c.mu.Unlock()
	if fail || c.failAll.Load() {
		return nil, errStoreDown
	}
	return c.Collection.DeleteByID(ctx, id)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store    *countingStore
	events   *recordingPublisher
	resolver *Resolver
	exec     *Executor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s := newCountingStore()
	events := &recordingPublisher{}
	r := NewResolver(s, events, logger)

	schema, err := NewExecutableSchema(r)
	require.NoError(t, err)
	return &testEnv{store: s, events: events, resolver: r, exec: NewExecutor(&schema, s)}
}

type gqlResult struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func (e *testEnv) run(t *testing.T, query string, vars map[string]any) gqlResult {
	t.Helper()
	res := e.exec.Execute(context.Background(), Request{Query: query, Variables: vars})
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var out gqlResult
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// mustRun fails the test when the operation returns errors.
func (e *testEnv) mustRun(t *testing.T, query string, vars map[string]any) map[string]any {
	t.Helper()
	out := e.run(t, query, vars)
	require.Empty(t, out.Errors)
	return out.Data
}

func (e *testEnv) addClient(t *testing.T, name, email, phone string) string {
	t.Helper()
	data := e.mustRun(t, `mutation($name: String!, $email: String!, $phone: String!) {
		addClient(name: $name, email: $email, phone: $phone) { id }
	}`, map[string]any{"name": name, "email": email, "phone": phone})
	return data["addClient"].(map[string]any)["id"].(string)
}

func (e *testEnv) addProject(t *testing.T, name, description, clientID string) string {
	t.Helper()
	data := e.mustRun(t, `mutation($name: String!, $description: String!, $clientId: ID!) {
		addProject(name: $name, description: $description, clientId: $clientId) { id }
	}`, map[string]any{"name": name, "description": description, "clientId": clientID})
	return data["addProject"].(map[string]any)["id"].(string)
}
