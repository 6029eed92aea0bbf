package store

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"backendprojects/graph/model"
)

// MemoryStore keeps documents in process. It stores the same bson shape as
// MongoStore and is used for local runs and tests.
type MemoryStore struct {
	clients  *memoryCollection[model.Client]
	projects *memoryCollection[model.Project]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:  newMemoryCollection[model.Client](),
		projects: newMemoryCollection[model.Project](),
	}
}

func (s *MemoryStore) Clients() Collection[model.Client]   { return s.clients }
func (s *MemoryStore) Projects() Collection[model.Project] { return s.projects }

func (s *MemoryStore) Ping(context.Context) error  { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }

type memoryCollection[T any] struct {
	mu    sync.RWMutex
	docs  map[string]bson.M
	order []string
}

func newMemoryCollection[T any]() *memoryCollection[T] {
	return &memoryCollection[T]{docs: map[string]bson.M{}}
}

func (c *memoryCollection[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := toDoc(doc)
	if err != nil {
		return nil, err
	}
	m = withID(m)
	id := m[model.FieldID].(string)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; ok {
		return nil, &DuplicateKeyError{ID: id}
	}
	c.docs[id] = m
	c.order = append(c.order, id)
	return fromDoc[T](m)
}

func (c *memoryCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	return fromDoc[T](m)
}

func (c *memoryCollection[T]) FindAll(ctx context.Context) ([]*T, error) {
	return c.FindWhere(ctx, nil)
}

func (c *memoryCollection[T]) FindWhere(ctx context.Context, filter Filter) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalize(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []*T{}
	for _, id := range c.order {
		m := c.docs[id]
		if !matches(m, want) {
			continue
		}
		doc, err := fromDoc[T](m)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *memoryCollection[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return fromDoc[T](m)
}

func (c *memoryCollection[T]) UpdateByID(ctx context.Context, id string, fields Fields) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, err := normalize(fields)
	if err != nil {
		return nil, err
	}
	delete(set, model.FieldID)

	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	merged := bson.M{}
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range set {
		merged[k] = v
	}
	c.docs[id] = merged
	return fromDoc[T](merged)
}

// normalize runs values through the bson codec so typed values such as
// model.ProjectStatus compare equal to what was stored.
func normalize(m map[string]any) (bson.M, error) {
	if len(m) == 0 {
		return bson.M{}, nil
	}
	return toDoc(bson.M(m))
}

func matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

type DuplicateKeyError struct {
	ID string
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key: " + e.ID
}
