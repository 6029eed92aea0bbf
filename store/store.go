// Package store is the entity store behind the GraphQL resolvers. Each entity
// kind lives in its own document collection addressed by an opaque string id.
package store

import (
	"context"

	"backendprojects/graph/model"
)

const (
	KindClient  = "clients"
	KindProject = "projects"
)

// Filter selects documents whose fields equal the given values.
type Filter map[string]any

// Fields is a field level merge applied by UpdateByID.
type Fields map[string]any

// Collection is the contract every store backend fulfils for one entity
// kind. Single document lookups report absence as (nil, nil).
type Collection[T any] interface {
	Insert(ctx context.Context, doc *T) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	FindAll(ctx context.Context) ([]*T, error)
	FindWhere(ctx context.Context, filter Filter) ([]*T, error)
	DeleteByID(ctx context.Context, id string) (*T, error)
	// UpdateByID merges fields into the stored document and returns the
	// document as it is after the update.
	UpdateByID(ctx context.Context, id string, fields Fields) (*T, error)
}

type Store interface {
	Clients() Collection[model.Client]
	Projects() Collection[model.Project]
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
