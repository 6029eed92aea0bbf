package graph

import (
	"context"

	"github.com/graphql-go/graphql"

	"backendprojects/store"
)

// Request is a single GraphQL operation as sent by clients.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Executor runs operations against the shared schema.
type Executor struct {
	schema *graphql.Schema
	store  store.Store
}

func NewExecutor(schema *graphql.Schema, s store.Store) *Executor {
	return &Executor{schema: schema, store: s}
}

// Execute runs req with a fresh set of per-request loaders.
func (e *Executor) Execute(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         *e.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        WithLoaders(ctx, e.store),
	})
}
