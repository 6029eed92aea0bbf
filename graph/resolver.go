package graph

import (
	"context"

	"github.com/sirupsen/logrus"

	"backendprojects/graph/model"
	"backendprojects/store"
)

// Publisher receives an event after every successful mutation.
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

type requestIDKey struct{}

// WithRequestID tags ctx with the id of the HTTP request being served.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestIDFrom returns the id set by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

// Resolver is the root of the query, mutation and field resolvers. It holds
// no per-request state.
type Resolver struct {
	Store  store.Store
	Events Publisher
	Log    logrus.FieldLogger
}

func NewResolver(s store.Store, events Publisher, log logrus.FieldLogger) *Resolver {
	return &Resolver{Store: s, Events: events, Log: log}
}

type QueryResolver interface {
	Projects(ctx context.Context) ([]*model.Project, error)
	Project(ctx context.Context, id string) (*model.Project, error)
	Clients(ctx context.Context) ([]*model.Client, error)
	Client(ctx context.Context, id string) (*model.Client, error)
}

type MutationResolver interface {
	AddClient(ctx context.Context, input model.NewClient) (*model.Client, error)
	DeleteClient(ctx context.Context, id string) (*model.Client, error)
	AddProject(ctx context.Context, input model.NewProject) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
}

type ProjectResolver interface {
	Client(ctx context.Context, obj *model.Project) (*model.Client, error)
}

func (r *Resolver) Mutation() MutationResolver {
	return &mutationResolver{r}
}

func (r *Resolver) Query() QueryResolver {
	return &queryResolver{r}
}

func (r *Resolver) Project() ProjectResolver {
	return &projectResolver{r}
}

type mutationResolver struct{ *Resolver }

type queryResolver struct{ *Resolver }

// projectResolver resolves the relationship fields of Project.
type projectResolver struct{ *Resolver }

// storeErr logs the cause and returns the opaque error the caller sees.
func (r *Resolver) storeErr(ctx context.Context, op string, fields logrus.Fields, err error) error {
	entry := r.Log.WithError(err).WithFields(fields)
	if rid := RequestIDFrom(ctx); rid != "" {
		entry = entry.WithField("request_id", rid)
	}
	entry.Errorf("%s failed", op)
	return &model.StoreError{Op: op, Err: err}
}

func (r *Resolver) publish(ctx context.Context, event model.Event) {
	if r.Events == nil {
		return
	}
	if err := r.Events.Publish(ctx, event); err != nil {
		r.Log.WithError(err).WithField("event", event.Type).Warn("failed to publish event")
	}
}
