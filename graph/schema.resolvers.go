package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"backendprojects/graph/model"
	"backendprojects/store"
)

// cascadeConcurrency bounds the project deletes deleteClient keeps in flight.
const cascadeConcurrency = 8

// AddClient persists a new client with a store assigned id.
func (r *mutationResolver) AddClient(ctx context.Context, input model.NewClient) (*model.Client, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	client, err := r.Store.Clients().Insert(ctx, &model.Client{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	})
	if err != nil {
		return nil, r.storeErr(ctx, "addClient", logrus.Fields{"email": input.Email}, err)
	}

	r.Log.WithField("client_id", client.ID).Info("client added")
	r.publish(ctx, model.ClientEvent(model.EventClientAdded, client))
	return client, nil
}

// DeleteClient removes every project of the client and then the client. The
// client is only deleted once all of its projects are gone; when any project
// delete fails the client is kept and the call can be retried.
func (r *mutationResolver) DeleteClient(ctx context.Context, id string) (*model.Client, error) {
	if id == "" {
		return nil, model.Required("id")
	}

	if err := r.deleteProjectsOf(ctx, id); err != nil {
		return nil, err
	}

	client, err := r.Store.Clients().DeleteByID(ctx, id)
	if err != nil {
		return nil, r.storeErr(ctx, "deleteClient", logrus.Fields{"client_id": id}, err)
	}
	// Later fields of the same mutation must not see the deleted client.
	loadersFrom(ctx).Forget(id)
	if client == nil {
		r.Log.WithField("client_id", id).Info("no client to delete")
		return nil, nil
	}

	r.Log.WithField("client_id", id).Info("client deleted")
	r.publish(ctx, model.ClientEvent(model.EventClientDeleted, client))
	return client, nil
}

func (r *mutationResolver) deleteProjectsOf(ctx context.Context, clientID string) error {
	projects, err := r.Store.Projects().FindWhere(ctx, store.Filter{model.FieldClientID: clientID})
	if err != nil {
		return r.storeErr(ctx, "deleteClient", logrus.Fields{"client_id": clientID}, err)
	}

	var g errgroup.Group
	g.SetLimit(cascadeConcurrency)
	errs := make([]error, len(projects))
	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			deleted, err := r.Store.Projects().DeleteByID(ctx, p.ID)
			if err != nil {
				errs[i] = fmt.Errorf("delete project %s: %w", p.ID, err)
				return nil
			}
			if deleted != nil {
				r.publish(ctx, model.ProjectEvent(model.EventProjectDeleted, deleted))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return r.storeErr(ctx, "deleteClient", logrus.Fields{"client_id": clientID, "projects": len(projects)}, err)
	}
	if len(projects) > 0 {
		r.Log.WithFields(logrus.Fields{"client_id": clientID, "projects": len(projects)}).Info("client projects deleted")
	}
	return nil
}

// AddProject persists a new project. A missing status starts the project as
// not started. The client id is stored as given.
func (r *mutationResolver) AddProject(ctx context.Context, input model.NewProject) (*model.Project, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	project, err := r.Store.Projects().Insert(ctx, &model.Project{
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
		ClientID:    input.ClientID,
	})
	if err != nil {
		return nil, r.storeErr(ctx, "addProject", logrus.Fields{"client_id": input.ClientID}, err)
	}

	r.Log.WithFields(logrus.Fields{"project_id": project.ID, "client_id": project.ClientID}).Info("project added")
	r.publish(ctx, model.ProjectEvent(model.EventProjectAdded, project))
	return project, nil
}

func (r *mutationResolver) DeleteProject(ctx context.Context, id string) (*model.Project, error) {
	if id == "" {
		return nil, model.Required("id")
	}

	project, err := r.Store.Projects().DeleteByID(ctx, id)
	if err != nil {
		return nil, r.storeErr(ctx, "deleteProject", logrus.Fields{"project_id": id}, err)
	}
	if project == nil {
		return nil, nil
	}

	r.Log.WithField("project_id", id).Info("project deleted")
	r.publish(ctx, model.ProjectEvent(model.EventProjectDeleted, project))
	return project, nil
}

// UpdateProject merges the supplied fields into the project and returns the
// updated project. Status may move between any two values.
func (r *mutationResolver) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if id == "" {
		return nil, model.Required("id")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	project, err := r.Store.Projects().UpdateByID(ctx, id, patch.Fields())
	if err != nil {
		return nil, r.storeErr(ctx, "updateProject", logrus.Fields{"project_id": id}, err)
	}
	if project == nil {
		return nil, nil
	}

	r.publish(ctx, model.ProjectEvent(model.EventProjectUpdated, project))
	return project, nil
}

func (r *queryResolver) Projects(ctx context.Context) ([]*model.Project, error) {
	projects, err := r.Store.Projects().FindAll(ctx)
	if err != nil {
		return nil, r.storeErr(ctx, "projects", nil, err)
	}
	return projects, nil
}

func (r *queryResolver) Project(ctx context.Context, id string) (*model.Project, error) {
	if id == "" {
		return nil, model.Required("id")
	}
	project, err := r.Store.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, r.storeErr(ctx, "project", logrus.Fields{"project_id": id}, err)
	}
	return project, nil
}

func (r *queryResolver) Clients(ctx context.Context) ([]*model.Client, error) {
	clients, err := r.Store.Clients().FindAll(ctx)
	if err != nil {
		return nil, r.storeErr(ctx, "clients", nil, err)
	}
	return clients, nil
}

// Client returns nil when id is omitted or unknown.
func (r *queryResolver) Client(ctx context.Context, id string) (*model.Client, error) {
	if id == "" {
		return nil, nil
	}
	client, err := r.Store.Clients().FindByID(ctx, id)
	if err != nil {
		return nil, r.storeErr(ctx, "client", logrus.Fields{"client_id": id}, err)
	}
	return client, nil
}

// Client looks up the project's client. A client that no longer exists
// resolves to nil.
func (r *projectResolver) Client(ctx context.Context, obj *model.Project) (*model.Client, error) {
	if obj == nil || obj.ClientID == "" {
		return nil, nil
	}

	var (
		client *model.Client
		err    error
	)
	if l := loadersFrom(ctx); l != nil {
		client, err = l.Client(ctx, obj.ClientID)
	} else {
		client, err = r.Store.Clients().FindByID(ctx, obj.ClientID)
	}
	if err != nil {
		return nil, r.storeErr(ctx, "Project.client", logrus.Fields{"project_id": obj.ID, "client_id": obj.ClientID}, err)
	}
	return client, nil
}
