package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"backendprojects/graph/model"
)

// NewExecutableSchema assembles the type graph and the root operations. The
// schema is built once at startup and shared by every request.
func NewExecutableSchema(r *Resolver) (graphql.Schema, error) {
	statusType := newProjectStatusEnum()
	clientType := newClientType()
	projectType := newProjectType(r, clientType)

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    newQueryType(r, projectType, clientType),
		Mutation: newMutationType(r, projectType, clientType, statusType),
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build schema: %w", err)
	}
	return schema, nil
}

func newProjectStatusEnum() *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, s := range model.AllProjectStatus {
		values[s.Name] = &graphql.EnumValueConfig{Value: string(s.Value)}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:   "ProjectStatus",
		Values: values,
	})
}

func newClientType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Client",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.ID},
			"name":  &graphql.Field{Type: graphql.String},
			"email": &graphql.Field{Type: graphql.String},
			"phone": &graphql.Field{Type: graphql.String},
		},
	})
}

func newProjectType(r *Resolver, clientType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Project",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.ID},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					project, ok := p.Source.(*model.Project)
					if !ok {
						return nil, nil
					}
					return string(project.Status), nil
				},
			},
			"client": &graphql.Field{
				Type: clientType,
				// Only runs when the selection set asks for client.
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					project, _ := p.Source.(*model.Project)
					return orNull(r.Project().Client(p.Context, project))
				},
			},
		},
	})
}

func newQueryType(r *Resolver, projectType, clientType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQueryType",
		Fields: graphql.Fields{
			"projects": &graphql.Field{
				Type: graphql.NewList(projectType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Query().Projects(p.Context)
				},
			},
			"project": &graphql.Field{
				Type: projectType,
				Args: idArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orNull(r.Query().Project(p.Context, stringArg(p.Args, "id")))
				},
			},
			"clients": &graphql.Field{
				Type: graphql.NewList(clientType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Query().Clients(p.Context)
				},
			},
			"client": &graphql.Field{
				Type: clientType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orNull(r.Query().Client(p.Context, stringArg(p.Args, "id")))
				},
			},
		},
	})
}

func newMutationType(r *Resolver, projectType, clientType *graphql.Object, statusType *graphql.Enum) *graphql.Object {
	nonNullString := graphql.NewNonNull(graphql.String)

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addClient": &graphql.Field{
				Type: clientType,
				Args: graphql.FieldConfigArgument{
					"name":  &graphql.ArgumentConfig{Type: nonNullString},
					"email": &graphql.ArgumentConfig{Type: nonNullString},
					"phone": &graphql.ArgumentConfig{Type: nonNullString},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orNull(r.Mutation().AddClient(p.Context, model.NewClient{
						Name:  stringArg(p.Args, "name"),
						Email: stringArg(p.Args, "email"),
						Phone: stringArg(p.Args, "phone"),
					}))
				},
			},
			"deleteClient": &graphql.Field{
				Type: clientType,
				Args: idArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orNull(r.Mutation().DeleteClient(p.Context, stringArg(p.Args, "id")))
				},
			},
			"addProject": &graphql.Field{
				Type: projectType,
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: nonNullString},
					"description": &graphql.ArgumentConfig{Type: nonNullString},
					"status": &graphql.ArgumentConfig{
						Type:         statusType,
						DefaultValue: string(model.StatusNotStarted),
					},
					"clientId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orNull(r.Mutation().AddProject(p.Context, model.NewProject{
						Name:        stringArg(p.Args, "name"),
						Description: stringArg(p.Args, "description"),
						Status:      model.ProjectStatus(stringArg(p.Args, "status")),
						ClientID:    stringArg(p.Args, "clientId"),
					}))
				},
			},
			"deleteProject": &graphql.Field{
				Type: projectType,
				Args: idArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orNull(r.Mutation().DeleteProject(p.Context, stringArg(p.Args, "id")))
				},
			},
			"updateProject": &graphql.Field{
				Type: projectType,
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"name":        &graphql.ArgumentConfig{Type: graphql.String},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"status":      &graphql.ArgumentConfig{Type: statusType},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					patch := model.ProjectPatch{
						Name:        optionalStringArg(p.Args, "name"),
						Description: optionalStringArg(p.Args, "description"),
					}
					if s := optionalStringArg(p.Args, "status"); s != nil {
						status := model.ProjectStatus(*s)
						patch.Status = &status
					}
					return orNull(r.Mutation().UpdateProject(p.Context, stringArg(p.Args, "id"), patch))
				},
			},
		},
	})
}

func idArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func optionalStringArg(args map[string]interface{}, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// orNull keeps a nil *T from reaching the executor as a non-nil interface.
func orNull[T any](v *T, err error) (interface{}, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}
