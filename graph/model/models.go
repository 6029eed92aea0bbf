package model

// Client is a customer that commissions projects.
type Client struct {
	ID    string `json:"id" bson:"_id,omitempty"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
}

// Project is a unit of work for a single client. The client is referenced by
// id only; the Client object is resolved on demand by the graph layer.
type Project struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description" bson:"description"`
	Status      ProjectStatus `json:"status" bson:"status"`
	ClientID    string        `json:"clientId" bson:"clientId"`
}

// Document field names shared by filters and partial updates.
const (
	FieldID          = "_id"
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldClientID    = "clientId"
)

type NewClient struct {
	Name  string
	Email string
	Phone string
}

func (in NewClient) Validate() error {
	switch {
	case in.Name == "":
		return Required("name")
	case in.Email == "":
		return Required("email")
	case in.Phone == "":
		return Required("phone")
	}
	return nil
}

type NewProject struct {
	Name        string
	Description string
	Status      ProjectStatus
	ClientID    string
}

// Validate checks required fields and fills in the default status.
func (in *NewProject) Validate() error {
	switch {
	case in.Name == "":
		return Required("name")
	case in.Description == "":
		return Required("description")
	case in.ClientID == "":
		return Required("clientId")
	}
	if in.Status == "" {
		in.Status = StatusNotStarted
	}
	if !in.Status.IsValid() {
		return InvalidStatus(string(in.Status))
	}
	return nil
}

// ProjectPatch carries the optional fields of updateProject. A nil field is
// left untouched; a supplied name or description must not be empty, the same
// rule addProject applies.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *ProjectStatus
}

func (p ProjectPatch) Validate() error {
	switch {
	case p.Name != nil && *p.Name == "":
		return Required("name")
	case p.Description != nil && *p.Description == "":
		return Required("description")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return InvalidStatus(string(*p.Status))
	}
	return nil
}

// Fields returns the document fields to merge, keyed by stored field name.
func (p ProjectPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Name != nil {
		fields[FieldName] = *p.Name
	}
	if p.Description != nil {
		fields[FieldDescription] = *p.Description
	}
	if p.Status != nil {
		fields[FieldStatus] = string(*p.Status)
	}
	return fields
}
