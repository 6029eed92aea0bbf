package model

// ProjectStatus is the closed label set a project can carry. Any value may
// follow any other; the set is not a workflow.
type ProjectStatus string

// The completed value is lower case on the wire and must stay that way for
// existing clients.
const (
	StatusNotStarted ProjectStatus = "Not Started"
	StatusInProgress ProjectStatus = "In Progress"
	StatusCompleted  ProjectStatus = "completed"
)

// AllProjectStatus lists the enum members keyed by their GraphQL names.
var AllProjectStatus = []struct {
	Name  string
	Value ProjectStatus
}{
	{"new", StatusNotStarted},
	{"progress", StatusInProgress},
	{"completed", StatusCompleted},
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s ProjectStatus) String() string {
	return string(s)
}
