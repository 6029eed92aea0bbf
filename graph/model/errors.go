package model

import "fmt"

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeStore      = "STORE_ERROR"
)

// ValidationError reports a missing required argument or an out of range
// value. It is returned to the caller as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": CodeValidation, "field": e.Field}
}

func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func InvalidStatus(value string) *ValidationError {
	return &ValidationError{
		Field:  "status",
		Reason: fmt.Sprintf("%q is not one of %q, %q, %q", value, StatusNotStarted, StatusInProgress, StatusCompleted),
	}
}

// StoreError hides an entity store failure behind an opaque message. The
// cause stays reachable through errors.Unwrap for logging.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: store unavailable", e.Op)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": CodeStore}
}
