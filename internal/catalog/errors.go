package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrUnavailable = errors.New("catalog unavailable")
	ErrBadStatus   = errors.New("catalog bad status")

	ErrUnknownField = errors.New("unknown field")
)

// FormInvalidMessage is the aggregate message shown when a form fails.
const FormInvalidMessage = "Form is not valid!"

// FieldError is a single violated field rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates the field errors of a rejected form.
type ValidationError struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// PersistenceError reports a failed read or write of the stored collection.
// The caller's input is untouched and the operation can be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persist " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }
