package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInputMissing   = errors.New("no file uploaded")
	ErrMalformedInput = errors.New("invalid file format")
	ErrDuplicateEmail = errors.New("email is already registered")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// PersistenceError wraps a failed store or object-storage operation so route
// handlers can map it to a 500 regardless of the underlying driver error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %s", e.Op, e.Err.Error())
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) error {
	return PersistenceError{Op: op, Err: err}
}
