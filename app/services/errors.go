package services

import (
	"errors"
	"fmt"

	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/validate"
)

// Error kinds. Controllers map each to one HTTP status.
var (
	ErrInvalid            = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

// Error is a kind plus a message safe to show the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func invalid(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalid, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + " not found"}
}

func conflict(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// FieldErrors is a validation failure keyed by JSON field name.
type FieldErrors map[string]string

func (f FieldErrors) Error() string { return "validation failed" }
func (f FieldErrors) Unwrap() error { return ErrInvalid }

// check validates v and returns FieldErrors on failure.
func check(v interface{}) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return FieldErrors(errs)
	}
	return nil
}

// lookup converts repositories.ErrNotFound into a client-facing not-found.
func lookup(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(what)
	}
	return err
}
