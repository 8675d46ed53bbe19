// Package domain holds the error taxonomy shared by the booking, spot
// and user services. Handlers map these to HTTP statuses in one place.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyEnded is returned when ending a booking whose end time
	// is already set. Ending is not idempotent.
	ErrAlreadyEnded = errors.New("booking already ended")

	// ErrUnavailable is returned when the store times out or cannot be
	// reached. Callers may retry with backoff; services never do.
	ErrUnavailable = errors.New("store unavailable")
)

// NotFoundError reports a failed entity lookup.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NewNotFound(kind string, id fmt.Stringer) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id.String()}
}

// UnauthorizedError reports a denied action. It is distinct from
// NotFoundError: existence is resolved before authorization, and the two
// are never conflated.
type UnauthorizedError struct {
	Action string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("not permitted to %s", e.Action)
}

// ConflictError reports a uniqueness violation: an open booking already
// occupying a spot, or a duplicate spot name.
type ConflictError struct {
	Kind string
	Key  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict on %s", e.Kind, e.Key)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsUnauthorized(err error) bool {
	var ua *UnauthorizedError
	return errors.As(err, &ua)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
