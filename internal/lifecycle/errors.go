// internal/lifecycle/errors.go
package lifecycle

import "fmt"

// The error taxonomy every engine entry point reports through. Handlers map
// these onto HTTP statuses; nothing in here is retried.

// ValidationError means the input was malformed or missing.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PermissionError means the actor's role or center assignment does not allow
// the operation. The operation is never partially applied.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string { return e.Reason }

// NotFoundError means the referenced resource does not exist.
type NotFoundError struct {
	Resource string // e.g. "recycling request"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// IllegalTransitionError means the request's current status does not permit
// the requested action. Completing a completed request, rejecting an
// approved one and losing a concurrent-transition race all land here.
type IllegalTransitionError struct {
	RequestID string
	Status    string
	Action    string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("request %s cannot be %s from status %q", e.RequestID, e.Action, e.Status)
}
