package homarr

import (
	"errors"
	"fmt"
)

// FailureKind classifies a rejected dashboard call. Auth and validation
// failures are never retried; retrying cannot succeed without a changed
// input.
type FailureKind string

const (
	FailureAuth       FailureKind = "auth"
	FailureValidation FailureKind = "validation"
	FailureConflict   FailureKind = "conflict"
	FailureNotFound   FailureKind = "not_found"
	FailureServer     FailureKind = "server"
)

// APIError is a dashboard-side rejection of an otherwise delivered call.
type APIError struct {
	Procedure string
	Status    int
	Kind      FailureKind
	Message   string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("homarr %s: %s (%d): %s", e.Procedure, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("homarr %s: %s (%d)", e.Procedure, e.Kind, e.Status)
}

// ConnectionError is a transport-level failure: the dashboard is
// unreachable, timing out, or its proxy is still starting. Subject to
// bounded retry.
type ConnectionError struct {
	Procedure string
	Err       error
}

func NewConnectionError(procedure string, err error) *ConnectionError {
	return &ConnectionError{Procedure: procedure, Err: err}
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("homarr %s: connection failed: %v", e.Procedure, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func classifyStatus(status int) FailureKind {
	switch {
	case status == 401 || status == 403:
		return FailureAuth
	case status == 404:
		return FailureNotFound
	case status == 409:
		return FailureConflict
	case status >= 400 && status < 500:
		return FailureValidation
	default:
		return FailureServer
	}
}

func isKind(err error, kind FailureKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsAuthFailure reports whether err is a credential rejection.
func IsAuthFailure(err error) bool { return isKind(err, FailureAuth) }

// IsConflict reports whether err is a duplicate-resource rejection.
func IsConflict(err error) bool { return isKind(err, FailureConflict) }

// IsNotFound reports whether err is a missing-resource rejection.
func IsNotFound(err error) bool { return isKind(err, FailureNotFound) }

// IsConnectionFailure reports whether err is transport-level and was
// subject to retry.
func IsConnectionFailure(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
