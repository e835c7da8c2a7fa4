package api

import (
	"errors"
	"fmt"
)

// Failure classes of the remote schedule API. Handlers branch on these
// with errors.Is to pick a fallback page; no retries happen here.
var (
	// ErrValidation means the request was rejected as invalid, e.g. the
	// stored group id no longer exists (HTTP 422).
	ErrValidation = errors.New("api: request rejected")

	// ErrForbidden means the resource exists but is not served to us (HTTP 403).
	ErrForbidden = errors.New("api: forbidden")

	// ErrNotFound means the requested resource does not exist (HTTP 404).
	ErrNotFound = errors.New("api: not found")

	// ErrUnavailable covers transport failures, timeouts and any other
	// non-2xx status.
	ErrUnavailable = errors.New("api: unavailable")
)

// statusError attaches the HTTP status to the failure class so logs keep
// the raw code while callers match on the class only.
type statusError struct {
	class  error
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v (status %d)", e.class, e.status)
}

func (e *statusError) Unwrap() error { return e.class }

func classifyStatus(status int) error {
	var class error
	switch status {
	case 422:
		class = ErrValidation
	case 403:
		class = ErrForbidden
	case 404:
		class = ErrNotFound
	default:
		class = ErrUnavailable
	}
	return &statusError{class: class, status: status}
}
