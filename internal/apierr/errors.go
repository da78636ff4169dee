// Package apierr converts every failure of the comparison API client into a
// single normalized error shape with a closed set of kinds.
package apierr

import (
	"errors"
	"net/http"
)

// Kind is the category of a normalized error.
type Kind string

// Kind constants form the closed error taxonomy surfaced to callers.
const (
	// KindApplication means the server answered and rejected the request.
	KindApplication Kind = "ApplicationError"
	// KindAuthorization means the session does not own the requested job.
	KindAuthorization Kind = "AuthorizationError"
	// KindTimeout means no response arrived within the request bound.
	KindTimeout Kind = "Timeout"
	// KindNetworkUnreachable means the transport failed before any response.
	KindNetworkUnreachable Kind = "NetworkUnreachable"
	// KindRequestConfiguration means the request was malformed and never sent.
	KindRequestConfiguration Kind = "RequestConfigurationError"
)

// Sentinels matching each kind with errors.Is.
var (
	ErrApplication          = errors.New("application error")
	ErrAuthorization        = errors.New("authorization error")
	ErrTimeout              = errors.New("timeout")
	ErrNetworkUnreachable   = errors.New("network unreachable")
	ErrRequestConfiguration = errors.New("request configuration error")
)

// Causes the client attaches to a Failure when a response was received but
// could not be accepted.
var (
	// ErrSessionMismatch marks an envelope that belongs to another session.
	ErrSessionMismatch = errors.New("job belongs to another session")
	// ErrInvalidEnvelope marks a success response that could not be interpreted.
	ErrInvalidEnvelope = errors.New("invalid response envelope")
)

// Error is the normalized error returned by every client operation.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// HTTPStatus is the response status code, 0 when no response was received.
	HTTPStatus int   `json:"httpStatus,omitempty"`
	Cause      error `json:"-"`
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the kind sentinel of e.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

// StatusCode returns the HTTP status and whether one exists.
func (e *Error) StatusCode() (int, bool) {
	return e.HTTPStatus, e.HTTPStatus != 0
}

func sentinel(k Kind) error {
	switch k {
	case KindApplication:
		return ErrApplication
	case KindAuthorization:
		return ErrAuthorization
	case KindTimeout:
		return ErrTimeout
	case KindNetworkUnreachable:
		return ErrNetworkUnreachable
	case KindRequestConfiguration:
		return ErrRequestConfiguration
	default:
		return nil
	}
}

// As extracts a normalized error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or an empty kind when err is not normalized.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// JobScoped turns an application error answered with 401, 403 or 404 into an
// authorization error. It is applied on endpoints keyed by job id, where those
// statuses mean the session does not own the job. Other errors pass through.
func JobScoped(err error) error {
	e, ok := As(err)
	if !ok || e.Kind != KindApplication {
		return err
	}
	switch e.HTTPStatus {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		scoped := *e
		scoped.Kind = KindAuthorization
		return &scoped
	}
	return err
}
