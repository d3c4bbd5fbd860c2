// Package apperr defines the closed set of failures the service reports to
// callers and how each one maps onto an HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

// Kind tags an Error with one of the known failure classes.
type Kind uint8

const (
	Internal Kind = iota
	DuplicateEmail
	InvalidCredentials
	Unauthenticated
	MissingMessage
	EmptyResponse
	UpstreamError
	InvalidInput
	RateLimited
)

var kindNames = map[Kind]string{
	Internal:           "internal",
	DuplicateEmail:     "duplicate_email",
	InvalidCredentials: "invalid_credentials",
	Unauthenticated:    "unauthenticated",
	MissingMessage:     "missing_message",
	EmptyResponse:      "empty_response",
	UpstreamError:      "upstream_error",
	InvalidInput:       "invalid_input",
	RateLimited:        "rate_limited",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Status returns the HTTP status code used for k at the boundary.
func (k Kind) Status() int {
	switch k {
	case DuplicateEmail:
		return http.StatusConflict
	case InvalidCredentials, Unauthenticated:
		return http.StatusUnauthorized
	case MissingMessage, InvalidInput:
		return http.StatusBadRequest
	case EmptyResponse, UpstreamError:
		return http.StatusBadGateway
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a tagged failure. Message is safe to show to the client; Err is
// the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrMissingMessage)
// works regardless of message or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an Error of kind k with the given client-facing message.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap returns an Error of kind k carrying cause.
func Wrap(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Err: cause}
}

// KindOf reports the Kind of err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Sentinels for errors.Is comparisons.
var (
	ErrDuplicateEmail     = New(DuplicateEmail, "Email already registered")
	ErrInvalidCredentials = New(InvalidCredentials, "Invalid email or password")
	ErrUnauthenticated    = New(Unauthenticated, "Please log in first")
	ErrMissingMessage     = New(MissingMessage, "No message provided")
	ErrEmptyResponse      = New(EmptyResponse, "No response choices returned from the model")
	ErrRateLimited        = New(RateLimited, "rate limit exceeded")
)

// PublicMessage is the text written to the client for err. Upstream failures
// are reported with their cause; internal failures never are.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return "internal server error"
	}
	if e.Kind == UpstreamError {
		return e.Error()
	}
	return e.Message
}
