// Package errors carries the typed application error used across the
// storefront. Every error reaching the HTTP layer is mapped to a Code, and
// the Code decides status, exposure and whether details travel with it.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a Code is rendered to API clients.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	ExposeMessage  bool
}

type metaOption func(*Metadata)

func withDetails(m *Metadata) { m.DetailsAllowed = true }
func exposed(m *Metadata)     { m.ExposeMessage = true }
func retryable(m *Metadata)   { m.Retryable = true }

func describe(status int, public string, opts ...metaOption) Metadata {
	m := Metadata{HTTPStatus: status, PublicMessage: public}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Client mistakes surface their own message; server-side failures hide it
// behind the public text unless debug output is on.
var catalog = map[Code]Metadata{
	CodeValidation:    describe(http.StatusBadRequest, "validation failed", exposed, withDetails),
	CodeUnauthorized:  describe(http.StatusUnauthorized, "authentication required", exposed),
	CodeForbidden:     describe(http.StatusForbidden, "access denied", exposed),
	CodeNotFound:      describe(http.StatusNotFound, "resource not found", exposed),
	CodeConflict:      describe(http.StatusConflict, "conflict detected", exposed),
	CodeStateConflict: describe(http.StatusBadRequest, "state transition disallowed", exposed, withDetails),
	CodeIdempotency:   describe(http.StatusConflict, "idempotency key reused", exposed, withDetails),
	CodeRateLimit:     describe(http.StatusTooManyRequests, "rate limit exceeded", exposed),
	CodeInternal:      describe(http.StatusInternalServerError, "internal server error", retryable),
	CodeDependency:    describe(http.StatusServiceUnavailable, "dependency unavailable", retryable, withDetails),
}

// MetadataFor falls back to CodeInternal for codes it does not know.
func MetadataFor(code Code) Metadata {
	m, ok := catalog[code]
	if !ok {
		return catalog[CodeInternal]
	}
	return m
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause so errors.Is and errors.As keep working through it.
// A nil cause behaves like New.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails mutates e in place and returns it for chaining.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return string(e.code) + ": " + e.message + ": " + e.cause.Error()
	default:
		return string(e.code) + ": " + e.message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func IsCode(err error, code Code) bool {
	if typed := As(err); typed != nil {
		return typed.code == code
	}
	return false
}
