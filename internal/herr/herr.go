// Package herr defines Hecate's error kinds and their HTTP mapping.
package herr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, machine-readable error category.
type Kind string

const (
	Validation          Kind = "VALIDATION"
	SchemaViolation      Kind = "SCHEMA_VIOLATION"
	Unauthenticated      Kind = "UNAUTHENTICATED"
	Forbidden            Kind = "FORBIDDEN"
	NotFound             Kind = "NOT_FOUND"
	VersionMismatch      Kind = "VERSION_MISMATCH"
	ConstraintViolation  Kind = "CONSTRAINT_VIOLATION"
	Internal             Kind = "INTERNAL"
)

// Status returns the HTTP status code a Kind maps to, per the
// propagation policy table.
func (k Kind) Status() int {
	switch k {
	case Validation, SchemaViolation:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case VersionMismatch, ConstraintViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is Hecate's structured error type. It carries a stable kind, a
// human-readable reason, and an optional machine-readable detail.
type Error struct {
	Kind   Kind
	Reason string
	Detail interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Status is the HTTP status this error should be reported as.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// New builds an *Error for the given kind.
func New(kind Kind, reason string, args ...interface{}) *Error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &Error{Kind: kind, Reason: reason}
}

// WithDetail attaches a machine-readable detail payload.
func (e *Error) WithDetail(detail interface{}) *Error {
	e.Detail = detail
	return e
}

// As reports whether err (or something it wraps) is a *Error of the
// given kind.
func As(err error, kind Kind) bool {
	var he *Error
	return errors.As(err, &he) && he.Kind == kind
}
