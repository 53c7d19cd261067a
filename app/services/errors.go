// Package services holds the application logic between the HTTP controllers
// and the repositories. Services validate input before any store call and
// report expected failures as *Error values; anything else is a store error
// passed through unchanged.
package services

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// Kind classifies an *Error for the HTTP layer.
type Kind int

const (
	KindFailure Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindValidation
)

// Error is an expected failure with a client-facing message.
type Error struct {
	Kind       Kind
	Message    string
	Violations validate.Violations
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Kind == KindValidation {
		return e.Violations.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// AsError unwraps err to an *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func notFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }
func conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func invalid(v validate.Violations) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Violations: v}
}

func failure(msg string, err error) *Error {
	return &Error{Kind: KindFailure, Message: msg, Err: err}
}

// Clock returns the current time. Services store it in UTC at millisecond
// precision, the resolution every backend keeps.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

func stamp(c Clock) time.Time {
	if c == nil {
		c = systemClock
	}
	return c().UTC().Truncate(time.Millisecond)
}

// newID returns a fresh 24-hex-digit document id.
func newID() string { return primitive.NewObjectID().Hex() }

func validID(id string) bool { return primitive.IsValidObjectID(id) }
