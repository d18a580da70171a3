// Package apperr carries an explicit error kind from the domain layer to the
// HTTP boundary, so handlers never classify errors by message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Unauthorized
	NotFound
	InvalidInput
	Conflict
	RateLimited
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case InvalidInput:
		return "invalid_input"
	case Conflict:
		return "conflict"
	case RateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Status maps a Kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidInput:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error tagged with a Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg != "" {
		return e.Msg + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind, keeping it available to errors.Is/As.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Unauthenticatedf(format string, args ...any) error { return New(Unauthenticated, format, args...) }
func Unauthorizedf(format string, args ...any) error    { return New(Unauthorized, format, args...) }
func NotFoundf(format string, args ...any) error        { return New(NotFound, format, args...) }
func Invalidf(format string, args ...any) error         { return New(InvalidInput, format, args...) }
func Conflictf(format string, args ...any) error        { return New(Conflict, format, args...) }

// KindOf returns the Kind of err. Untagged errors are Internal, except
// mongo.ErrNoDocuments which is NotFound.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message is the client-safe message for err. Internal errors never expose
// their underlying text.
func Message(err error) string {
	kind := KindOf(err)
	if kind == Internal {
		return "internal server error"
	}
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if kind == NotFound {
		return "not found"
	}
	return err.Error()
}
