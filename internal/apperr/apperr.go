// Package apperr defines the closed set of error kinds the storefront reports
// to its callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react to it specifically.
type Kind int

const (
	// Unknown is the kind of any error that did not originate here.
	Unknown Kind = iota
	Validation
	InsufficientStock
	NotFound
	CapacityExceeded
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation_error"
	case InsufficientStock:
		return "insufficient_stock"
	case NotFound:
		return "not_found"
	case CapacityExceeded:
		return "capacity_exceeded"
	case Persistence:
		return "persistence_error"
	default:
		return "unknown_error"
	}
}

// Error is a classified failure. Message is safe to show to an end user;
// Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a Kind target, so errors.Is(err, apperr.NotFound.Target())
// works through any amount of %w wrapping.
func (e *Error) Is(target error) bool {
	if k, ok := target.(kindTarget); ok {
		return e.Kind == Kind(k)
	}
	return false
}

type kindTarget Kind

func (k kindTarget) Error() string { return Kind(k).String() }

// Target returns an error value usable with errors.Is against any *Error of
// kind k.
func (k Kind) Target() error { return kindTarget(k) }

// New builds a classified error with a user facing message.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf is New with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// MessageOf returns the user facing message of the first *Error in err's
// chain, or fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
