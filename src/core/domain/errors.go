// Package domain contains domain entities, value objects, and domain-specific errors.
// This package should have no external dependencies except the standard library.
package domain

import (
	"errors"
	"strings"
)

// Kind classifies a domain error. The set is closed: the HTTP layer maps
// every Kind to exactly one status code.
type Kind int

const (
	// KindNotFound means the requested resource does not exist.
	KindNotFound Kind = iota + 1

	// KindBadRequest means the request is well-formed but breaks a business
	// rule, e.g. a duplicate name.
	KindBadRequest

	// KindValidation means the payload or query failed schema or
	// storage-level field validation.
	KindValidation

	// KindInvalidID means a path identifier is not a syntactically valid id.
	KindInvalidID
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindValidation:
		return "validation_failed"
	case KindInvalidID:
		return "invalid_id"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks. A *Error matches the sentinel of its Kind.
var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest is returned when a request violates a business rule.
	ErrBadRequest = errors.New("bad request")

	// ErrValidation is returned when input validation fails.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier has an invalid format.
	ErrInvalidID = errors.New("invalid id format")
)

// Error is the single error type raised by the core. Message is safe to
// show to API clients.
type Error struct {
	Kind    Kind
	Message string

	// Violations holds the individual messages of an aggregated validation error.
	Violations []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.sentinel().Error()
}

// Is reports whether target is the sentinel for this error's Kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindBadRequest:
		return ErrBadRequest
	case KindValidation:
		return ErrValidation
	case KindInvalidID:
		return ErrInvalidID
	default:
		return nil
	}
}

// NewNotFoundError creates a not found error for the named resource.
func NewNotFoundError(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// NewBadRequestError creates a business-rule violation error.
func NewBadRequestError(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// NewValidationError aggregates one or more violation messages into a single
// error whose message joins them with ", ".
func NewValidationError(violations ...string) *Error {
	msg := strings.Join(violations, ", ")
	if msg == "" {
		msg = "Validation failed"
	}
	return &Error{Kind: KindValidation, Message: msg, Violations: violations}
}

// NewInvalidIDError creates an invalid id format error.
func NewInvalidIDError() *Error {
	return &Error{Kind: KindInvalidID, Message: "Invalid ID format"}
}

// NewDuplicateNameError is raised both by the service pre-check and by the
// storage uniqueness backstop so clients see one message either way.
func NewDuplicateNameError() *Error {
	return NewBadRequestError("A Pokémon with this name already exists")
}

// KindOf returns the Kind of err, or 0 if err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsBadRequest checks if an error is a business-rule violation.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsInvalidID checks if an error is an invalid id error.
func IsInvalidID(err error) bool {
	return errors.Is(err, ErrInvalidID)
}
