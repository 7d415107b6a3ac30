package checkout

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies checkout failures for the HTTP layer.
type Kind int

const (
	InternalError Kind = iota
	InvalidRequest
	NotFound
	ConfigurationError
	InvalidSignature
	StorageError
)

func (k Kind) String() string {
	switch k {
	case InvalidRequest:
		return "invalid_request"
	case NotFound:
		return "not_found"
	case ConfigurationError:
		return "configuration_error"
	case InvalidSignature:
		return "invalid_signature"
	case StorageError:
		return "storage_error"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps the kind to the status code returned to callers.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidRequest, ConfigurationError, InvalidSignature:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by Issuer and Reconciler. Message is safe to show to
// clients; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or InternalError for foreign errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return InternalError
}

// PublicMessage returns the client facing message for err.
func PublicMessage(err error) string {
	var ce *Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return "internal server error"
}
