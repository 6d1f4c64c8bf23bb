package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrHandlerNotFound signals that no handler is registered for a domain.
	ErrHandlerNotFound = errors.New("handler not found")
	// ErrTimeout signals that a handler did not complete within the request budget.
	ErrTimeout = errors.New("timed out")
)

// HandlerError is the failure a handler reports for a domain specific problem
// (division by zero, unknown operand, model refusal...).
type HandlerError struct {
	Domain  Domain `json:"domain,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *HandlerError) Error() string {
	where := ""
	if e.Domain != "" {
		where = " in " + string(e.Domain)
	}
	if e.Code != "" {
		return fmt.Sprintf("handler error [%s]%s: %s", e.Code, where, e.Message)
	}
	return fmt.Sprintf("handler error%s: %s", where, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *HandlerError) Unwrap() error { return e.Cause }

// NewHandlerError creates a HandlerError with the given code and message.
func NewHandlerError(code, message string) *HandlerError {
	return &HandlerError{Code: code, Message: message}
}

// FailureKind categorizes a PartialResult failure.
type FailureKind string

// Failure kinds.
const (
	FailureNone     FailureKind = ""
	FailureNotFound FailureKind = "not_found"
	FailureHandler  FailureKind = "handler_failure"
	FailureTimeout  FailureKind = "timeout"
)

// FailureKindOf maps an error to its failure kind. Any error that is neither a
// missing handler nor a timeout counts as a handler failure.
func FailureKindOf(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrHandlerNotFound):
		return FailureNotFound
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureHandler
	}
}
