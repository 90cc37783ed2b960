package provider

import (
    "errors"
    "fmt"
)

// Kind classifies an error for callers that need to choose a retry or
// surface policy. Values are stable and appear verbatim in API responses.
type Kind string

const (
    KindInvalidInput Kind = "invalid_input"
    KindNotFound     Kind = "not_found"
    KindRateLimited  Kind = "rate_limited"
    KindUnavailable  Kind = "provider_unavailable"
)

// Error is a classified error. All provider-facing failures are reported
// as one of these so callers can react per Kind.
type Error struct {
    Kind    Kind   `json:"kind"`
    Message string `json:"message"`
    cause   error
}

func (e *Error) Error() string {
    if e.cause != nil {
        return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
    }
    return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Errorf builds a classified error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
    return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error without losing it.
func Wrap(kind Kind, err error, message string) *Error {
    return &Error{Kind: kind, Message: message, cause: err}
}

// KindOf extracts the Kind from err. Unclassified errors report
// KindUnavailable since they come from the network boundary in practice.
func KindOf(err error) Kind {
    var pe *Error
    if errors.As(err, &pe) {
        return pe.Kind
    }
    return KindUnavailable
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
    var pe *Error
    return errors.As(err, &pe) && pe.Kind == kind
}

// Retryable reports whether the error class is worth another attempt.
// InvalidInput and NotFound never are.
func Retryable(err error) bool {
    switch KindOf(err) {
    case KindRateLimited, KindUnavailable:
        return true
    }
    return false
}
