// Package apperrors provides the typed error channel shared by the services and
// the HTTP layer. Every failure carries a Kind so the transport can map it to a
// status code without inspecting error strings.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInternal is the zero value: anything not classified below.
	KindInternal Kind = iota
	// KindNotFound is an unknown catalog key.
	KindNotFound
	// KindInvalidInput is a malformed request or an unparseable structure.
	KindInvalidInput
	// KindUpstream is a failure inside the cheminformatics or text toolkit.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is the structured error returned by the service layer.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "drug.PredictProperties"
	Message string // safe to return to API clients
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a KindNotFound error.
func NotFound(op, message string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(op, message string, err error) error {
	return &Error{Kind: KindInvalidInput, Op: op, Message: message, Err: err}
}

// Upstream builds a KindUpstream error.
func Upstream(op, message string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-safe message of err. Internal and upstream
// failures never expose their cause.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		switch appErr.Kind {
		case KindNotFound, KindInvalidInput:
			return appErr.Message
		case KindUpstream:
			return "upstream library failure"
		}
	}
	return "internal server error"
}
