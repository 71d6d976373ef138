// Package errs holds the decider's error taxonomy (spec.md §7), modeled on
// the teacher's engine/core.Error: a small struct carrying a code and an
// optional wrapped cause, rather than a family of unrelated error types.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the design-level error kinds from spec.md §7.
type Kind string

const (
	// KindInvalidSpec: malformed workflow JSON/YAML, unknown spec_type,
	// bad dependency graph. Surfaced to the caller at load time.
	KindInvalidSpec Kind = "InvalidSpec"
	// KindInvalidPath: malformed JSON-path expression.
	KindInvalidPath Kind = "InvalidPath"
	// KindMissingKey: path traversal failed and no default was supplied.
	KindMissingKey Kind = "MissingKey"
	// KindMissingDependency: an Input Builder DependencyResult referenced
	// a task id with no parsed result.
	KindMissingDependency Kind = "MissingDependency"
	// KindTypeMismatch: a Condition comparison's operands aren't
	// ordered/comparable for the requested operator.
	KindTypeMismatch Kind = "TypeMismatch"
	// KindDeciderError: permission denied under this decider's own
	// identity, a malformed history, or a protocol violation. Terminates
	// the Decider Loop.
	KindDeciderError Kind = "DeciderError"
	// KindUnsupportedWorkflow: a decision task referenced an unknown
	// (name, version) pair.
	KindUnsupportedWorkflow Kind = "UnsupportedWorkflow"
	// KindTransportError: the SWF RPC transport failed. Retried by the
	// loop; never surfaced to the caller without a retry.
	KindTransportError Kind = "TransportError"
)

// Error is the decider's error type: a kind, a human-readable message, and
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
