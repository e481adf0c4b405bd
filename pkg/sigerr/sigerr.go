// Package sigerr defines the error taxonomy shared by the signal envelope,
// router, and dispatcher. Every failure surfaced to a caller carries one of
// these kinds plus a human-readable message, mirroring the code/message
// split the HTTP response layer uses at the process boundary.
package sigerr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error classification.
type Kind string

const (
	// KindParse marks envelope construction/validation failures.
	KindParse Kind = "parse_error"
	// KindRouting marks invalid patterns, invalid priorities, invalid
	// signal types, guard failures, or an empty match set.
	KindRouting Kind = "routing_error"
	// KindProcessNotFound marks a named/direct dispatch target that could
	// not be resolved.
	KindProcessNotFound Kind = "process_not_found"
	// KindBusNotFound marks a bus dispatch target that could not be resolved.
	KindBusNotFound Kind = "bus_not_found"
	// KindDispatch marks an adapter-specific delivery failure.
	KindDispatch Kind = "dispatch_error"
)

// Error is the structured error type returned across package boundaries.
// It always carries a Kind tag alongside the human-readable message so
// callers can branch on failure category without parsing strings.
type Error struct {
	Kind    Kind
	Message string
	// Reason holds an adapter-specific opaque detail for KindDispatch errors.
	Reason error
}

func (e *Error) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes Reason so errors.Is/As can see through dispatch failures.
func (e *Error) Unwrap() error {
	return e.Reason
}

// Is makes errors.Is match any *Error target of the same Kind, whatever
// its message, e.g. errors.Is(err, sigerr.Routing("")).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New builds an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind carrying an adapter-specific reason.
func Wrap(kind Kind, reason error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Reason: reason}
}

// Parse builds a parse_error, prefixed per the wire contract ("parse error: <detail>").
func Parse(format string, args ...any) *Error {
	return &Error{Kind: KindParse, Message: "parse error: " + fmt.Sprintf(format, args...)}
}

// Routing builds a routing_error.
func Routing(format string, args ...any) *Error {
	return New(KindRouting, format, args...)
}

// KindOf extracts the Kind from err, or "" if err is not (or does not wrap) *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
