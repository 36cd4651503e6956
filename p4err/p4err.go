// Package p4err defines the closed set of error kinds produced by the
// translation core, mirroring a standard gRPC-style code space.
package p4err

import "fmt"

// Code is a coarse error classification. The set is closed: every core
// operation that can fail reports one of these.
type Code int

const (
	// InvalidArgument covers malformed input, schema violations, values
	// out of range, duplicate ids/names, and bit-width mismatches.
	InvalidArgument Code = iota
	// NotFound covers a referenced name or id absent from the schema.
	NotFound
	// Unimplemented covers a recognized construct that this library does
	// not support (e.g. an action-profile-member reference).
	Unimplemented
	// FailedPrecondition covers IR that references entities inconsistent
	// with the supplied P4Info.
	FailedPrecondition
	// Internal covers should-not-happen paths.
	Internal
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case Unimplemented:
		return "Unimplemented"
	case FailedPrecondition:
		return "FailedPrecondition"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the structured result every fallible core operation returns.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an *Error with a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the Code of err and true if err is a *Error, or false if
// it is not.
func CodeOf(err error) (Code, bool) {
	pe, ok := err.(*Error)
	if !ok {
		return 0, false
	}
	return pe.Code, true
}
