// Package halerr defines the error type shared by the routing core and its
// collaborators.
package halerr

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	// InvalidRequest is a caller mistake: a multi-device open, or in-call
	// capture with no call up.
	InvalidRequest Code = "INVALID_REQUEST"
	// DeviceUnavailable means the driver transport refused to open or route.
	DeviceUnavailable Code = "DEVICE_UNAVAILABLE"
	// SequencerUnavailable means the use case registry call failed. Routing
	// carries on without it.
	SequencerUnavailable Code = "SEQUENCER_UNAVAILABLE"
)

// Error carries a Code together with context for logs and API responses.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	Cause   error          `json:"-"`
}

// New creates an Error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error around cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// With attaches a context value and returns e.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HasCode reports whether err, or anything it wraps, is an *Error with code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
