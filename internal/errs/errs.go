// Package errs defines the coded error type shared by the bootstrap engine.
// Codes are stable so callers and tests can branch on the kind of failure
// without matching message text.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a category of failure.
type Code string

const (
	Unknown               Code = "UNKNOWN"
	DependencyMissing     Code = "DEPENDENCY_MISSING"
	AutofixFailed         Code = "AUTOFIX_FAILED"
	ExternalProcessFailed Code = "EXTERNAL_PROCESS_FAILED"
	ConfigCorrupt         Code = "CONFIG_CORRUPT"
	ConfigIO              Code = "CONFIG_IO"
	UserAborted           Code = "USER_ABORTED"
	SelectionRequired     Code = "SELECTION_REQUIRED"
	InvalidInput          Code = "INVALID_INPUT"
)

// Error is a failure with a code, an optional remediation hint and
// free-form details for logging.
type Error struct {
	Code    Code
	Message string
	Hint    string
	Details map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. It returns nil for a nil err.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// WithHint sets the remediation text shown to the user.
func (e *Error) WithHint(format string, args ...any) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// WithDetail attaches a key/value pair for diagnostics.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// CodeOf returns the code of the outermost *Error in err's chain, or Unknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// HintOf returns the first non-empty hint found in err's chain.
func HintOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Hint != "" {
			return e.Hint
		}
		err = e.Wrapped
	}
	return ""
}

// Detail returns the named detail from the outermost *Error in err's chain
// that carries it.
func Detail(err error, key string) (any, bool) {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return nil, false
		}
		if v, ok := e.Details[key]; ok {
			return v, true
		}
		err = e.Wrapped
	}
	return nil, false
}
