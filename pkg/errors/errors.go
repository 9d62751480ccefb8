// Package errors defines the coded errors peerpin returns.
//
// Every failure the engine or the CLI reports carries a [Code] so callers can
// branch on the kind of failure without matching message text:
//
//	if errors.Is(err, errors.ErrCodeViolations) {
//	    os.Exit(1)
//	}
//
// Codes are grouped by prefix. INVALID_* and MALFORMED_RANGE reject user
// input, UNRESOLVED_DEPENDENCY and FILE_NOT_FOUND report an incomplete
// workspace, and the remaining codes describe how an enforcement run ended.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error kind.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeMalformedRange  Code = "MALFORMED_RANGE"

	ErrCodeUnresolvedDependency Code = "UNRESOLVED_DEPENDENCY"
	ErrCodeFileNotFound         Code = "FILE_NOT_FOUND"

	ErrCodeNotConverged Code = "NOT_CONVERGED"
	ErrCodeViolations   Code = "CONSTRAINTS_VIOLATED"
	ErrCodeInstall      Code = "INSTALL_FAILED"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error pairs a Code with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether any *Error in err's chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage formats err for the terminal, without the code prefix.
func UserMessage(err error) string {
	var u *UnresolvedDependencyError
	if errors.As(err, &u) {
		return u.Error()
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// UnresolvedDependencyError reports a declared dependency that has no package
// in the workspace graph. The install is incomplete and must be re-synced
// before enforcement can run.
type UnresolvedDependencyError struct {
	Workspace  string
	Dependency string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("cannot find the dependency package %q in the workspace %q; running the install command might fix this issue",
		e.Dependency, e.Workspace)
}

// Unwrap exposes the coded form so Is(err, ErrCodeUnresolvedDependency) holds.
func (e *UnresolvedDependencyError) Unwrap() error {
	return New(ErrCodeUnresolvedDependency, "unresolved dependency %s of %s", e.Dependency, e.Workspace)
}

func (e *UnresolvedDependencyError) Code() Code { return ErrCodeUnresolvedDependency }
