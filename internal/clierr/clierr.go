// Package clierr defines the structured errors the CLI reports, and how they
// map to exit codes.
package clierr

import "fmt"

// Error codes.
const (
	SkillNotFound   = "SKILL_NOT_FOUND"
	NoSkillFiles    = "NO_SKILL_FILES"
	InputNotFound   = "INPUT_NOT_FOUND"
	TabNotReady     = "TAB_NOT_READY"
	HubUnavailable  = "HUB_UNAVAILABLE"
	ConfirmationReq = "CONFIRMATION_REQUIRED"
	InvalidInput    = "INVALID_INPUT"
	InternalError   = "INTERNAL_ERROR"
)

// Error is a user-facing error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// New creates an Error.
func New(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps err as its cause.
func Wrap(code string, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// WithDetails attaches structured details and returns e.
func (e *Error) WithDetails(d map[string]any) *Error {
	e.Details = d
	return e
}

// ExitCode is 2 for internal errors and 1 for everything the user can fix.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2
	}
	return 1
}

// SilentError exits with Code without printing anything.
type SilentError struct {
	Code int
}

func (e *SilentError) Error() string { return fmt.Sprintf("exit %d", e.Code) }
