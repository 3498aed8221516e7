package errors

import (
	"errors"
	"fmt"
)

// Exit codes for loom
const (
	ExitSuccess        = 0
	ExitFindings       = 1
	ExitGeneralError   = 2
	ExitInvalidPath    = 3
	ExitConfigError    = 4
	ExitParseError     = 5
	ExitRemoteError    = 6
	ExitRefuseOverride = 7
)

// LoomError is the base error type for loom
type LoomError struct {
	Code    int
	Message string
	Cause   error
}

func (e *LoomError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *LoomError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *LoomError) ExitCode() int {
	return e.Code
}

// New creates a new LoomError
func New(code int, message string) *LoomError {
	return &LoomError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a LoomError
func Wrap(code int, message string, cause error) *LoomError {
	return &LoomError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// FindingsReported signals that an analyzer completed and found issues.
// It is not a failure of the tool itself; main exits with ExitFindings
// without printing it.
func FindingsReported(tool string, count int) *LoomError {
	return New(ExitFindings, fmt.Sprintf("%s: %d finding(s) reported", tool, count))
}

// InvalidPath returns an error for a target that is neither a file nor a directory
func InvalidPath(path string) *LoomError {
	return New(ExitInvalidPath, fmt.Sprintf("path %q is not a valid file or directory", path))
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *LoomError {
	return Wrap(ExitConfigError, message, cause)
}

// ParseError returns an error for input documents that could not be parsed
func ParseError(path string, cause error) *LoomError {
	return Wrap(ExitParseError, fmt.Sprintf("failed to parse %s", path), cause)
}

// RemoteError returns an error for failed calls to external services
func RemoteError(service string, cause error) *LoomError {
	return Wrap(ExitRemoteError, fmt.Sprintf("%s request failed", service), cause)
}

// FileExists returns an error when a generator would overwrite a file
func FileExists(path string) *LoomError {
	return New(ExitRefuseOverride, fmt.Sprintf("file already exists: %s (use --force to overwrite)", path))
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *LoomError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var loomErr *LoomError
	if errors.As(err, &loomErr) {
		return loomErr.ExitCode()
	}
	return ExitGeneralError
}

// IsFindings reports whether err only signals reported findings.
func IsFindings(err error) bool {
	var loomErr *LoomError
	return errors.As(err, &loomErr) && loomErr.Code == ExitFindings
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
