// Package errors gives every failure of linkcomm a machine-readable [Code].
// The code decides how the failure surfaces: the HTTP status the API answers
// with and the exit status of the CLI.
//
//	err := errors.New(errors.ErrCodeLookupFailure, "node %v not in graph", n)
//	errors.Is(err, errors.ErrCodeLookupFailure) // true
//	errors.HTTPStatus(err)                      // 404
//	errors.ExitCode(err)                        // 65
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"  // bad flag, query parameter or request field
	ErrCodeInvalidFormat Code = "INVALID_FORMAT" // malformed CSV, dendrogram JSON or .tree line
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	ErrCodeLookupFailure Code = "LOOKUP_FAILURE" // node or index absent from the graph
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// ErrCodeInvariantViolation means a dendrogram broke a clustering
	// invariant, such as a leaf edge appearing twice.
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Exit statuses, from sysexits(3).
const (
	ExitFailure  = 1
	ExitUsage    = 64
	ExitData     = 65
	ExitNoInput  = 66
	ExitSoftware = 70
	ExitConfig   = 78
)

type outcome struct {
	status int
	exit   int
	client bool
}

var outcomes = map[Code]outcome{
	ErrCodeInvalidInput:       {http.StatusBadRequest, ExitUsage, true},
	ErrCodeInvalidFormat:      {http.StatusBadRequest, ExitData, true},
	ErrCodeInvalidPath:        {http.StatusBadRequest, ExitUsage, true},
	ErrCodeInvalidConfig:      {http.StatusBadRequest, ExitConfig, true},
	ErrCodeLookupFailure:      {http.StatusNotFound, ExitData, true},
	ErrCodeNotFound:           {http.StatusNotFound, ExitData, true},
	ErrCodeFileNotFound:       {http.StatusNotFound, ExitNoInput, true},
	ErrCodeUnsupported:        {http.StatusBadRequest, ExitUsage, true},
	ErrCodeInvariantViolation: {http.StatusInternalServerError, ExitSoftware, false},
	ErrCodeInternal:           {http.StatusInternalServerError, ExitSoftware, false},
}

// Error carries a code, a message for the user and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code and a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code and
// cause, or err.Error() for any other error.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsClientError reports whether err was caused by bad input rather than by a
// defect.
func IsClientError(err error) bool {
	return outcomes[GetCode(err)].client
}

// HTTPStatus returns the API status for err: 4xx for client errors, 500 for
// defects and uncoded errors.
func HTTPStatus(err error) int {
	if o, ok := outcomes[GetCode(err)]; ok {
		return o.status
	}
	return http.StatusInternalServerError
}

// ExitCode returns the CLI exit status for err: 0 for nil, a sysexits status
// for coded errors and [ExitFailure] for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if o, ok := outcomes[GetCode(err)]; ok {
		return o.exit
	}
	return ExitFailure
}
