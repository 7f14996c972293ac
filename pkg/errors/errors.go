// Package errors defines the coded errors atlas returns outside the graph
// core.
//
// The core answers lookup misses with ok results and never fails. Graph
// documents, configuration, the pipeline and the HTTP API report failures as
// *[Error] values carrying a [Code]; the CLI prints them and
// [github.com/matzehuels/atlas/pkg/httputil] maps them to status codes.
//
//	err := errors.New(errors.ErrCodeInvalidAlgorithm, "unknown algorithm %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidAlgorithm) {
//	    // print the list of algorithms
//	}
//
//	return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
//
// When coded errors are nested, the outermost one decides the code.
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidAlgorithm Code = "INVALID_ALGORITHM"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

type class uint8

const (
	classOther class = iota
	classInvalid
	classNotFound
)

var classes = map[Code]class{
	ErrCodeInvalidInput:     classInvalid,
	ErrCodeInvalidFormat:    classInvalid,
	ErrCodeInvalidAlgorithm: classInvalid,
	ErrCodeInvalidConfig:    classInvalid,
	ErrCodeNotFound:         classNotFound,
	ErrCodeNodeNotFound:     classNotFound,
	ErrCodeFileNotFound:     classNotFound,
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// outermost finds the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost coded error, or "" for plain
// errors.
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code prefix
// or cause, and err.Error() for anything else.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsInvalid reports whether err carries one of the INVALID_* codes.
func IsInvalid(err error) bool { return classes[GetCode(err)] == classInvalid }

// IsNotFound reports whether err carries one of the not-found codes.
func IsNotFound(err error) bool { return classes[GetCode(err)] == classNotFound }
