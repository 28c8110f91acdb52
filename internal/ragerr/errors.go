package ragerr

import (
	"errors"
	"fmt"
)

// Code categorizes a pipeline failure so callers can decide how to react.
type Code string

const (
	// CodeConfiguration marks fatal misconfiguration: invalid chunking
	// parameters, or an embedder whose dimensionality does not match the
	// target collection. Surfaced at startup or first use, never retried.
	CodeConfiguration Code = "CONFIGURATION"

	// CodeExtraction marks an unreadable or empty source document. The
	// failure is scoped to that document only.
	CodeExtraction Code = "EXTRACTION"

	// CodeProvider marks a connectivity, quota or timeout failure of an
	// external provider (embedding, vector store, generative model).
	// Recoverable; the caller decides whether to retry.
	CodeProvider Code = "PROVIDER"

	// CodeDimensionMismatch marks a vector whose length does not match
	// the collection it is written to or queried against.
	CodeDimensionMismatch Code = "DIMENSION_MISMATCH"

	// CodeNotFound marks a missing record or collection.
	CodeNotFound Code = "NOT_FOUND"
)

// Error is the structured error type used across the RAG pipeline.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, enabling errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an existing error with a code and message.
// A nil err yields nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// GetCode walks the error chain and returns the first Code found,
// or the empty string when the chain carries no *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}
