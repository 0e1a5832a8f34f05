// Package domainerrors carries stable, client-safe error codes from services to
// the transport layer.
//
// A domain error has a Code (machine readable, part of the public API), a
// Message (human readable, safe to return to callers) and an optional wrapped
// cause (internal only; never serialized).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. Values are serialized verbatim as the
// "error" field of JSON error responses.
type Code string

const (
	CodeForbidden          Code = "forbidden"
	CodeInvalidContentType Code = "invalid_content_type"
	CodeInvalidJSON        Code = "invalid_json"
	CodeInvalidBody        Code = "invalid_body"
	CodeValidation         Code = "validation_error"
	CodeRateLimited        Code = "rate_limited"
	CodeStoreWrite         Code = "db_insert_failed"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal_error"
)

// Error is the concrete domain error type.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and public message to an internal cause.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As extracts the first domain error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// HasCode is an alias of Is kept for call sites that read better with it.
func HasCode(err error, code Code) bool {
	return Is(err, code)
}
