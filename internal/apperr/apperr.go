// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apperr defines the domain error taxonomy shared by every service
// and mapped to HTTP responses at the transport boundary (internal/api).
package apperr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code, mirrored 1:1 into the API envelope.
type Code string

const (
	CodeValidation              Code = "VALIDATION_ERROR"
	CodeInvalidCredentials      Code = "INVALID_CREDENTIALS"
	CodeInvalidToken            Code = "INVALID_TOKEN"
	CodeInvalidQRToken          Code = "INVALID_QR_TOKEN"
	CodeUnauthorized            Code = "UNAUTHORIZED"
	CodeForbidden               Code = "FORBIDDEN"
	CodeNotFound                Code = "NOT_FOUND"
	CodeConflict                Code = "CONFLICT"
	CodeInvalidStatusTransition Code = "INVALID_STATUS_TRANSITION"
	CodeCanceled                Code = "CANCELED"
	CodeInternal                Code = "INTERNAL_ERROR"
)

// Error is a typed domain error carrying a Code, a human message, and
// optional field-level details for VALIDATION_ERROR responses.
type Error struct {
	Code    Code
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an *Error that carries an underlying cause for logging, while
// keeping the message shown to clients independent of internal detail.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetails attaches field-level detail (used by VALIDATION_ERROR) and
// returns the receiver for chaining.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

func Validation(message string) *Error { return New(CodeValidation, message) }
func NotFound(entity string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity))
}
func Conflict(message string) *Error              { return New(CodeConflict, message) }
func Forbidden(message string) *Error             { return New(CodeForbidden, message) }
func Unauthorized(message string) *Error          { return New(CodeUnauthorized, message) }
func InvalidStatusTransition(message string) *Error {
	return New(CodeInvalidStatusTransition, message)
}
func Internal(cause error) *Error {
	return Wrap(CodeInternal, "an internal error occurred", cause)
}

// As reports whether err is (or wraps) an *Error and returns it.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// CodeOf returns the Code of err if it is an *Error, or CodeInternal otherwise.
func CodeOf(err error) Code {
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return CodeInternal
}
