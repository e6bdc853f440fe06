// Package service holds the business rules of RentConnect.  Handlers call
// into it with parsed input; it talks to repositories, the upload store,
// the session manager and the event publisher through small interfaces.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can pick a status code.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindAuth         Kind = "auth"
	KindRoleMismatch Kind = "role_mismatch"
	KindNotFound     Kind = "not_found"
	KindUpstream     Kind = "upstream"
	KindStorage      Kind = "storage"
	KindInternal     Kind = "internal"
)

// GenericMessage replaces the message of storage and internal failures.
const GenericMessage = "Something went wrong. Please try again."

// Error is the error type returned by every service method.  Message is
// safe to show to end users; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }
func RoleMismatch(msg string) *Error { return &Error{Kind: KindRoleMismatch, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: GenericMessage, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: GenericMessage, Err: err}
}

// KindOf returns the Kind carried by err.  Errors that are not *Error are
// internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return GenericMessage
}
