package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so transports can map it to a status.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConflict     ErrorKind = "CONFLICT"
	KindBadRequest   ErrorKind = "BAD_REQUEST"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
)

// Error is the error type returned by services for client-visible failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind and message, so sentinels compare by value
// even after being wrapped with a cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, or "" when err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

var (
	ErrUserNotFound         = NotFound("user not found")
	ErrAgentNotFound        = NotFound("agent not found")
	ErrCarNotFound          = NotFound("car not found")
	ErrRentalNotFound       = NotFound("rental not found")
	ErrDocumentNotFound     = NotFound("document not found")
	ErrReviewNotFound       = NotFound("review not found")
	ErrNotificationNotFound = NotFound("notification not found")

	ErrEmailTaken          = Conflict("email already registered")
	ErrLicensePlateTaken   = Conflict("license plate already exists")
	ErrCarAlreadyBooked    = Conflict("car is already booked for these dates")
	ErrUserAlreadyBooked   = Conflict("you already have a rental during this period")
	ErrInvalidCredentials  = Unauthorized("invalid credentials")
	ErrInvalidVerification = BadRequest("invalid or expired verification token")
)
