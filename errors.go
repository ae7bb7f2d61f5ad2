package binder

import (
	"errors"
	"fmt"

	"github.com/go-binder/binder/internal/drivererr"
)

// DriverErrorCode enumerates the driver/Binder error taxonomy (spec §7,
// taxonomy 1), aliased from the internal package that also backs
// internal/driver's errno mapping so both layers agree on one definition.
type DriverErrorCode = drivererr.Code

const (
	NoMemory           = drivererr.NoMemory
	InvalidOperation   = drivererr.InvalidOperation
	BadValue           = drivererr.BadValue
	BadType            = drivererr.BadType
	NameNotFound       = drivererr.NameNotFound
	PermissionDenied   = drivererr.PermissionDenied
	NoInit             = drivererr.NoInit
	AlreadyExists      = drivererr.AlreadyExists
	DeadObject         = drivererr.DeadObject
	FailedTransaction  = drivererr.FailedTransaction
	BadIndex           = drivererr.BadIndex
	NotEnoughData      = drivererr.NotEnoughData
	WouldBlock         = drivererr.WouldBlock
	TimedOut           = drivererr.TimedOut
	UnknownTransaction = drivererr.UnknownTransaction
	FdsNotAllowed      = drivererr.FdsNotAllowed
	UnexpectedNull     = drivererr.UnexpectedNull
	UnknownErrorCode   = drivererr.UnknownError
)

// DriverError is a transport-level error translated from a kernel errno or
// from an in-band status code carried in a reply parcel. It is aliased
// from internal/drivererr so errors.As works uniformly whether the error
// originated inside internal/driver or inside this package's codec.
type DriverError = drivererr.Error

// ErrCode enumerates the library-level error taxonomy (spec §7, taxonomy 2):
// failures that happen above the driver/errno layer.
type ErrCode string

const (
	ErrCodeWrongProtocolVersion ErrCode = "wrong_protocol_version"
	ErrCodeIO                   ErrCode = "io"
	ErrCodeProtocolViolation    ErrCode = "protocol_violation"
	ErrCodeNoContext            ErrCode = "no_context"
)

// Error is the general library error type, modeled directly on the teacher
// project's errors.go Error struct: an operation name, an optional handle
// the operation concerned, a stable code, a human message, and a wrapped
// cause. There is no separate errno field.
type Error struct {
	Op     string
	Handle uint32
	Code   ErrCode
	Msg    string
	Inner  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("binder: %s: %s", e.Op, e.Code)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Inner != nil {
		msg += ": " + e.Inner.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError constructs a library Error.
func NewError(op string, code ErrCode, msg string, inner error) *Error {
	return &Error{Op: op, Code: code, Msg: msg, Inner: inner}
}

// WrapDriverError wraps a *DriverError with an operation and handle for
// context, keeping errors.As(err, *DriverError) working through the wrap.
func WrapDriverError(op string, handle uint32, inner *DriverError) *Error {
	return &Error{Op: op, Handle: handle, Code: ErrCode(inner.Code.String()), Inner: inner}
}

// IsDriverCode reports whether err wraps a *DriverError with the given code.
func IsDriverCode(err error, code DriverErrorCode) bool {
	var de *DriverError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
