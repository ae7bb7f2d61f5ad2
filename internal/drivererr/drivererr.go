// Package drivererr defines the driver/Binder error taxonomy (spec §7,
// taxonomy 1) and the errno mapping table, grounded byte-for-byte on the
// reference implementation's error.rs From<libc::c_int> impl. It lives in
// its own internal package, rather than directly in the root package,
// purely so both internal/driver (which needs to map a raw errno as soon
// as an ioctl fails) and the root package (which re-exports these types as
// public API) can import it without an import cycle.
package drivererr

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Code enumerates the driver/Binder error taxonomy.
type Code int

const (
	NoMemory Code = iota
	InvalidOperation
	BadValue
	BadType
	NameNotFound
	PermissionDenied
	NoInit
	AlreadyExists
	DeadObject
	FailedTransaction
	BadIndex
	NotEnoughData
	WouldBlock
	TimedOut
	UnknownTransaction
	FdsNotAllowed
	UnexpectedNull
	UnknownError
)

func (c Code) String() string {
	switch c {
	case NoMemory:
		return "NoMemory"
	case InvalidOperation:
		return "InvalidOperation"
	case BadValue:
		return "BadValue"
	case BadType:
		return "BadType"
	case NameNotFound:
		return "NameNotFound"
	case PermissionDenied:
		return "PermissionDenied"
	case NoInit:
		return "NoInit"
	case AlreadyExists:
		return "AlreadyExists"
	case DeadObject:
		return "DeadObject"
	case FailedTransaction:
		return "FailedTransaction"
	case BadIndex:
		return "BadIndex"
	case NotEnoughData:
		return "NotEnoughData"
	case WouldBlock:
		return "WouldBlock"
	case TimedOut:
		return "TimedOut"
	case UnknownTransaction:
		return "UnknownTransaction"
	case FdsNotAllowed:
		return "FdsNotAllowed"
	case UnexpectedNull:
		return "UnexpectedNull"
	case UnknownError:
		return "UnknownError"
	default:
		return "Code(?)"
	}
}

// Error is a driver/Binder-taxonomy error. RawCode carries the original
// negative errno (or synthetic negative sentinel) when Code is
// UnknownError, and the positive value of a contract-violating reply when
// the driver misbehaves.
type Error struct {
	Code    Code
	RawCode int32
}

func (e *Error) Error() string {
	if e.Code == UnknownError {
		return fmt.Sprintf("binder: unknown driver error (code=%d)", e.RawCode)
	}
	return fmt.Sprintf("binder: %s", e.Code)
}

// New constructs a *Error for a known Code.
func New(code Code) *Error { return &Error{Code: code} }

// Unknown constructs a *Error carrying a raw code with no stable mapping.
func Unknown(rawCode int32) *Error { return &Error{Code: UnknownError, RawCode: rawCode} }

// FromStatusCode maps a negative in-band status code, as carried in a
// FLAT_BINDER_FLAG_STATUS_CODE reply or a BR_ERROR frame, through the same
// errno mapping as FromErrno (spec §7). code is conventionally negative
// (e.g. -EPIPE). A negative value with no known mapping falls back to
// Unknown, matching FromErrno's own default case; a zero or positive value
// is returned as Unknown carrying that value unchanged.
func FromStatusCode(code int32) *Error {
	if code >= 0 {
		return Unknown(code)
	}
	return FromErrno(unix.Errno(-code))
}

// FromErrno maps a raw kernel errno to the driver error taxonomy, following
// the reference implementation's From<libc::c_int> impl exactly. errno is
// the positive unix.Errno value (as returned by a failed syscall, or the
// negation of an in-band status code); an unmapped errno becomes Unknown
// carrying the negated value.
func FromErrno(errno unix.Errno) *Error {
	switch errno {
	case unix.ENOMEM:
		return New(NoMemory)
	case unix.ENOSYS:
		return New(InvalidOperation)
	case unix.EINVAL:
		return New(BadValue)
	case unix.ENOENT:
		return New(NameNotFound)
	case unix.EPERM:
		return New(PermissionDenied)
	case unix.ENODEV:
		return New(NoInit)
	case unix.EEXIST:
		return New(AlreadyExists)
	case unix.EPIPE:
		return New(DeadObject)
	case unix.EOVERFLOW:
		return New(BadIndex)
	case unix.ENODATA:
		return New(NotEnoughData)
	case unix.EWOULDBLOCK: // == EAGAIN on Linux
		return New(WouldBlock)
	case unix.ETIMEDOUT:
		return New(TimedOut)
	case unix.EBADMSG:
		return New(UnknownTransaction)
	default:
		return Unknown(-int32(errno))
	}
}
