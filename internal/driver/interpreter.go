package driver

import (
	"encoding/binary"
	"fmt"

	"github.com/go-binder/binder/internal/sysabi"
)

// EventKind tags the variant of a parsed return-protocol Event, mirroring
// the reference implementation's ReturnProtocolValue enum (§4.3).
type EventKind int

const (
	EventOk EventKind = iota
	EventError
	EventTransaction
	EventReply
	EventAcquireResult
	EventDeadReply
	EventTransactionComplete
	EventIncRefs
	EventAcquire
	EventRelease
	EventDecRefs
	EventAttemptAcquire
	EventNoop
	EventSpawnLooper
	EventFinished
	EventDeadBinder
	EventClearDeathNotificationDone
	EventFailedReply
)

// Event is one parsed frame from the driver's return stream.
type Event struct {
	Kind EventKind

	ErrorCode      int32                        // EventError
	Transaction    sysabi.BinderTransactionData // EventTransaction, EventReply
	AcquireResult  int32                        // EventAcquireResult
	PtrCookie      sysabi.BinderPtrCookie       // EventIncRefs/Acquire/Release/DecRefs
	PriPtrCookie   sysabi.BinderPriPtrCookie    // EventAttemptAcquire
	DeadBinderPtr  uint64                       // EventDeadBinder, EventClearDeathNotificationDone
}

// ErrExhausted is returned by ParseOne when the buffer holds no further
// complete frame; the caller should re-enter writeThenRead to pull more.
var ErrExhausted = fmt.Errorf("binder: return stream exhausted")

// ErrUnknownTag is returned when an unrecognized BR_* tag is encountered;
// per spec §4.3, this is fatal to the connection.
type ErrUnknownTag int32

func (e ErrUnknownTag) Error() string {
	return fmt.Sprintf("binder: unknown return-protocol tag %d", int32(e))
}

// ParseOne reads exactly one return-protocol frame starting at data[*pos],
// advances *pos past it, and returns the decoded Event. It returns
// ErrExhausted (not an error to the caller — merely "stop looping") when
// fewer than 4 bytes remain, matching the reference implementation's
// treatment of an UnexpectedEof on the tag read as end-of-stream.
func ParseOne(data []byte, pos *int) (Event, error) {
	if len(data)-*pos < 4 {
		return Event{}, ErrExhausted
	}
	tag := int32(binary.NativeEndian.Uint32(data[*pos : *pos+4]))
	tagEnd := *pos + 4

	// payload reports whether n more bytes are available after the tag; a
	// frame truncated mid-payload is treated the same as an empty buffer
	// (ErrExhausted), not a protocol panic — the driver always writes
	// complete frames, but a short trailing read should stop cleanly.
	payload := func(n int) ([]byte, bool) {
		if len(data)-tagEnd < n {
			return nil, false
		}
		return data[tagEnd : tagEnd+n], true
	}

	switch tag {
	case sysabi.BROk:
		*pos = tagEnd
		return Event{Kind: EventOk}, nil
	case sysabi.BRError:
		b, ok := payload(4)
		if !ok {
			return Event{}, ErrExhausted
		}
		*pos = tagEnd + 4
		return Event{Kind: EventError, ErrorCode: int32(binary.NativeEndian.Uint32(b))}, nil
	case sysabi.BRTransaction:
		b, ok := payload(64)
		if !ok {
			return Event{}, ErrExhausted
		}
		var txn sysabi.BinderTransactionData
		sysabi.UnmarshalTransactionData(b, &txn)
		*pos = tagEnd + 64
		return Event{Kind: EventTransaction, Transaction: txn}, nil
	case sysabi.BRReply:
		b, ok := payload(64)
		if !ok {
			return Event{}, ErrExhausted
		}
		var txn sysabi.BinderTransactionData
		sysabi.UnmarshalTransactionData(b, &txn)
		*pos = tagEnd + 64
		return Event{Kind: EventReply, Transaction: txn}, nil
	case sysabi.BRAcquireResult:
		b, ok := payload(4)
		if !ok {
			return Event{}, ErrExhausted
		}
		*pos = tagEnd + 4
		return Event{Kind: EventAcquireResult, AcquireResult: int32(binary.NativeEndian.Uint32(b))}, nil
	case sysabi.BRDeadReply:
		*pos = tagEnd
		return Event{Kind: EventDeadReply}, nil
	case sysabi.BRTransactionComplete:
		*pos = tagEnd
		return Event{Kind: EventTransactionComplete}, nil
	case sysabi.BRIncrefs, sysabi.BRAcquire, sysabi.BRRelease, sysabi.BRDecrefs:
		b, ok := payload(16)
		if !ok {
			return Event{}, ErrExhausted
		}
		var pc sysabi.BinderPtrCookie
		sysabi.UnmarshalPtrCookie(b, &pc)
		*pos = tagEnd + 16
		kind := map[int32]EventKind{
			sysabi.BRIncrefs: EventIncRefs, sysabi.BRAcquire: EventAcquire,
			sysabi.BRRelease: EventRelease, sysabi.BRDecrefs: EventDecRefs,
		}[tag]
		return Event{Kind: kind, PtrCookie: pc}, nil
	case sysabi.BRAttemptAcquire:
		b, ok := payload(24)
		if !ok {
			return Event{}, ErrExhausted
		}
		var pc sysabi.BinderPriPtrCookie
		sysabi.UnmarshalPriPtrCookie(b, &pc)
		*pos = tagEnd + 24
		return Event{Kind: EventAttemptAcquire, PriPtrCookie: pc}, nil
	case sysabi.BRNoop:
		*pos = tagEnd
		return Event{Kind: EventNoop}, nil
	case sysabi.BRSpawnLooper:
		*pos = tagEnd
		return Event{Kind: EventSpawnLooper}, nil
	case sysabi.BRFinished:
		*pos = tagEnd
		return Event{Kind: EventFinished}, nil
	case sysabi.BRDeadBinder:
		b, ok := payload(8)
		if !ok {
			return Event{}, ErrExhausted
		}
		*pos = tagEnd + 8
		return Event{Kind: EventDeadBinder, DeadBinderPtr: binary.NativeEndian.Uint64(b)}, nil
	case sysabi.BRClearDeathNotificationDone:
		b, ok := payload(8)
		if !ok {
			return Event{}, ErrExhausted
		}
		*pos = tagEnd + 8
		return Event{Kind: EventClearDeathNotificationDone, DeadBinderPtr: binary.NativeEndian.Uint64(b)}, nil
	case sysabi.BRFailedReply:
		*pos = tagEnd
		return Event{Kind: EventFailedReply}, nil
	default:
		return Event{}, ErrUnknownTag(tag)
	}
}
