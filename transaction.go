package binder

import (
	"encoding/binary"
	"runtime"
	"time"
	"unsafe"

	"github.com/go-binder/binder/internal/bufpool"
	"github.com/go-binder/binder/internal/constants"
	"github.com/go-binder/binder/internal/driver"
	"github.com/go-binder/binder/internal/drivererr"
	"github.com/go-binder/binder/internal/sysabi"
)

// transact drives one request through the Sending -> Awaiting ->
// {Replied | Dead | Failed} state machine of spec §4.5. A one-way
// transaction completes (nil, nil) on BR_TRANSACTION_COMPLETE; a two-way
// transaction keeps re-entering WriteThenRead with a read-only poll until
// a terminal event (Reply, DeadReply or FailedReply) arrives.
func (c *Connection) transact(handle uint32, code uint32, req *OwnedParcel, flags TransactionFlags) (*BorrowedParcel, error) {
	oneWay := flags&FlagOneWay != 0
	start := time.Now()

	txn, offsets := c.buildTransactionData(handle, code, req, oneWay)

	out := make([]byte, 4+64)
	binary.NativeEndian.PutUint32(out[0:4], sysabi.BCTransaction)
	copy(out[4:], sysabi.MarshalTransactionData(&txn))

	in := bufpool.Get(constants.TransactionReadBufferSize)
	defer bufpool.Put(in)

	for {
		_, readN, err := c.session.WriteThenRead(out, in)
		out = nil // already consumed; subsequent iterations only poll for more reads
		if err != nil {
			runtime.KeepAlive(req)
			runtime.KeepAlive(offsets)
			c.obs.ObserveTransaction(code, handle, "error", time.Since(start).Seconds())
			return nil, translateSessionError("Transact", err)
		}

		pos := 0
		for {
			ev, perr := driver.ParseOne(in[:readN], &pos)
			if perr == driver.ErrExhausted {
				break
			}
			if perr != nil {
				runtime.KeepAlive(req)
				runtime.KeepAlive(offsets)
				c.obs.ObserveTransaction(code, handle, "error", time.Since(start).Seconds())
				return nil, NewError("Transact", ErrCodeProtocolViolation, "", perr)
			}

			switch ev.Kind {
			case driver.EventTransactionComplete:
				if oneWay {
					runtime.KeepAlive(req)
					runtime.KeepAlive(offsets)
					c.obs.ObserveTransaction(code, handle, "complete", time.Since(start).Seconds())
					return nil, nil
				}
				// two-way call: keep waiting for the reply in this or a later read
			case driver.EventReply:
				runtime.KeepAlive(req)
				runtime.KeepAlive(offsets)
				reply, rerr := c.handleReply(&ev.Transaction)
				c.obs.ObserveTransaction(code, handle, transactOutcome(rerr), time.Since(start).Seconds())
				return reply, rerr
			case driver.EventDeadReply:
				runtime.KeepAlive(req)
				runtime.KeepAlive(offsets)
				c.obs.ObserveTransaction(code, handle, "dead", time.Since(start).Seconds())
				return nil, drivererr.New(drivererr.DeadObject)
			case driver.EventFailedReply:
				runtime.KeepAlive(req)
				runtime.KeepAlive(offsets)
				c.obs.ObserveTransaction(code, handle, "failed", time.Since(start).Seconds())
				return nil, drivererr.New(drivererr.FailedTransaction)
			default:
				if err := c.handleEvent(ev); err != nil {
					runtime.KeepAlive(req)
					runtime.KeepAlive(offsets)
					c.obs.ObserveTransaction(code, handle, "error", time.Since(start).Seconds())
					return nil, err
				}
			}
		}
	}
}

func transactOutcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// buildTransactionData fills in a binder_transaction_data for req, pointing
// its buffer/offsets fields directly at req's backing arrays. The caller
// must runtime.KeepAlive(req) and the returned offsets slice until the
// ioctl that consumes these pointers has returned.
func (c *Connection) buildTransactionData(handle, code uint32, req *OwnedParcel, oneWay bool) (sysabi.BinderTransactionData, []uint64) {
	var txn sysabi.BinderTransactionData
	txn.SetTargetHandle(handle)
	txn.Code = code
	if oneWay {
		txn.Flags |= sysabi.FlagOneWay
	}
	if req.allowFds {
		txn.Flags |= sysabi.FlagAcceptFds
	}
	txn.DataSize = uint64(len(req.data))
	if len(req.data) > 0 {
		txn.Buffer = uint64(uintptr(unsafe.Pointer(&req.data[0])))
	}

	var offsets []uint64
	if len(req.objects) > 0 {
		offsets = make([]uint64, len(req.objects))
		for i, o := range req.objects {
			offsets[i] = uint64(o)
		}
		txn.OffsetsSize = uint64(len(offsets) * 8)
		txn.Offsets = uint64(uintptr(unsafe.Pointer(&offsets[0])))
	}
	return txn, offsets
}

// handleReply wraps a BR_REPLY's payload into a BorrowedParcel aliasing
// the kernel's receive-arena buffer, or decodes it as a bare int32 status
// code when the reply carries FlagStatusCode (spec's in-band status
// convention, used by some meta-transactions).
func (c *Connection) handleReply(txn *sysabi.BinderTransactionData) (*BorrowedParcel, error) {
	data := bytesFromAddr(txn.Buffer, int(txn.DataSize))
	objects := offsetsFromAddr(txn.Offsets, int(txn.OffsetsSize/8))

	if txn.Flags&sysabi.FlagStatusCode != 0 {
		bp := newBorrowedParcel(c, data, objects, txn.Buffer)
		code, err := bp.ReadInt32()
		bp.Release()
		if err != nil {
			return nil, err
		}
		if code != 0 {
			return nil, drivererr.FromStatusCode(code)
		}
		return nil, nil
	}

	return newBorrowedParcel(c, data, objects, txn.Buffer), nil
}

// bytesFromAddr reinterprets an address the kernel returned (into either
// the mmap'd receive arena or a buffer it allocated) as a byte slice. Safe
// because that memory remains valid until this parcel's BC_FREE_BUFFER is
// sent, which BorrowedParcel.Release guarantees happens before the
// backing pages can be reused.
func bytesFromAddr(addr uint64, n int) []byte {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n)
}

// offsetsFromAddr reinterprets the kernel's offsets array (binder_size_t,
// 8 bytes per entry) as the narrower uint32 offsets this package's reader
// works with; every real offset fits in 32 bits for a 1 MiB arena.
func offsetsFromAddr(addr uint64, count int) []uint32 {
	if count == 0 {
		return nil
	}
	raw := unsafe.Slice((*uint64)(unsafe.Pointer(uintptr(addr))), count)
	out := make([]uint32, count)
	for i, v := range raw {
		out[i] = uint32(v)
	}
	return out
}
