package binder

import (
	"runtime"

	"github.com/go-binder/binder/internal/sysabi"
)

// TransactionFlags controls how a single Transact call behaves.
type TransactionFlags uint32

const (
	// FlagNone performs a normal two-way call: the driver blocks the caller
	// until a reply or failure event arrives.
	FlagNone TransactionFlags = 0
	// FlagOneWay fires the transaction and returns as soon as the driver
	// acknowledges receipt (BC_TRANSACTION_COMPLETE), without waiting for
	// any reply.
	FlagOneWay TransactionFlags = TransactionFlags(sysabi.FlagOneWay)
)

// Proxy is a strong reference to a remote Binder object named by an
// integer handle. Proxies for the same handle are deduplicated by the
// owning Connection's handle registry (spec §4.4): two calls that resolve
// the same live handle return the identical *Proxy.
type Proxy struct {
	conn     *Connection
	handle   uint32
	released bool
}

// newProxy mints a Proxy already registered with the driver acquire that
// backs it, installing a finalizer safety net mirroring
// newBorrowedParcel's: a Proxy dropped without an explicit Release would
// otherwise leak the driver-side strong reference forever.
func newProxy(conn *Connection, handle uint32) *Proxy {
	p := &Proxy{conn: conn, handle: handle}
	runtime.SetFinalizer(p, func(p *Proxy) {
		if !p.released {
			if conn != nil && conn.logger != nil {
				conn.logger.Warn("proxy finalized without explicit Release", "handle", handle)
			}
			p.Release()
		}
	})
	return p
}

// Handle returns the raw Binder handle this proxy names.
func (p *Proxy) Handle() uint32 { return p.handle }

// Transact sends req to the remote object named by this proxy under the
// given transaction code and flags, and returns the reply (nil for a
// one-way call, which never produces one). Ownership of req is not taken;
// the caller must Release it. The caller owns the returned
// *BorrowedParcel and must Release it.
func (p *Proxy) Transact(code uint32, req *OwnedParcel, flags TransactionFlags) (*BorrowedParcel, error) {
	return p.conn.transact(p.handle, code, req, flags)
}

// Release drops this library's strong reference to the remote object,
// issuing BC_RELEASE to the driver. Idempotent: a second call is a no-op,
// matching the "no double-release" invariant despite Go's lack of a
// deterministic destructor to enforce it automatically.
func (p *Proxy) Release() {
	if p.released {
		return
	}
	p.released = true
	if err := p.conn.releaseProxy(p.handle, p); err != nil && p.conn.logger != nil {
		p.conn.logger.Warn("failed to release proxy", "handle", p.handle, "error", err)
	}
}
