// Package binder is a user-space client library for the Android Binder IPC
// facility: it opens a connection to the kernel driver at /dev/binder,
// sends and receives transactions against remote objects named by integer
// handles, and marshals typed values in the Binder wire format.
package binder

import (
	"encoding/binary"
	"sync"
	"weak"

	"github.com/go-binder/binder/internal/drivererr"
	"github.com/go-binder/binder/internal/driver"
	"github.com/go-binder/binder/internal/interfaces"
	"github.com/go-binder/binder/internal/logging"
	"github.com/go-binder/binder/internal/sysabi"
)

// Connection is one open session against the Binder driver: the driver fd,
// the mmap'd receive arena (owned indirectly through the driver session),
// and the per-connection handle registry. Not safe for concurrent use
// (spec §5) — callers that need concurrent access open one Connection per
// goroutine or externally synchronize a shared one.
type Connection struct {
	session interfaces.Driver
	opts    options
	logger  interfaces.Logger
	obs     interfaces.Observer

	mu       sync.Mutex // guards registry; held only across the non-blocking bookkeeping below
	registry map[uint32]weak.Pointer[Proxy]
}

// Open opens a new Connection, applying any Options given (see options.go).
// On success the receive arena is mapped and ready; on any failure the
// underlying fd is closed before Open returns.
func Open(opts ...Option) (*Connection, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Default()
	}

	sess, err := driver.Open(o.devicePath, logger)
	if err != nil {
		if _, ok := err.(*driver.ProtocolVersionError); ok {
			return nil, NewError("Open", ErrCodeWrongProtocolVersion, err.Error(), err)
		}
		return nil, NewError("Open", ErrCodeIO, "failed to open binder device", err)
	}

	obs := o.observer
	if obs == nil {
		obs = NoOpObserver{}
	}

	c := &Connection{
		session:  sess,
		opts:     o,
		logger:   logger,
		obs:      obs,
		registry: make(map[uint32]weak.Pointer[Proxy]),
	}
	return c, nil
}

// Close releases the driver fd and unmaps the receive arena. Safe to call
// more than once.
func (c *Connection) Close() error {
	return c.session.Close()
}

// ContextObject probes handle 0 (the context object, conventionally the
// Service Manager) with a PingTransaction. Per spec §4.4/§7, a dead
// context object is reported as (nil, nil) rather than an error.
func (c *Connection) ContextObject() (*Proxy, error) {
	proxy, err := c.getStrongProxy(0)
	if err != nil {
		return nil, err
	}
	req := NewOwnedParcel(c)
	defer req.Release()
	reply, err := proxy.Transact(sysabi.PingTransaction, req, 0)
	if err != nil {
		if IsDriverCode(err, DeadObject) {
			return nil, nil
		}
		return nil, err
	}
	if reply != nil {
		reply.Release()
	}
	return proxy, nil
}

// ServiceManager returns a ServiceManager stub bound to the context
// object, or (nil, nil) if no context object is currently registered.
func (c *Connection) ServiceManager() (*ServiceManager, error) {
	proxy, err := c.ContextObject()
	if err != nil {
		return nil, err
	}
	if proxy == nil {
		return nil, nil
	}
	return &ServiceManager{proxy: proxy}, nil
}

// getStrongProxy implements the handle-registry algorithm of spec §4.4:
// upgrade the weak entry if live, otherwise mint a new Proxy, record a
// weak entry, and issue a driver acquire.
func (c *Connection) getStrongProxy(handle uint32) (*Proxy, error) {
	c.mu.Lock()
	if wp, ok := c.registry[handle]; ok {
		if p := wp.Value(); p != nil {
			c.mu.Unlock()
			return p, nil
		}
		delete(c.registry, handle) // stale entry; evict before minting a replacement
	}
	c.mu.Unlock()

	if err := c.sendRefcountCommand(sysabi.BCAcquire, handle); err != nil {
		return nil, err
	}

	p := newProxy(c, handle)
	c.mu.Lock()
	c.registry[handle] = weak.Make(p)
	c.mu.Unlock()
	c.obs.ObserveProxyCreated(handle)
	return p, nil
}

// releaseProxy issues the driver release command for handle. Called
// exactly once per Proxy lifetime from Proxy.Release. It also evicts p's
// own registry entry (if still current) so a subsequent getStrongProxy
// call mints a fresh Proxy and a fresh BC_ACQUIRE rather than handing back
// this now-released one before its weak reference has had a chance to
// expire.
func (c *Connection) releaseProxy(handle uint32, p *Proxy) error {
	c.mu.Lock()
	if wp, ok := c.registry[handle]; ok {
		if wp.Value() == p {
			delete(c.registry, handle)
		}
	}
	c.mu.Unlock()
	c.obs.ObserveProxyReleased(handle)
	return c.sendRefcountCommand(sysabi.BCRelease, handle)
}

// sendRefcountCommand writes a single BC_ACQUIRE/BC_RELEASE command and
// drains the resulting return stream, handling whatever bookkeeping
// events come back the same way the transaction engine does.
func (c *Connection) sendRefcountCommand(cmd uint32, handle uint32) error {
	out := make([]byte, 8)
	binary.NativeEndian.PutUint32(out[0:4], cmd)
	binary.NativeEndian.PutUint32(out[4:8], handle)

	in := make([]byte, 256)
	_, readN, err := c.session.WriteThenRead(out, in)
	if err != nil {
		return translateSessionError("sendRefcountCommand", err)
	}
	return c.drainBookkeeping(in[:readN])
}

// drainBookkeeping parses every event in buf, handling the bookkeeping
// ones in place. It is used standalone for refcount commands; the
// transaction engine (transaction.go) uses handleEvent directly so it can
// intercept the terminal Reply/DeadReply/FailedReply/TransactionComplete
// events itself.
func (c *Connection) drainBookkeeping(buf []byte) error {
	pos := 0
	for {
		ev, err := driver.ParseOne(buf, &pos)
		if err == driver.ErrExhausted {
			return nil
		}
		if err != nil {
			return NewError("drainBookkeeping", ErrCodeProtocolViolation, "", err)
		}
		if err := c.handleEvent(ev); err != nil {
			return err
		}
	}
}

// handleEvent processes one non-terminal return-protocol event: the
// bookkeeping and bound-object-lifecycle events that can show up
// interleaved with a reply, or standalone after a refcount command.
// Reply/DeadReply/FailedReply/TransactionComplete are left to the caller
// (the transaction engine treats them as terminal) and are no-ops here.
func (c *Connection) handleEvent(ev driver.Event) error {
	switch ev.Kind {
	case driver.EventOk, driver.EventNoop:
		// expected acknowledgements; nothing to do
	case driver.EventAcquireResult:
		c.logger.Debug("attempt-acquire result (reserved, ignored)", "result", ev.AcquireResult)
	case driver.EventSpawnLooper:
		c.logger.Debug("driver requested spawn-looper; not serving, ignored")
	case driver.EventTransaction:
		c.logger.Debug("discarding inbound transaction (serving out of scope)", "code", ev.Transaction.Code)
	case driver.EventDeadBinder:
		c.logger.Debug("peer died", "cookie", ev.DeadBinderPtr)
	case driver.EventClearDeathNotificationDone:
		// confirmation only
	case driver.EventIncRefs, driver.EventAcquire, driver.EventRelease, driver.EventDecRefs:
		// lifecycle signals for locally-exported objects; serving is
		// out of scope (spec §9(c)), so these are acknowledged and discarded.
	case driver.EventAttemptAcquire:
		c.logger.Debug("driver asked us to try-acquire a local object; serving out of scope, ignored")
	case driver.EventFinished:
		return drivererr.New(drivererr.TimedOut)
	case driver.EventError:
		return drivererr.FromStatusCode(ev.ErrorCode)
	default:
		// Reply/DeadReply/FailedReply/TransactionComplete: terminal to an
		// active Transact call, handled by the transaction engine.
	}
	return nil
}

// freeBuffer emits BC_FREE_BUFFER for a kernel-owned receive buffer.
func (c *Connection) freeBuffer(ptr uint64) {
	out := make([]byte, 4+8)
	binary.NativeEndian.PutUint32(out[0:4], sysabi.BCFreeBuffer)
	binary.NativeEndian.PutUint64(out[4:12], ptr)

	in := make([]byte, 128)
	_, readN, err := c.session.WriteThenRead(out, in)
	if err != nil {
		c.logger.Error("failed to free borrowed buffer", "error", err)
		return
	}
	if err := c.drainBookkeeping(in[:readN]); err != nil {
		c.logger.Error("error draining bookkeeping after free_buffer", "error", err)
	}
}

func translateSessionError(op string, err error) error {
	if de, ok := err.(*drivererr.Error); ok {
		return WrapDriverError(op, 0, de)
	}
	return NewError(op, ErrCodeIO, "", err)
}
