// Package interfaces holds the small cross-package contracts shared between
// the root package and internal/driver, kept separate to avoid a circular
// import between them (the same reason the teacher project isolates its
// Backend/Logger/Observer contracts here).
package interfaces

// Driver is the low-level contract the transaction engine needs from a
// Binder driver session: a single synchronous write-then-read primitive.
// The real implementation (internal/driver) talks to /dev/binder via ioctl;
// tests substitute a mock that replays canned return-protocol bytes.
type Driver interface {
	// WriteThenRead submits the bytes in out (may be nil/empty for a
	// read-only poll) and reads as many reply bytes as fit into in,
	// returning the number of bytes actually consumed from out and the
	// number of bytes actually written into in.
	WriteThenRead(out []byte, in []byte) (writeConsumed int, readConsumed int, err error)
	Close() error
}

// Logger is the structured logging contract consumed outside of
// internal/logging, so callers can supply their own logger without this
// module forcing a concrete zerolog dependency on them.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Observer receives per-transaction telemetry. NoOpObserver (in the root
// package) is the zero-cost default.
type Observer interface {
	ObserveTransaction(code uint32, handle uint32, outcome string, durationSeconds float64)
	ObserveProxyCreated(handle uint32)
	ObserveProxyReleased(handle uint32)
}
