// Package constants holds default tuning values for the Binder client,
// analogous to the teacher project's internal/constants package of
// device-lifecycle defaults.
package constants

import "time"

const (
	// DefaultAllowFds is the allow_fds gate new owned parcels start with.
	// The reference implementation accepts FDs unconditionally; §9 of the
	// design notes keeps that as the default, overridable per-Connection.
	DefaultAllowFds = true

	// OwnedParcelInitialCapacity is the initial backing-array size for a
	// freshly constructed owned parcel.
	OwnedParcelInitialCapacity = 256

	// OwnedParcelInitialObjects is the initial capacity of an owned
	// parcel's object-offsets table.
	OwnedParcelInitialObjects = 16

	// MaxEINTRRetries bounds the ioctl EINTR retry loop in the driver
	// session so a signal storm can't spin writeThenRead forever.
	MaxEINTRRetries = 16

	// TransactionReadBufferSize is the scratch buffer size used to drain
	// the return stream of a single Transact call. Large enough to hold a
	// BR_TRANSACTION_COMPLETE followed by a BR_REPLY header in one read.
	TransactionReadBufferSize = 4096
)

// GetServiceRetryInterval is the polling interval used by the supplemented
// ServiceManager.GetService retry loop between CheckService attempts.
const GetServiceRetryInterval = 100 * time.Millisecond
