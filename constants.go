package binder

import "github.com/go-binder/binder/internal/sysabi"

// Well-known meta-transaction codes every Binder object answers to
// regardless of its interface, re-exported for callers that want to probe
// an arbitrary Proxy without a generated interface stub.
const (
	PingTransaction         = sysabi.PingTransaction
	InterfaceTransaction    = sysabi.InterfaceTransaction
	DumpTransaction         = sysabi.DumpTransaction
	ShellCommandTransaction = sysabi.ShellCommandTransaction
	SyspropsTransaction     = sysabi.SyspropsTransaction
)

// FirstCallTransaction is the first transaction code available to
// service-specific interfaces; codes below it are reserved for the
// meta-transactions above.
const FirstCallTransaction = sysabi.FirstCallTransaction

// DefaultDevicePath is the Binder driver node Open() connects to unless
// overridden with WithDevicePath.
const DefaultDevicePath = sysabi.DevicePath
