package binder

import (
	"weak"

	"github.com/go-binder/binder/internal/interfaces"
)

// MockDriver is a test double for interfaces.Driver: it records every
// command buffer written to it and replays a caller-queued sequence of
// return-stream frames, one per WriteThenRead call. Exported so callers
// building their own Binder-backed services can exercise them without a
// real kernel driver, the same way the reference project's MockBackend
// let callers test against a fake block-device backend.
type MockDriver struct {
	Writes  [][]byte
	replies [][]byte
	errs    []error

	Closed   bool
	CloseErr error
}

// NewMockDriver returns an empty MockDriver ready to have replies queued
// onto it with QueueReply.
func NewMockDriver() *MockDriver {
	return &MockDriver{}
}

// QueueReply appends one return-stream frame (raw BR_* tagged bytes) to be
// handed back verbatim on the next WriteThenRead call. A nil error is
// recorded alongside it for QueueErr to stay aligned by call order.
func (m *MockDriver) QueueReply(frame []byte) {
	m.replies = append(m.replies, frame)
	m.errs = append(m.errs, nil)
}

// QueueErr appends a call that fails outright with err (simulating an
// ioctl-level failure such as a driver-errno-mapped error) instead of
// producing a return-stream frame.
func (m *MockDriver) QueueErr(err error) {
	m.replies = append(m.replies, nil)
	m.errs = append(m.errs, err)
}

// WriteThenRead implements interfaces.Driver. It records a copy of out (so
// later mutation of the caller's buffer doesn't corrupt the recording) and
// copies the next queued reply, if any, into in.
func (m *MockDriver) WriteThenRead(out []byte, in []byte) (int, int, error) {
	if len(out) > 0 {
		cp := make([]byte, len(out))
		copy(cp, out)
		m.Writes = append(m.Writes, cp)
	}
	if len(m.replies) == 0 {
		return len(out), 0, nil
	}
	frame, err := m.replies[0], m.errs[0]
	m.replies, m.errs = m.replies[1:], m.errs[1:]
	if err != nil {
		return len(out), 0, err
	}
	n := copy(in, frame)
	return len(out), n, nil
}

// Close implements interfaces.Driver.
func (m *MockDriver) Close() error {
	m.Closed = true
	return m.CloseErr
}

var _ interfaces.Driver = (*MockDriver)(nil)

// newConnectionForTesting builds a Connection around an arbitrary
// interfaces.Driver, bypassing Open's real ioctl/mmap dance. Used by this
// package's own _test.go files.
func newConnectionForTesting(d interfaces.Driver) *Connection {
	o := defaultOptions()
	return &Connection{
		session:  d,
		opts:     o,
		logger:   testLogger{},
		obs:      NoOpObserver{},
		registry: make(map[uint32]weak.Pointer[Proxy]),
	}
}

// testLogger discards every message; used so test output isn't cluttered
// with the Debug-level chatter the transaction engine emits for every
// bookkeeping event.
type testLogger struct{}

func (testLogger) Debug(msg string, args ...any) {}
func (testLogger) Info(msg string, args ...any)  {}
func (testLogger) Warn(msg string, args ...any)  {}
func (testLogger) Error(msg string, args ...any) {}

var _ interfaces.Logger = testLogger{}
