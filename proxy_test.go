package binder

import "testing"

func TestProxyHandle(t *testing.T) {
	conn := newConnectionForTesting(NewMockDriver())
	p := &Proxy{conn: conn, handle: 17}
	if p.Handle() != 17 {
		t.Errorf("Handle() = %d, want 17", p.Handle())
	}
}

func TestProxyReleaseSwallowsDriverError(t *testing.T) {
	mock := NewMockDriver()
	mock.QueueErr(errTestDriverFailure{})

	conn := newConnectionForTesting(mock)
	p := &Proxy{conn: conn, handle: 1}

	// Release logs and swallows a failed BC_RELEASE rather than panicking;
	// a caller releasing during teardown shouldn't have to check an error.
	p.Release()
	if !p.released {
		t.Error("expected released to be set even when the driver command failed")
	}
}

type errTestDriverFailure struct{}

func (errTestDriverFailure) Error() string { return "simulated driver failure" }
