package binder

import (
	"encoding/binary"
	"testing"

	"github.com/go-binder/binder/internal/sysabi"
)

func TestGetStrongProxyDedupesLiveHandle(t *testing.T) {
	mock := NewMockDriver()
	mock.QueueReply(appendTag(nil, sysabi.BROk)) // BC_ACQUIRE ack

	conn := newConnectionForTesting(mock)

	p1, err := conn.getStrongProxy(7)
	if err != nil {
		t.Fatalf("getStrongProxy: %v", err)
	}
	p2, err := conn.getStrongProxy(7)
	if err != nil {
		t.Fatalf("getStrongProxy: %v", err)
	}
	if p1 != p2 {
		t.Error("expected the same live handle to resolve to the identical *Proxy")
	}
	if len(mock.Writes) != 1 {
		t.Errorf("expected exactly one BC_ACQUIRE, got %d writes", len(mock.Writes))
	}
}

func TestGetStrongProxyIssuesAcquire(t *testing.T) {
	mock := NewMockDriver()
	mock.QueueReply(appendTag(nil, sysabi.BROk))

	conn := newConnectionForTesting(mock)
	if _, err := conn.getStrongProxy(3); err != nil {
		t.Fatalf("getStrongProxy: %v", err)
	}

	if len(mock.Writes) != 1 {
		t.Fatalf("expected one write, got %d", len(mock.Writes))
	}
	out := mock.Writes[0]
	if binary.NativeEndian.Uint32(out[0:4]) != sysabi.BCAcquire {
		t.Error("expected BC_ACQUIRE")
	}
	if binary.NativeEndian.Uint32(out[4:8]) != 3 {
		t.Error("expected handle 3 in the BC_ACQUIRE payload")
	}
}

func TestReleaseProxyIssuesRelease(t *testing.T) {
	mock := NewMockDriver()
	mock.QueueReply(appendTag(nil, sysabi.BROk))

	conn := newConnectionForTesting(mock)
	proxy := &Proxy{conn: conn, handle: 9}
	proxy.Release()

	if len(mock.Writes) != 1 {
		t.Fatalf("expected one write, got %d", len(mock.Writes))
	}
	out := mock.Writes[0]
	if binary.NativeEndian.Uint32(out[0:4]) != sysabi.BCRelease {
		t.Error("expected BC_RELEASE")
	}

	// A second Release must be a no-op: no further write.
	proxy.Release()
	if len(mock.Writes) != 1 {
		t.Error("expected Release to be idempotent")
	}
}

func TestReleaseEvictsRegistryEntry(t *testing.T) {
	mock := NewMockDriver()
	mock.QueueReply(appendTag(nil, sysabi.BROk)) // BC_ACQUIRE ack
	mock.QueueReply(appendTag(nil, sysabi.BROk)) // BC_RELEASE ack
	mock.QueueReply(appendTag(nil, sysabi.BROk)) // second BC_ACQUIRE ack

	conn := newConnectionForTesting(mock)

	p1, err := conn.getStrongProxy(4)
	if err != nil {
		t.Fatalf("getStrongProxy: %v", err)
	}
	p1.Release()

	p2, err := conn.getStrongProxy(4)
	if err != nil {
		t.Fatalf("getStrongProxy: %v", err)
	}
	if p1 == p2 {
		t.Error("expected a released proxy's registry entry to be evicted, not handed back")
	}
	if len(mock.Writes) != 3 {
		t.Errorf("expected acquire, release, acquire (3 writes), got %d", len(mock.Writes))
	}
}
