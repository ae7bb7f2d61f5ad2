package bufpool

import "testing"

func TestGetReturnsRequestedCapacity(t *testing.T) {
	buf := Get(200)
	if cap(buf) < 200 {
		t.Fatalf("Get(200) capacity = %d, want >= 200", cap(buf))
	}
	if len(buf) != 0 {
		t.Fatalf("Get should return a zero-length slice, got len=%d", len(buf))
	}
}

func TestGetBeyondLargestBucketAllocatesDirectly(t *testing.T) {
	buf := Get(1 << 20)
	if cap(buf) < 1<<20 {
		t.Fatalf("Get(1<<20) capacity = %d, want >= %d", cap(buf), 1<<20)
	}
}

func TestPutAndReuse(t *testing.T) {
	buf := Get(256)
	buf = append(buf, []byte("hello")...)
	Put(buf)

	reused := Get(256)
	if len(reused) != 0 {
		t.Fatalf("reused buffer should come back zero-length, got len=%d", len(reused))
	}
	if cap(reused) < 256 {
		t.Fatalf("reused buffer capacity = %d, want >= 256", cap(reused))
	}
}

func TestPutMismatchedCapacityIsDropped(t *testing.T) {
	// A capacity that doesn't match a bucket exactly must not corrupt a
	// bucket's invariant; Put should simply decline to pool it.
	odd := make([]byte, 0, 300)
	Put(odd) // must not panic
}
