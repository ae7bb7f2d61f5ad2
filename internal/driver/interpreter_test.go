package driver

import (
	"encoding/binary"
	"testing"

	"github.com/go-binder/binder/internal/sysabi"
)

func putTag(buf []byte, tag int32) []byte {
	tmp := make([]byte, 4)
	binary.NativeEndian.PutUint32(tmp, uint32(tag))
	return append(buf, tmp...)
}

func TestParseOneExhausted(t *testing.T) {
	pos := 0
	_, err := ParseOne(nil, &pos)
	if err != ErrExhausted {
		t.Fatalf("expected ErrExhausted on empty buffer, got %v", err)
	}
}

func TestParseOneSimpleTags(t *testing.T) {
	buf := putTag(nil, sysabi.BROk)
	buf = putTag(buf, sysabi.BRTransactionComplete)
	buf = putTag(buf, sysabi.BRNoop)

	pos := 0
	ev, err := ParseOne(buf, &pos)
	if err != nil || ev.Kind != EventOk {
		t.Fatalf("frame 1: got %+v, err=%v", ev, err)
	}
	ev, err = ParseOne(buf, &pos)
	if err != nil || ev.Kind != EventTransactionComplete {
		t.Fatalf("frame 2: got %+v, err=%v", ev, err)
	}
	ev, err = ParseOne(buf, &pos)
	if err != nil || ev.Kind != EventNoop {
		t.Fatalf("frame 3: got %+v, err=%v", ev, err)
	}
	if _, err := ParseOne(buf, &pos); err != ErrExhausted {
		t.Fatalf("expected exhaustion after 3 frames, got %v", err)
	}
}

func TestParseOneUnknownTagIsFatal(t *testing.T) {
	buf := putTag(nil, 0x7fffffff)
	pos := 0
	_, err := ParseOne(buf, &pos)
	if _, ok := err.(ErrUnknownTag); !ok {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestParseOneReplyDecodesTransactionData(t *testing.T) {
	var txn sysabi.BinderTransactionData
	txn.SetTargetHandle(7)
	txn.Code = 42
	txn.DataSize = 16
	body := sysabi.MarshalTransactionData(&txn)

	buf := putTag(nil, sysabi.BRReply)
	buf = append(buf, body...)

	pos := 0
	ev, err := ParseOne(buf, &pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != EventReply {
		t.Fatalf("expected EventReply, got %v", ev.Kind)
	}
	if ev.Transaction.TargetHandle() != 7 || ev.Transaction.Code != 42 || ev.Transaction.DataSize != 16 {
		t.Fatalf("decoded transaction mismatch: %+v", ev.Transaction)
	}
	if pos != len(buf) {
		t.Fatalf("expected cursor to consume entire buffer, pos=%d len=%d", pos, len(buf))
	}
}
