package binder

import (
	"encoding/binary"
	"testing"

	"github.com/go-binder/binder/internal/sysabi"
)

func TestStartActivitySuccess(t *testing.T) {
	reply := make([]byte, 8)
	binary.NativeEndian.PutUint32(reply[0:4], 0) // no exception
	binary.NativeEndian.PutUint32(reply[4:8], 3) // result code

	mock := NewMockDriver()
	mock.QueueReply(buildReplyFrame(reply, nil, 0))

	conn := newConnectionForTesting(mock)
	am := NewActivityManager(&Proxy{conn: conn, handle: 0})

	result, err := am.StartActivity(nil, "com.example.app", Intent{Action: "android.intent.action.MAIN"}, "", nil, "", -1, 0)
	if err != nil {
		t.Fatalf("StartActivity: %v", err)
	}
	if result != 3 {
		t.Errorf("result = %d, want 3", result)
	}

	out := mock.Writes[0]
	var sent sysabi.BinderTransactionData
	sysabi.UnmarshalTransactionData(out[4:4+64], &sent)
	if sent.Code != startActivityCode {
		t.Errorf("code = %d, want %d", sent.Code, startActivityCode)
	}
}

func TestStartActivityRemoteException(t *testing.T) {
	reply := make([]byte, 4)
	binary.NativeEndian.PutUint32(reply, 9) // non-zero exception code

	mock := NewMockDriver()
	mock.QueueReply(buildReplyFrame(reply, nil, 0))

	conn := newConnectionForTesting(mock)
	am := NewActivityManager(&Proxy{conn: conn, handle: 0})

	_, err := am.StartActivity(nil, "com.example.app", Intent{}, "", nil, "", 0, 0)
	if err == nil {
		t.Fatal("expected an error for a non-zero remote exception code")
	}
}
