package binder

import (
	"fmt"

	"github.com/go-binder/binder/internal/sysabi"
)

const activityManagerDescriptor = "android.app.IActivityManager"

// startActivityCode is the well-known IActivityManager.startActivity slot.
const startActivityCode = sysabi.FirstCallTransaction + 2

// Intent is a minimal marshalable subset of android.content.Intent: enough
// to name a component or action and carry the handful of fields
// StartActivity needs to frame a request.
type Intent struct {
	Action     string
	DataURI    string
	Type       string
	Package    string
	Flags      int32
	Categories []string
}

func (i Intent) write(p *OwnedParcel) {
	p.WriteString16(i.Action)
	writeOptionalString16(p, i.DataURI)
	writeOptionalString16(p, i.Type)
	p.WriteInt32(i.Flags)
	writeOptionalString16(p, i.Package)
	p.WriteInt32(0) // component: null
	p.WriteInt32(0) // source bounds: null
	p.WriteInt32(int32(len(i.Categories)))
	for _, c := range i.Categories {
		p.WriteString16(c)
	}
	p.WriteInt32(0) // selector intent: null
	p.WriteInt32(0) // extras bundle: null
}

func writeOptionalString16(p *OwnedParcel, s string) {
	if s == "" {
		p.WriteInt32(0)
		return
	}
	p.WriteInt32(1)
	p.WriteString16(s)
}

// ActivityManager is a thin client stub for android.app.IActivityManager,
// supporting the single StartActivity call named in the call surface.
type ActivityManager struct {
	proxy *Proxy
}

// NewActivityManager wraps an existing proxy (typically resolved via
// ServiceManager.GetService(ctx, "activity")) as an ActivityManager stub.
func NewActivityManager(proxy *Proxy) *ActivityManager {
	return &ActivityManager{proxy: proxy}
}

// StartActivity frames and sends an IActivityManager.startActivity call.
// caller and resultTo may be nil; a non-zero remote exception is reported
// as an *Error with ErrCodeIO rather than attempting to decode it further,
// since this stub doesn't model the Android exception-parceling format.
func (am *ActivityManager) StartActivity(
	caller *Proxy,
	callingPackage string,
	intent Intent,
	resolvedType string,
	resultTo *Proxy,
	resultWho string,
	requestCode int32,
	startFlags uint32,
) (int32, error) {
	req := NewOwnedParcel(am.proxy.conn)
	defer req.Release()

	req.WriteInterfaceToken(activityManagerDescriptor)
	req.WriteStrongBinder(caller)
	req.WriteString16(callingPackage)
	intent.write(req)
	writeOptionalString16(req, resolvedType)
	req.WriteStrongBinder(resultTo)
	req.WriteString16(resultWho)
	req.WriteInt32(requestCode)
	req.WriteInt32(int32(startFlags))
	req.WriteInt32(0) // profilerInfo: absent
	req.WriteInt32(0) // options bundle: absent

	reply, err := am.proxy.Transact(startActivityCode, req, FlagNone)
	if err != nil {
		return 0, err
	}
	if reply == nil {
		return 0, nil
	}
	defer reply.Release()

	exception, err := reply.ReadInt32()
	if err != nil {
		return 0, err
	}
	if exception != 0 {
		return 0, NewError("StartActivity", ErrCodeIO, fmt.Sprintf("remote exception code %d", exception), nil)
	}

	return reply.ReadInt32()
}
