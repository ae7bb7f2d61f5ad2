package binder

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"unicode/utf16"

	"github.com/go-binder/binder/internal/bufpool"
	"github.com/go-binder/binder/internal/constants"
	"github.com/go-binder/binder/internal/drivererr"
	"github.com/go-binder/binder/internal/sysabi"
)

// padSize rounds n up to the next multiple of 4, the alignment every
// parcel primitive is padded to (spec §4.1's alignment rule).
func padSize(n int) int { return (n + 3) &^ 3 }

// fdState is the tri-state has_fds flag from the data model: unknown until
// the first object write/read decides it.
type fdState int

const (
	fdUnknown fdState = iota
	fdsPresent
	fdsAbsent
)

// reader holds the read-side state shared by OwnedParcel and
// BorrowedParcel: a byte buffer, a cursor, and the object-offsets table
// used to validate strong-binder reads.
type reader struct {
	data    []byte
	pos     int
	objects []uint32
	conn    *Connection // used to resolve Handle-typed flat objects into Proxies
}

func (r *reader) Position() int { return r.pos }
func (r *reader) Len() int      { return len(r.data) }

func (r *reader) readRaw(n int) ([]byte, error) {
	padded := padSize(n)
	if r.pos+n > len(r.data) {
		return nil, drivererr.New(drivererr.NotEnoughData)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += padded
	if r.pos > len(r.data) {
		r.pos = len(r.data)
	}
	return b, nil
}

// ReadInt32 reads a 4-byte native-endian signed integer.
func (r *reader) ReadInt32() (int32, error) {
	b, err := r.readRaw(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.NativeEndian.Uint32(b)), nil
}

// ReadUint32 reads a 4-byte native-endian unsigned integer.
func (r *reader) ReadUint32() (uint32, error) {
	b, err := r.readRaw(4)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(b), nil
}

// ReadBuf reads n opaque bytes, skipping alignment padding.
func (r *reader) ReadBuf(n int) ([]byte, error) {
	b, err := r.readRaw(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadString16 reads a Binder string16: an int32 character count c,
// followed by 2*(c+1) bytes of UTF-16LE (including the trailing NUL).
func (r *reader) ReadString16() (string, error) {
	charLen, err := r.ReadInt32()
	if err != nil {
		return "", err
	}
	if charLen < 0 {
		return "", drivererr.New(drivererr.BadValue)
	}
	raw, err := r.ReadBuf(int(charLen+1) * 2)
	if err != nil {
		return "", err
	}
	units := make([]uint16, charLen)
	for i := 0; i < int(charLen); i++ {
		units[i] = binary.LittleEndian.Uint16(raw[i*2 : i*2+2])
	}
	return string(utf16.Decode(units)), nil
}

// objectAtPosition reports whether pos is a recorded object-table offset.
func (r *reader) objectAtPosition(pos int) bool {
	for _, off := range r.objects {
		if int(off) == pos {
			return true
		}
		if int(off) > pos {
			break // objects is strictly increasing; no need to scan further
		}
	}
	return false
}

// ReadStrongBinder reads a flat_binder_object and resolves it to a Proxy.
// A legitimate null (zero cookie, zero handle, handle-typed) is returned
// as (nil, nil) without requiring an object-table entry.
func (r *reader) ReadStrongBinder() (*Proxy, error) {
	start := r.pos
	raw, err := r.readRaw(24)
	if err != nil {
		return nil, err
	}
	var obj sysabi.FlatBinderObject
	sysabi.UnmarshalFlatBinderObject(raw, &obj)

	isNull := obj.Cookie == 0 && obj.Handle == 0
	if !isNull && !r.objectAtPosition(start) {
		return nil, drivererr.New(drivererr.BadType)
	}

	switch obj.Type {
	case sysabi.TypeHandle:
		if isNull {
			return nil, nil
		}
		if r.conn == nil {
			return nil, drivererr.New(drivererr.BadType)
		}
		return r.conn.getStrongProxy(uint32(obj.Handle))
	case sysabi.TypeBinder:
		// Local objects shipped from the peer are out of scope (spec §4.1).
		return nil, drivererr.New(drivererr.BadType)
	default:
		return nil, drivererr.New(drivererr.BadType)
	}
}

// OwnedParcel is a growable, caller-owned parcel used to build outbound
// requests and driver-constructed replies (spec §4.1).
type OwnedParcel struct {
	reader
	objectsCap int
	hasFds     fdState
	allowFds   bool
	pooled     bool // true if data's backing array came from bufpool and should be returned on Release
}

// NewOwnedParcel creates an empty owned parcel bound to conn (used to
// resolve strong-binder reads of its own replies, and writes of proxies).
func NewOwnedParcel(conn *Connection) *OwnedParcel {
	allowFds := constants.DefaultAllowFds
	if conn != nil {
		allowFds = conn.opts.allowFdsDefault
	}
	buf := bufpool.Get(constants.OwnedParcelInitialCapacity)
	return &OwnedParcel{
		reader:     reader{data: buf, conn: conn, objects: make([]uint32, 0, constants.OwnedParcelInitialObjects)},
		allowFds:   allowFds,
		pooled:     true,
	}
}

// Clear resets the parcel to empty without releasing its backing array,
// so it can be reused across the ListServices enumeration loop (spec §6).
func (p *OwnedParcel) Clear() {
	p.data = p.data[:0]
	p.pos = 0
	p.objects = p.objects[:0]
	p.hasFds = fdUnknown
}

// Release returns the parcel's backing array to the buffer pool. Safe to
// call more than once; every call after the first is a no-op.
func (p *OwnedParcel) Release() {
	if p.pooled {
		bufpool.Put(p.data)
		p.pooled = false
	}
}

// Len returns the number of bytes written so far.
func (p *OwnedParcel) Len() int { return len(p.data) }

// Cap returns the backing array's capacity.
func (p *OwnedParcel) Cap() int { return cap(p.data) }

// SetPosition rewinds or advances the read cursor without touching data.
func (p *OwnedParcel) SetPosition(pos int) { p.pos = pos }

// SetDataLen is the raw length setter used after the driver has written
// into this parcel's backing storage directly (spec §4.1).
func (p *OwnedParcel) SetDataLen(n int) {
	if n > cap(p.data) {
		n = cap(p.data)
	}
	p.data = p.data[:n]
}

func (p *OwnedParcel) grow(n int) []byte {
	padded := padSize(n)
	start := len(p.data)
	if start+padded > cap(p.data) {
		// Matches the reference implementation's decision to treat a
		// fixed-capacity overflow as fatal rather than returning an error;
		// here the parcel is growable so this path only triggers when a
		// caller has also capped it via a non-pooled fixed slice.
		panic(fmt.Sprintf("binder: owned parcel write overflow (need %d more bytes, have %d of %d)", padded, start, cap(p.data)))
	}
	p.data = p.data[:start+padded]
	for i := start + n; i < start+padded; i++ {
		p.data[i] = 0
	}
	return p.data[start : start+n]
}

// WriteInt32 writes a 4-byte native-endian signed integer.
func (p *OwnedParcel) WriteInt32(v int32) { p.WriteUint32(uint32(v)) }

// WriteUint32 writes a 4-byte native-endian unsigned integer.
func (p *OwnedParcel) WriteUint32(v uint32) {
	binary.NativeEndian.PutUint32(p.grow(4), v)
}

// WritePointer writes a pointer-sized (8 byte, on this module's supported
// targets) native-endian value.
func (p *OwnedParcel) WritePointer(v uint64) {
	binary.NativeEndian.PutUint64(p.grow(8), v)
}

// WriteBuf writes n opaque bytes followed by zero padding to alignment.
func (p *OwnedParcel) WriteBuf(b []byte) {
	copy(p.grow(len(b)), b)
}

// WriteString16 writes a Binder string16.
func (p *OwnedParcel) WriteString16(s string) {
	units := utf16.Encode([]rune(s))
	p.WriteInt32(int32(len(units)))
	raw := make([]byte, (len(units)+1)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*2:i*2+2], u)
	}
	// trailing 0x0000 is already zero in the freshly allocated raw slice
	p.WriteBuf(raw)
}

// WriteInterfaceToken writes the strict-mode policy header (always 0 from
// a client) followed by the interface descriptor as a string16.
func (p *OwnedParcel) WriteInterfaceToken(descriptor string) {
	p.WriteInt32(0)
	p.WriteString16(descriptor)
}

// WriteStrongBinder writes a flat_binder_object referencing proxy's
// handle, or a null Handle-typed record when proxy is nil.
func (p *OwnedParcel) WriteStrongBinder(proxy *Proxy) {
	var obj sysabi.FlatBinderObject
	obj.Type = sysabi.TypeHandle
	obj.Flags = sysabi.FlagAcceptFds
	if proxy != nil {
		obj.Handle = uint64(proxy.handle)
	}
	p.writeObject(&obj)
}

func (p *OwnedParcel) writeObject(obj *sysabi.FlatBinderObject) {
	if obj.Type == sysabi.TypeFd {
		if !p.allowFds {
			panic(drivererr.New(drivererr.FdsNotAllowed))
		}
		p.hasFds = fdsPresent
	}
	offset := uint32(len(p.data))
	p.WriteBuf(sysabi.MarshalFlatBinderObject(obj))
	isNull := obj.Cookie == 0 && obj.Handle == 0
	if obj.Type != sysabi.TypeHandle || !isNull {
		p.objects = append(p.objects, offset)
	} else {
		// A null handle-typed record gets no table entry. Reading it back
		// still works: ReadStrongBinder returns a null record as nil
		// before it checks table membership.
	}
}

// BorrowedParcel wraps a fixed slice aliasing the driver's receive arena.
// Release must be called exactly once the caller is done reading it; it
// emits BC_FREE_BUFFER so the driver can reuse the arena region.
type BorrowedParcel struct {
	reader
	bufferPtr uint64
	released  bool
}

func newBorrowedParcel(conn *Connection, data []byte, objects []uint32, bufferPtr uint64) *BorrowedParcel {
	bp := &BorrowedParcel{
		reader:    reader{data: data, objects: objects, conn: conn},
		bufferPtr: bufferPtr,
	}
	// Last-resort safety net: a caller that forgets Release() would
	// otherwise leak this arena region for the life of the connection.
	// Release()'s own sync-free idempotency guard makes this safe to race
	// against an explicit Release() call from the caller.
	runtime.SetFinalizer(bp, func(b *BorrowedParcel) {
		if !b.released {
			if conn != nil && conn.logger != nil {
				conn.logger.Warn("borrowed parcel finalized without explicit Release", "buffer_ptr", bufferPtr)
			}
			b.Release()
		}
	})
	return bp
}

// Release emits BC_FREE_BUFFER for this parcel's originating kernel
// buffer. Idempotent: calling it more than once is a no-op after the
// first call, satisfying the "emits exactly one FreeBuffer" invariant
// even if a caller releases defensively.
func (b *BorrowedParcel) Release() {
	if b.released {
		return
	}
	b.released = true
	if b.conn != nil {
		b.conn.freeBuffer(b.bufferPtr)
	}
}
