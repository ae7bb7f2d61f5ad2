package sysabi

import "unsafe"

// BinderWriteRead mirrors struct binder_write_read. All fields are
// pointer/size width (8 bytes on the amd64/arm64 targets this module
// supports), matching the kernel's binder_size_t / binder_uintptr_t.
type BinderWriteRead struct {
	WriteSize     uint64
	WriteConsumed uint64
	WriteBuffer   uint64
	ReadSize      uint64
	ReadConsumed  uint64
	ReadBuffer    uint64
}

var _ [48]byte = [unsafe.Sizeof(BinderWriteRead{})]byte{}

const sizeofBinderWriteRead = unsafe.Sizeof(BinderWriteRead{})

// BinderVersion mirrors struct binder_version.
type BinderVersion struct {
	ProtocolVersion int32
}

var _ [4]byte = [unsafe.Sizeof(BinderVersion{})]byte{}

const sizeofBinderVersion = unsafe.Sizeof(BinderVersion{})

// BinderTransactionData mirrors struct binder_transaction_data. The
// target union (handle or local-object pointer) and the data union
// (inline buf or buffer+offsets pointers) are both represented by their
// widest member; typed accessors below pick the live interpretation.
type BinderTransactionData struct {
	Target      uint64 // low 32 bits hold the handle when TargetIsHandle; full width holds a local-object pointer otherwise
	Cookie      uint64
	Code        uint32
	Flags       uint32
	SenderPid   int32
	SenderEuid  uint32
	DataSize    uint64
	OffsetsSize uint64
	Buffer      uint64
	Offsets     uint64
}

var _ [64]byte = [unsafe.Sizeof(BinderTransactionData{})]byte{}

// TargetHandle returns the handle interpretation of Target.
func (t *BinderTransactionData) TargetHandle() uint32 { return uint32(t.Target) }

// SetTargetHandle sets Target to the handle interpretation.
func (t *BinderTransactionData) SetTargetHandle(h uint32) { t.Target = uint64(h) }

// FlatBinderObject mirrors struct flat_binder_object.
type FlatBinderObject struct {
	Type   uint32
	Flags  uint32
	Handle uint64 // union { binder_uintptr_t binder; __u32 handle; }
	Cookie uint64
}

var _ [24]byte = [unsafe.Sizeof(FlatBinderObject{})]byte{}

// BinderPtrCookie mirrors struct binder_ptr_cookie, the payload of
// IncRefs/Acquire/Release/DecRefs return-protocol events.
type BinderPtrCookie struct {
	Ptr    uint64
	Cookie uint64
}

var _ [16]byte = [unsafe.Sizeof(BinderPtrCookie{})]byte{}

// BinderPriPtrCookie mirrors struct binder_pri_ptr_cookie, the payload of
// the AttemptAcquire return-protocol event.
type BinderPriPtrCookie struct {
	Priority int32
	_        int32 // compiler padding to align Ptr on an 8-byte boundary
	Ptr      uint64
	Cookie   uint64
}

var _ [24]byte = [unsafe.Sizeof(BinderPriPtrCookie{})]byte{}
