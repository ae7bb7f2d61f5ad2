package sysabi

import "encoding/binary"

// This module marshals every ABI struct by hand, field by field, rather than
// via reflection or unsafe casts: the structs are small, fixed, and this
// keeps the wire layout explicit at the call site, matching how the teacher
// project marshals its own fixed-size control structs.

// BinderWriteRead itself is never marshaled through this package: Session
// passes &bwr straight to the BINDER_WRITE_READ ioctl as a struct pointer
// (see internal/driver/session.go), since its layout already matches the
// kernel ABI with no variable-length tail to hand-encode.

// MarshalTransactionData encodes v into a freshly allocated byte slice.
func MarshalTransactionData(v *BinderTransactionData) []byte {
	buf := make([]byte, unsafe_sizeofBinderTransactionData)
	binary.NativeEndian.PutUint64(buf[0:8], v.Target)
	binary.NativeEndian.PutUint64(buf[8:16], v.Cookie)
	binary.NativeEndian.PutUint32(buf[16:20], v.Code)
	binary.NativeEndian.PutUint32(buf[20:24], v.Flags)
	binary.NativeEndian.PutUint32(buf[24:28], uint32(v.SenderPid))
	binary.NativeEndian.PutUint32(buf[28:32], v.SenderEuid)
	binary.NativeEndian.PutUint64(buf[32:40], v.DataSize)
	binary.NativeEndian.PutUint64(buf[40:48], v.OffsetsSize)
	binary.NativeEndian.PutUint64(buf[48:56], v.Buffer)
	binary.NativeEndian.PutUint64(buf[56:64], v.Offsets)
	return buf
}

// UnmarshalTransactionData decodes data into v.
func UnmarshalTransactionData(data []byte, v *BinderTransactionData) {
	v.Target = binary.NativeEndian.Uint64(data[0:8])
	v.Cookie = binary.NativeEndian.Uint64(data[8:16])
	v.Code = binary.NativeEndian.Uint32(data[16:20])
	v.Flags = binary.NativeEndian.Uint32(data[20:24])
	v.SenderPid = int32(binary.NativeEndian.Uint32(data[24:28]))
	v.SenderEuid = binary.NativeEndian.Uint32(data[28:32])
	v.DataSize = binary.NativeEndian.Uint64(data[32:40])
	v.OffsetsSize = binary.NativeEndian.Uint64(data[40:48])
	v.Buffer = binary.NativeEndian.Uint64(data[48:56])
	v.Offsets = binary.NativeEndian.Uint64(data[56:64])
}

const unsafe_sizeofBinderTransactionData = 64

// MarshalFlatBinderObject encodes v into a freshly allocated byte slice.
func MarshalFlatBinderObject(v *FlatBinderObject) []byte {
	buf := make([]byte, 24)
	binary.NativeEndian.PutUint32(buf[0:4], v.Type)
	binary.NativeEndian.PutUint32(buf[4:8], v.Flags)
	binary.NativeEndian.PutUint64(buf[8:16], v.Handle)
	binary.NativeEndian.PutUint64(buf[16:24], v.Cookie)
	return buf
}

// UnmarshalFlatBinderObject decodes data into v.
func UnmarshalFlatBinderObject(data []byte, v *FlatBinderObject) {
	v.Type = binary.NativeEndian.Uint32(data[0:4])
	v.Flags = binary.NativeEndian.Uint32(data[4:8])
	v.Handle = binary.NativeEndian.Uint64(data[8:16])
	v.Cookie = binary.NativeEndian.Uint64(data[16:24])
}

// UnmarshalPtrCookie decodes the payload of an IncRefs/Acquire/Release/DecRefs event.
func UnmarshalPtrCookie(data []byte, v *BinderPtrCookie) {
	v.Ptr = binary.NativeEndian.Uint64(data[0:8])
	v.Cookie = binary.NativeEndian.Uint64(data[8:16])
}

// UnmarshalPriPtrCookie decodes the payload of an AttemptAcquire event.
func UnmarshalPriPtrCookie(data []byte, v *BinderPriPtrCookie) {
	v.Priority = int32(binary.NativeEndian.Uint32(data[0:4]))
	v.Ptr = binary.NativeEndian.Uint64(data[8:16])
	v.Cookie = binary.NativeEndian.Uint64(data[16:24])
}
