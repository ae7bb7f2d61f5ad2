// Package sysabi holds the stable, opaque definitions of the Linux Binder
// driver ABI: ioctl numbers, command/return protocol tags, and the on-wire
// kernel structs. Nothing here is Binder-client policy; it is the contract
// the kernel driver itself defines.
package sysabi

// DevicePath is the default Binder driver node. Binder, hwbinder and
// vndbinder all speak the same ioctl protocol against different nodes.
const DevicePath = "/dev/binder"

// BinderVMSize is the size of the client's memory-mapped receive arena:
// 1 MiB minus two pages, matching the reference implementation and every
// known Binder client.
const BinderVMSize = (1024 * 1024) - (4096 * 2)

// CurrentProtocolVersion is the Binder wire protocol version this module
// was written against. Open() fails with a protocol-mismatch error if the
// kernel reports anything else.
const CurrentProtocolVersion = 8

// FirstCallTransaction is the first transaction code reserved for
// service-specific (non meta-transaction) codes.
const FirstCallTransaction = 1

// ioctl encoding, matching Linux's asm-generic/ioctl.h _IOC() macro.
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14
	iocDirBits  = 2

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

// ioc matches the kernel's _IOC(dir, type, nr, size) macro.
func ioc(dir, typ, nr, size uint32) uint32 {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

// Binder ioctl numbers. Sizes are computed from the structs below so the
// encoded number tracks the struct definitions if they ever change.
var (
	IoctlWriteRead = ioc(iocWrite|iocRead, 'b', 1, uint32(sizeofBinderWriteRead))
	IoctlVersion   = ioc(iocWrite|iocRead, 'b', 9, uint32(sizeofBinderVersion))
)

// Command protocol tags (BC_*), sent from client to driver.
const (
	BCTransaction      uint32 = 0
	BCReply            uint32 = 1
	BCAcquireResult    uint32 = 2
	BCFreeBuffer       uint32 = 3
	BCIncrefs          uint32 = 4
	BCAcquire          uint32 = 5
	BCRelease          uint32 = 6
	BCDecrefs          uint32 = 7
	BCIncrefsDone      uint32 = 8
	BCAcquireDone      uint32 = 9
	BCAttemptAcquire   uint32 = 10
	BCRegisterLooper   uint32 = 11
	BCEnterLooper      uint32 = 12
	BCExitLooper       uint32 = 13
	BCRequestDeathNotification    uint32 = 14
	BCClearDeathNotification      uint32 = 15
	BCDeadBinderDone              uint32 = 16
)

// Return protocol tags (BR_*), sent from driver to client.
const (
	BROk                          int32 = 1
	BRError                       int32 = 0 // negative errno follows; tag value itself is unused as a sentinel
	BRTransaction                 int32 = 2
	BRReply                       int32 = 3
	BRAcquireResult               int32 = 4
	BRDeadReply                   int32 = 5
	BRTransactionComplete         int32 = 6
	BRIncrefs                     int32 = 7
	BRAcquire                     int32 = 8
	BRRelease                     int32 = 9
	BRDecrefs                     int32 = 10
	BRAttemptAcquire              int32 = 11
	BRNoop                        int32 = 12
	BRSpawnLooper                 int32 = 13
	BRFinished                    int32 = 14
	BRDeadBinder                  int32 = 15
	BRClearDeathNotificationDone  int32 = 16
	BRFailedReply                 int32 = 17
)

// Flat binder object type tags, each packChars(c1, c2, c3, 0x85) written
// out as a constant expression.
const (
	TypeBinder     uint32 = 's'<<24 | 'b'<<16 | '*'<<8 | 0x85
	TypeWeakBinder uint32 = 'w'<<24 | 'b'<<16 | '*'<<8 | 0x85
	TypeHandle     uint32 = 's'<<24 | 'h'<<16 | '*'<<8 | 0x85
	TypeWeakHandle uint32 = 'w'<<24 | 'h'<<16 | '*'<<8 | 0x85
	TypeFd         uint32 = 'f'<<24 | 'd'<<16 | '*'<<8 | 0x85
)

func packChars(c1, c2, c3, c4 byte) uint32 {
	return uint32(c1)<<24 | uint32(c2)<<16 | uint32(c3)<<8 | uint32(c4)
}

// Transaction flags.
const (
	FlagAcceptFds uint32 = 0x10
	FlagOneWay    uint32 = 0x01
	// FlagStatusCode is the driver's TF_STATUS_CODE bit: set on a reply
	// whose payload is a single int32 status code rather than a normal
	// reply parcel.
	FlagStatusCode uint32 = 0x08
)

// Meta-transaction FourCC codes (packed 4-character tags, the same
// packChars layout as above), used for the well-known transactions every
// Binder object answers regardless of its interface descriptor.
const (
	PingTransaction        uint32 = '_'<<24 | 'P'<<16 | 'N'<<8 | 'G'
	InterfaceTransaction   uint32 = '_'<<24 | 'N'<<16 | 'T'<<8 | 'F'
	DumpTransaction        uint32 = '_'<<24 | 'D'<<16 | 'M'<<8 | 'P'
	ShellCommandTransaction uint32 = '_'<<24 | 'C'<<16 | 'M'<<8 | 'D'
	SyspropsTransaction    uint32 = '_'<<24 | 'S'<<16 | 'P'<<8 | 'R'
)
