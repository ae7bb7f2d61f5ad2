// Package driver implements the Binder driver session: opening /dev/binder,
// mapping the receive arena, and the single ioctl-based write_then_read
// primitive everything else is built on. The raw-syscall style here is
// grounded in the teacher project's internal/ctrl.Controller (which talks
// to /dev/ublk-control the same way) and its internal/uring.minimalRing
// (which issues raw io_uring_setup/io_uring_enter syscalls by hand rather
// than through a generated binding) — this module does the same for
// BINDER_VERSION/BINDER_WRITE_READ via golang.org/x/sys/unix.
package driver

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/go-binder/binder/internal/constants"
	"github.com/go-binder/binder/internal/drivererr"
	"github.com/go-binder/binder/internal/interfaces"
	"github.com/go-binder/binder/internal/sysabi"
)

// Session owns the driver file descriptor and the mmap'd receive arena.
// It implements interfaces.Driver.
type Session struct {
	fd      int
	arena   []byte
	logger  interfaces.Logger
	closed  bool
}

var _ interfaces.Driver = (*Session)(nil)

// Open opens devicePath (normally sysabi.DevicePath) read-write, checks the
// protocol version, and maps the receive arena. On any failure after the
// open(2) succeeds, the fd is closed before returning.
func Open(devicePath string, logger interfaces.Logger) (*Session, error) {
	fd, err := unix.Open(devicePath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devicePath, err)
	}

	version, err := queryVersion(fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if version != sysabi.CurrentProtocolVersion {
		unix.Close(fd)
		return nil, &ProtocolVersionError{Got: version, Want: sysabi.CurrentProtocolVersion}
	}

	arena, err := unix.Mmap(fd, 0, sysabi.BinderVMSize, unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_NORESERVE)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap binder arena: %w", err)
	}

	if logger != nil {
		logger.Debug("opened binder session", "fd", fd, "version", version, "arena_bytes", len(arena))
	}

	return &Session{fd: fd, arena: arena, logger: logger}, nil
}

// ProtocolVersionError is returned when the kernel driver's protocol
// version doesn't match what this module was built against.
type ProtocolVersionError struct {
	Got, Want int32
}

func (e *ProtocolVersionError) Error() string {
	return fmt.Sprintf("binder: protocol version mismatch: driver reports %d, library expects %d", e.Got, e.Want)
}

func queryVersion(fd int) (int32, error) {
	v := sysabi.BinderVersion{ProtocolVersion: sysabi.CurrentProtocolVersion}
	if err := ioctlPtr(fd, sysabi.IoctlVersion, unsafe.Pointer(&v)); err != nil {
		return 0, fmt.Errorf("BINDER_VERSION ioctl: %w", err)
	}
	return v.ProtocolVersion, nil
}

// WriteThenRead implements interfaces.Driver. It builds a binder_write_read
// struct from out/in, issues the BINDER_WRITE_READ ioctl (retrying on
// EINTR), and reports how much of each buffer the kernel actually touched.
func (s *Session) WriteThenRead(out []byte, in []byte) (writeConsumed int, readConsumed int, err error) {
	var bwr sysabi.BinderWriteRead
	if len(out) > 0 {
		bwr.WriteSize = uint64(len(out))
		bwr.WriteBuffer = uint64(uintptr(unsafe.Pointer(&out[0])))
	}
	if len(in) > 0 {
		bwr.ReadSize = uint64(len(in))
		bwr.ReadBuffer = uint64(uintptr(unsafe.Pointer(&in[0])))
	}

	for attempt := 0; ; attempt++ {
		ioctlErr := ioctlPtr(s.fd, sysabi.IoctlWriteRead, unsafe.Pointer(&bwr))
		if ioctlErr == nil {
			break
		}
		if ioctlErr == unix.EINTR && attempt < constants.MaxEINTRRetries {
			continue
		}
		if errno, ok := ioctlErr.(unix.Errno); ok {
			return 0, 0, drivererr.FromErrno(errno)
		}
		return 0, 0, ioctlErr
	}

	if len(out) > 0 && bwr.WriteConsumed != uint64(len(out)) {
		return 0, 0, fmt.Errorf("binder: partial write consumption (%d of %d bytes) is a protocol violation", bwr.WriteConsumed, len(out))
	}

	return int(bwr.WriteConsumed), int(bwr.ReadConsumed), nil
}

// Close unmaps the receive arena and closes the driver fd. Safe to call
// more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	if s.arena != nil {
		if err := unix.Munmap(s.arena); err != nil {
			errs = append(errs, err)
		}
		s.arena = nil
	}
	if err := unix.Close(s.fd); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("binder: close session: %v", errs)
	}
	return nil
}

func ioctlPtr(fd int, request uint32, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(request), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
