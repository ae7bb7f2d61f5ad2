package drivererr

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestFromErrnoKnownMappings(t *testing.T) {
	cases := []struct {
		errno unix.Errno
		want  Code
	}{
		{unix.ENOMEM, NoMemory},
		{unix.ENOSYS, InvalidOperation},
		{unix.EINVAL, BadValue},
		{unix.ENOENT, NameNotFound},
		{unix.EPERM, PermissionDenied},
		{unix.ENODEV, NoInit},
		{unix.EEXIST, AlreadyExists},
		{unix.EPIPE, DeadObject},
		{unix.EOVERFLOW, BadIndex},
		{unix.ENODATA, NotEnoughData},
		{unix.EWOULDBLOCK, WouldBlock},
		{unix.ETIMEDOUT, TimedOut},
		{unix.EBADMSG, UnknownTransaction},
	}
	for _, c := range cases {
		got := FromErrno(c.errno)
		if got.Code != c.want {
			t.Errorf("FromErrno(%v).Code = %v, want %v", c.errno, got.Code, c.want)
		}
	}
}

func TestFromErrnoUnmappedBecomesUnknown(t *testing.T) {
	got := FromErrno(unix.EMLINK)
	if got.Code != UnknownError {
		t.Errorf("expected UnknownError for an unmapped errno, got %v", got.Code)
	}
	if got.RawCode != -int32(unix.EMLINK) {
		t.Errorf("RawCode = %d, want %d", got.RawCode, -int32(unix.EMLINK))
	}
}

func TestFromStatusCodeMapsNegativeErrno(t *testing.T) {
	got := FromStatusCode(-int32(unix.EPIPE))
	if got.Code != DeadObject {
		t.Errorf("FromStatusCode(-EPIPE).Code = %v, want %v", got.Code, DeadObject)
	}

	got = FromStatusCode(-int32(unix.ENOENT))
	if got.Code != NameNotFound {
		t.Errorf("FromStatusCode(-ENOENT).Code = %v, want %v", got.Code, NameNotFound)
	}
}

func TestFromStatusCodeRejectsNonNegative(t *testing.T) {
	got := FromStatusCode(7)
	if got.Code != UnknownError || got.RawCode != 7 {
		t.Errorf("FromStatusCode(7) = %+v, want UnknownError/7", got)
	}
}

func TestCodeStringCoversAllValues(t *testing.T) {
	for c := NoMemory; c <= UnknownError; c++ {
		if c.String() == "Code(?)" {
			t.Errorf("Code %d has no String() case", c)
		}
	}
}
