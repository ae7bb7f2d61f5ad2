package driver

import (
	"strings"
	"testing"
)

func TestProtocolVersionErrorMessage(t *testing.T) {
	err := &ProtocolVersionError{Got: 7, Want: 8}
	msg := err.Error()
	if !strings.Contains(msg, "7") || !strings.Contains(msg, "8") {
		t.Errorf("expected both versions in error message, got %q", msg)
	}
}

// Open against a real /dev/binder node requires a Linux kernel with the
// Binder driver compiled in and is exercised by test/integration, which
// skips itself when the device is absent.
