//go:build integration

// Package integration exercises this module against a real Binder driver
// node. It skips itself entirely when /dev/binder isn't present, which is
// the normal case for a sandboxed build/test environment without a
// Binder-capable kernel.
package integration

import (
	"os"
	"testing"

	binder "github.com/go-binder/binder"
)

func skipUnlessBinderAvailable(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(binder.DefaultDevicePath); err != nil {
		t.Skipf("skipping: %s not available: %v", binder.DefaultDevicePath, err)
	}
}

func TestOpenAndPingContextObject(t *testing.T) {
	skipUnlessBinderAvailable(t)

	conn, err := binder.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	proxy, err := conn.ContextObject()
	if err != nil {
		t.Fatalf("ContextObject: %v", err)
	}
	if proxy != nil {
		proxy.Release()
	}
}

func TestServiceManagerListServices(t *testing.T) {
	skipUnlessBinderAvailable(t)

	conn, err := binder.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	sm, err := conn.ServiceManager()
	if err != nil {
		t.Fatalf("ServiceManager: %v", err)
	}
	if sm == nil {
		t.Skip("no context object registered on this domain")
	}

	if _, err := sm.ListServices(); err != nil {
		t.Fatalf("ListServices: %v", err)
	}
}
