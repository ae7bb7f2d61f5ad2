package binder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.devicePath == "" {
		t.Error("expected a non-empty default device path")
	}
	if !o.allowFdsDefault {
		t.Error("expected allowFdsDefault to default to true")
	}
}

func TestWithDevicePathOverrides(t *testing.T) {
	o := defaultOptions()
	WithDevicePath("/dev/hwbinder")(&o)
	if o.devicePath != "/dev/hwbinder" {
		t.Errorf("devicePath = %q, want /dev/hwbinder", o.devicePath)
	}
}

func TestLoadOptionsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binder.yaml")
	content := "device_path: /dev/hwbinder\nallow_fds: false\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opt, err := LoadOptionsFile(path)
	if err != nil {
		t.Fatalf("LoadOptionsFile: %v", err)
	}

	o := defaultOptions()
	opt(&o)
	if o.devicePath != "/dev/hwbinder" {
		t.Errorf("devicePath = %q, want /dev/hwbinder", o.devicePath)
	}
	if o.allowFdsDefault {
		t.Error("expected allow_fds: false to flip allowFdsDefault to false")
	}
}

func TestLoadOptionsFileAppliesLogLevelAndMetrics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binder.yaml")
	content := "log_level: warn\nmetrics_enabled: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opt, err := LoadOptionsFile(path)
	if err != nil {
		t.Fatalf("LoadOptionsFile: %v", err)
	}

	o := defaultOptions()
	opt(&o)
	if o.logger == nil {
		t.Error("expected log_level: warn to configure a logger")
	}
	if o.observer == nil {
		t.Error("expected metrics_enabled: true to configure an observer")
	}
}

func TestLoadOptionsFileRejectsInvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binder.yaml")
	content := "log_level: not-a-level\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadOptionsFile(path); err == nil {
		t.Error("expected an invalid log_level to fail validation")
	}
}
