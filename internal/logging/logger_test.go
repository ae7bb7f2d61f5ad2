package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	l.Debug("should not appear")
	l.Info("should not appear either")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got %q", buf.String())
	}

	l.Warn("visible warning", "handle", 3)
	if !strings.Contains(buf.String(), "visible warning") {
		t.Errorf("expected warning message in output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "\"handle\":3") {
		t.Errorf("expected structured field in output, got %q", buf.String())
	}
}

func TestDefaultLoggerSingleton(t *testing.T) {
	first := Default()
	second := Default()
	if first != second {
		t.Error("Default() should return the same instance across calls")
	}

	var buf bytes.Buffer
	custom := NewLogger(&Config{Level: LevelInfo, Output: &buf})
	SetDefault(custom)
	defer SetDefault(first)

	Info("via package function")
	if !strings.Contains(buf.String(), "via package function") {
		t.Errorf("expected message routed to custom default logger, got %q", buf.String())
	}
}

func TestWithAttachesField(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelDebug, Output: &buf})
	scoped := l.With("conn", "c1")
	scoped.Error("boom")

	if !strings.Contains(buf.String(), "\"conn\":\"c1\"") {
		t.Errorf("expected scoped field in output, got %q", buf.String())
	}
}
