package debug

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func captureLogs(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLevel := logger.GetLevel()
	Configure(&buf, level)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(prevLevel)
	})
	return &buf
}

func TestLogRespectsLevel(t *testing.T) {
	buf := captureLogs(t, "info")

	Log("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}

	SetEnabled(true)
	Log("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("expected debug line, got %q", buf.String())
	}
}

func TestEventWritesFields(t *testing.T) {
	buf := captureLogs(t, "debug")

	Event("dispatch", Fields{"kind": "MOVE_CARD", "lane": "done"})
	out := buf.String()
	if !strings.Contains(out, "kind=MOVE_CARD") || !strings.Contains(out, "lane=done") {
		t.Fatalf("missing fields in %q", out)
	}
}

func TestErrorAlwaysLogged(t *testing.T) {
	buf := captureLogs(t, "warn")

	Error(errors.New("boom"), "export failed")
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestConfigureIgnoresUnknownLevel(t *testing.T) {
	captureLogs(t, "warn")
	Configure(nil, "loud")
	if Enabled() {
		t.Fatalf("unknown level should not enable debug")
	}
}
