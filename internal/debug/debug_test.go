package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogDisabledByDefault(t *testing.T) {
	Close()
	if IsEnabled() {
		t.Fatal("debug logging should start disabled")
	}
	// Must not panic without a sink.
	Log("nothing %d", 1)
}

func TestEnableWriter(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Close()

	Log("bridge failed: %s", "boom")

	out := buf.String()
	if !strings.Contains(out, "bridge failed: boom") {
		t.Errorf("Log output = %q, want message", out)
	}
	if !strings.HasPrefix(out, "[") {
		t.Errorf("Log output = %q, want timestamp prefix", out)
	}
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable() error: %v", err)
	}

	done := Timed("listing")
	done()
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	for _, want := range []string{"Debug logging enabled", "listing started", "listing completed in"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q:\n%s", want, data)
		}
	}
}

func TestTimedDisabledIsNoop(t *testing.T) {
	Close()
	done := Timed("noop")
	done()
}
