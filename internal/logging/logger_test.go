package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.WarnLevel)
	l.Info("hidden")
	l.Warn("shown", "bank", "CBE")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "bank=CBE") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cxdash.log")
	if err := Init(path, log.DebugLevel); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Debug("scope changed", "scope", "All")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "scope changed") {
		t.Errorf("log file = %q", data)
	}
	Logger = nil
}

func TestHelpersNoopWithoutInit(t *testing.T) {
	Logger = nil
	Info("x")
	Warn("x")
	Error("x")
	Debug("x")
	Close()
}
