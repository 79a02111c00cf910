package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		logger, err := New("debug", format)
		if err != nil {
			t.Fatalf("New(debug, %q) error: %v", format, err)
		}
		if !logger.Core().Enabled(-1) {
			t.Errorf("New(debug, %q) should enable debug", format)
		}
	}

	if _, err := New("loud", "json"); err == nil {
		t.Error("New(loud) should reject the level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("New(xml) should reject the format")
	}
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parley.log")
	logger, err := ToFile("info", "json", path)
	if err != nil {
		t.Fatalf("ToFile() error: %v", err)
	}
	logger.Info("phase entered")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "phase entered") {
		t.Errorf("log file = %q, want message", data)
	}
}
