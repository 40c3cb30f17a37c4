package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kapu/painpoint-scout-go/internal/config"
)

func TestNewLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LoggingConfig{
		LogDir:     dir,
		Level:      "info",
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Compress:   true,
	}
	_, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(dir, defaultLogFileName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file, got error: %v", err)
	}
}

func TestNewLoggerRejectsInvalidRotation(t *testing.T) {
	cfg := config.LoggingConfig{
		LogDir:     t.TempDir(),
		Level:      "info",
		MaxSizeMB:  0,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}
	if _, err := NewLogger(cfg); err == nil {
		t.Fatalf("expected error for invalid rotation config")
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatalf("unexpected debug level")
	}
	if parseLevel("unknown") != slog.LevelInfo {
		t.Fatalf("expected info fallback")
	}
}
