package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingWriterRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	writer, err := newRotatingWriter(path, 1, 3, 30)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer writer.Close()
	// Shrink the limit so two writes force a rotation.
	writer.limit = 16

	payload := bytes.Repeat([]byte("a"), 12)
	if _, err := writer.Write(payload); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := writer.Write(payload); err != nil {
		t.Fatalf("second write: %v", err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected rotated backup: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat active file: %v", err)
	}
	if info.Size() != int64(len(payload)) {
		t.Fatalf("active file should only hold the last write, got %d bytes", info.Size())
	}
}

func TestRotatingWriterRejectsEmptyPath(t *testing.T) {
	if _, err := newRotatingWriter("", 1, 1, 1); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
