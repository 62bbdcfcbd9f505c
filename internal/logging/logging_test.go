package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/internal/config"
)

func TestNewWritesPlainTextToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "info"}, WithWriter(&buf))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer logger.Close()

	logger.Debug("hidden")
	logger.Info("Form saved", "key", "saved_form")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record logged at info level: %q", out)
	}
	if !strings.Contains(out, "Form saved") || !strings.Contains(out, "key=saved_form") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes, got %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "error"}, WithWriter(&buf))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("before")
	logger.SetLevel(slog.LevelDebug)
	logger.Debug("after")

	if strings.Contains(buf.String(), "before") || !strings.Contains(buf.String(), "after") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formbuilder.log")
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, WithWriter(&buf))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.With("component", "storage").Warn("Failed to save form", "attempts", 3)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("decode record %q: %v", data, err)
	}
	if record["msg"] != "Failed to save form" || record["component"] != "storage" || record["attempts"] != float64(3) {
		t.Fatalf("unexpected record %v", record)
	}
	if !strings.Contains(buf.String(), "Failed to save form") {
		t.Fatalf("terminal handler missed the record")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "chatty"}); err == nil {
		t.Fatalf("expected error")
	}
}
