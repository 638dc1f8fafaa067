package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kudos/internal/logging"
)

func TestNewWritesConsoleFormat(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "kudos.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	component := logging.NewComponentLogger(logger, "delivery")
	component.Info("showing notification", logging.String(logging.FieldNotificationID, "n-1"))
	component.Debug("suppressed")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "INFO delivery: showing notification") {
		t.Fatalf("console line missing component prefix: %q", out)
	}
	if !strings.Contains(out, "notification_id=n-1") {
		t.Fatalf("console line missing attr: %q", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Fatalf("debug record should be filtered at info level: %q", out)
	}
}

func TestNewWritesJSONFormat(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "kudos.log")

	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("reload complete", logging.Int("pending", 3))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record["msg"] != "reload complete" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if record["pending"] != float64(3) {
		t.Fatalf("unexpected pending attr: %v", record["pending"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.WarnWithContext(logger, "reload failed", "store_reload_failed",
		logging.Error(errors.New("connection refused")))

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record[logging.FieldEventType] != "store_reload_failed" {
		t.Fatalf("event_type not injected: %v", record)
	}
	if record[logging.FieldErrorHint] == "" || record[logging.FieldErrorHint] == nil {
		t.Fatalf("error_hint not injected: %v", record)
	}
	if record[logging.FieldImpact] == "" || record[logging.FieldImpact] == nil {
		t.Fatalf("impact not injected: %v", record)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should report all levels disabled")
	}
}
