package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewLoggerJSONLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %s", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["key"] != "value" {
		t.Errorf("entry = %v, want msg shown and key value", entry)
	}
}

func TestNewLoggerTextDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "unknown", "text")

	logger.Debug("debug line")
	logger.Info("info line")

	if strings.Contains(buf.String(), "debug line") {
		t.Errorf("debug output with default level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "msg=\"info line\"") {
		t.Errorf("text output = %s, want info line", buf.String())
	}
}

func TestLogOperationClientErrorAtDebug(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(NewLogger(&buf, "info", "text"))
	defer slog.SetDefault(previous)

	LogOperation("GetReport", time.Now(), kindedError{kind: "validation", msg: "год вне диапазона"})
	if buf.Len() != 0 {
		t.Errorf("client error logged at info level: %s", buf.String())
	}

	LogOperation("GetReport", time.Now(), errors.New("connection refused"))
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("internal error output = %s, want ERROR level", buf.String())
	}
}
