package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func parseEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug level passes debug", level: "debug", wantDebug: true, wantInfo: true},
		{name: "info level drops debug", level: "info", wantDebug: false, wantInfo: true},
		{name: "warn level drops info", level: "warn", wantDebug: false, wantInfo: false},
		{name: "error level drops info", level: "error", wantDebug: false, wantInfo: false},
		{name: "invalid level defaults to info", level: "invalid", wantDebug: false, wantInfo: true},
		{name: "empty level defaults to info", level: "", wantDebug: false, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)

			log.Debug("debug message")
			gotDebug := buf.Len() > 0
			if gotDebug != tt.wantDebug {
				t.Errorf("Debug emitted = %v, want %v", gotDebug, tt.wantDebug)
			}

			buf.Reset()
			log.Info("info message")
			gotInfo := buf.Len() > 0
			if gotInfo != tt.wantInfo {
				t.Errorf("Info emitted = %v, want %v", gotInfo, tt.wantInfo)
			}
		})
	}
}

func TestLogger_KeyRenaming(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Warn("something odd")

	entry := parseEntry(t, &buf)
	if entry["message"] != "something odd" {
		t.Errorf("message = %v, want %q", entry["message"], "something odd")
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want %q", entry["level"], "warning")
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("expected timestamp key in log entry")
	}
	if _, ok := entry["msg"]; ok {
		t.Error("msg key should be renamed to message")
	}
}

func TestLogger_WithModule(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("generate").Info("test message")

	entry := parseEntry(t, &buf)
	if module, ok := entry["module"].(string); !ok || module != "generate" {
		t.Errorf("WithModule() module = %v, want %q", entry["module"], "generate")
	}
}

func TestLogger_WithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithRequestID("req-123").Info("test message")

	entry := parseEntry(t, &buf)
	if requestID, ok := entry["request_id"].(string); !ok || requestID != "req-123" {
		t.Errorf("WithRequestID() request_id = %v, want %q", entry["request_id"], "req-123")
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithError(errors.New("boom")).Error("operation failed")

	entry := parseEntry(t, &buf)
	if entry["error"] != "boom" {
		t.Errorf("WithError() error = %v, want %q", entry["error"], "boom")
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithFields(map[string]any{
		"subject": "Mathematics",
		"grade":   "Primary 4",
	}).Info("test message")

	entry := parseEntry(t, &buf)
	if entry["subject"] != "Mathematics" {
		t.Errorf("subject = %v, want %q", entry["subject"], "Mathematics")
	}
	if entry["grade"] != "Primary 4" {
		t.Errorf("grade = %v, want %q", entry["grade"], "Primary 4")
	}
}

func TestNewWithOptions_NoToken(t *testing.T) {
	log := NewWithOptions("info", Options{})
	if log == nil {
		t.Fatal("NewWithOptions() returned nil")
	}
	if err := log.Flush(context.Background()); err != nil {
		t.Errorf("Flush() without remote shipping = %v, want nil", err)
	}
}
