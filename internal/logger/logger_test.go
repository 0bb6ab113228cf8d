package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Init("info", "text")

	Init("warn", "text")
	Info("hidden %d", 1)
	Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info must be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("Expected warn message, got %q", out)
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Init("info", "text")

	Init("verbose", "text")
	Debug("debug line")
	Info("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") || !strings.Contains(out, "info line") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Init("info", "text")

	Init("debug", "json")
	WithFields(map[string]interface{}{"country": "CAN"}).Info("selected")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "selected" || entry["country"] != "CAN" {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestLogrusSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Init("info", "text")

	Init("info", "text")
	Logrus().WithField("component", "http").Info("request line")
	if out := buf.String(); !strings.Contains(out, "request line") || !strings.Contains(out, "component=http") {
		t.Errorf("Expected the shared logger output, got %q", out)
	}
}
