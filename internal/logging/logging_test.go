package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New("warn", "json", &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "run_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the warning, got %q", buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if record["run_id"] != "abc" {
		t.Fatalf("unexpected record %v", record)
	}

	if _, err := New("loud", "text", &buf); err == nil {
		t.Fatal("expected invalid level to fail")
	}
	if _, err := New("info", "xml", &buf); err == nil {
		t.Fatal("expected invalid format to fail")
	}
}

func TestContextWithLogger(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Fatal("expected no logger on a bare context")
	}
	logger, _ := New("info", "text", &bytes.Buffer{})
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("expected the attached logger")
	}
}
