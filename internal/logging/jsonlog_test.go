package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf).With("store")
	log.Info("batch_committed", map[string]any{"rows": 3})
	log.Warn("record_issue", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var e struct {
		Level     string         `json:"level"`
		Component string         `json:"component"`
		Message   string         `json:"message"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(lines[0], &e); err != nil {
		t.Fatal(err)
	}
	if e.Level != "info" || e.Component != "store" || e.Message != "batch_committed" {
		t.Fatalf("bad entry: %+v", e)
	}
	if e.Fields["rows"] != float64(3) {
		t.Fatalf("fields: %v", e.Fields)
	}
}
