package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(jsonFormat bool) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Logger{
		output:     &buf,
		level:      DEBUG,
		component:  "test",
		jsonFormat: jsonFormat,
		fields:     make(map[string]interface{}),
	}, &buf
}

func TestLogKeyValueArgs(t *testing.T) {
	l, buf := newBufferLogger(true)

	l.Info("orders linked", "report_id", int64(7), "count", 3)

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if e.Message != "orders linked" {
		t.Errorf("message = %q, want %q", e.Message, "orders linked")
	}
	if e.Fields["report_id"] != float64(7) || e.Fields["count"] != float64(3) {
		t.Errorf("fields = %v, want report_id=7 count=3", e.Fields)
	}
}

func TestLogMessageWithPercentStaysVerbatim(t *testing.T) {
	l, buf := newBufferLogger(true)

	l.Warn("salary percent above 100%", "employee_id", int64(4))

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if e.Message != "salary percent above 100%" {
		t.Errorf("message = %q, want the literal text unformatted", e.Message)
	}
}

func TestLogErrorValuesFlattened(t *testing.T) {
	l, buf := newBufferLogger(true)

	l.Error("upload failed", "error", errors.New("connection refused"))

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if e.Fields["error"] != "connection refused" {
		t.Errorf("error field = %v, want the error string", e.Fields["error"])
	}
}

func TestLogDanglingArgSkipped(t *testing.T) {
	l, buf := newBufferLogger(true)

	l.Info("report saved", "report_id", int64(1), "orphan")

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if e.Fields["report_id"] != float64(1) {
		t.Errorf("fields = %v, want report_id=1", e.Fields)
	}
	if _, ok := e.Fields["orphan"]; ok {
		t.Error("dangling arg must not become a field")
	}
}

func TestLogLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(true)
	l.level = WARN

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "visible") {
		t.Errorf("output = %q, want only the WARN line", buf.String())
	}
}

func TestWriteTextFormat(t *testing.T) {
	l, buf := newBufferLogger(false)

	l.Info("shift closed", "shift_type", "morning")

	out := buf.String()
	if !strings.Contains(out, "[INFO ]") || !strings.Contains(out, "[test]") {
		t.Errorf("output = %q, want level and component tags", out)
	}
	if !strings.Contains(out, "shift_type=morning") {
		t.Errorf("output = %q, want key=value fields", out)
	}
}
