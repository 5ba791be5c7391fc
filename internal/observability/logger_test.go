package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "inside span")
	span.End()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}

	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("got trace_id %v", rec["trace_id"])
	}
	if rec["service"] != "todohub" || rec["env"] != "prod" {
		t.Fatalf("missing service attrs: %v", rec)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, "prod").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be off outside dev")
	}

	newLogger(&buf, "dev").Debug("shown")
	if buf.Len() == 0 {
		t.Fatalf("debug should be on in dev")
	}
}

func TestLoggerAddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	ctx := ContextWithAttrs(context.Background(), "session_id", "sid-1")
	log.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["session_id"] != "sid-1" {
		t.Fatalf("got session_id %v", rec["session_id"])
	}
}

func TestContextAttrsReplaceSameKey(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	ctx := ContextWithAttrs(context.Background(), "session_id", "sid-1", "route", "/login")
	ctx = ContextWithAttrs(ctx, "session_id", "sid-2")
	log.InfoContext(ctx, "rotated")

	line := buf.String()
	if strings.Count(line, `"session_id"`) != 1 {
		t.Fatalf("session_id should appear once, got %s", line)
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["session_id"] != "sid-2" || rec["route"] != "/login" {
		t.Fatalf("unexpected attrs: %v", rec)
	}
}
