package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ghuser/inventory/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	return NewWithWriter(&config.Config{LogLevel: "debug", ServiceName: "inventory", Environment: "testing"}, buf)
}

// lastEntry decodes the last JSON line written to buf.
func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("parse log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriter_ServiceFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{LogLevel: "warn", ServiceName: "inventory", Environment: "testing"}, &buf)

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record written at warn level: %s", buf.String())
	}

	log.Warn("kept", "item_id", "123")
	entry := lastEntry(t, &buf)
	if entry["service"] != "inventory" || entry["env"] != "testing" {
		t.Errorf("missing service fields: %v", entry)
	}
	if entry["item_id"] != "123" {
		t.Errorf("item_id = %v", entry["item_id"])
	}
}

func TestContextFields(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	t.Run("none without span or attrs", func(t *testing.T) {
		log.InfoContext(context.Background(), "plain")
		entry := lastEntry(t, &buf)
		for _, k := range []string{"trace_id", "span_id", "tenant_id"} {
			if _, ok := entry[k]; ok {
				t.Errorf("unexpected %s", k)
			}
		}
	})

	t.Run("trace ids from span", func(t *testing.T) {
		ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
		defer span.End()
		log.InfoContext(ctx, "parent")
		parent := lastEntry(t, &buf)

		ctx, child := tp.Tracer("test").Start(ctx, "child")
		defer child.End()
		log.InfoContext(ctx, "child")
		got := lastEntry(t, &buf)

		if parent["trace_id"] != span.SpanContext().TraceID().String() {
			t.Errorf("trace_id = %v", parent["trace_id"])
		}
		if got["trace_id"] != parent["trace_id"] {
			t.Errorf("child trace_id %v != parent %v", got["trace_id"], parent["trace_id"])
		}
		if got["span_id"] == parent["span_id"] {
			t.Error("expected different span_id for child")
		}
	})

	t.Run("bound attrs accumulate", func(t *testing.T) {
		ctx := WithAttrs(context.Background(), "tenant_id", "t-1")
		ctx = WithAttrs(ctx, "user_id", "u-1")
		log.WarnContext(ctx, "scoped")
		entry := lastEntry(t, &buf)
		if entry["tenant_id"] != "t-1" || entry["user_id"] != "u-1" {
			t.Errorf("bound attrs missing: %v", entry)
		}
	})

	t.Run("outer context unaffected", func(t *testing.T) {
		outer := WithAttrs(context.Background(), "tenant_id", "t-1")
		_ = WithAttrs(outer, "user_id", "u-1")
		log.InfoContext(outer, "outer")
		if _, ok := lastEntry(t, &buf)["user_id"]; ok {
			t.Error("inner attrs leaked into outer context")
		}
	})
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AccessLog(log))
	r.Get("/api/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Item not found"}`))
	})
	r.Get("/api/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items/42", http.NoBody))
	entry := lastEntry(t, &buf)
	if entry["route"] != "/api/items/{id}" || entry["path"] != "/api/items/42" {
		t.Errorf("route/path = %v / %v", entry["route"], entry["path"])
	}
	if entry["status"] != float64(http.StatusNotFound) || entry["level"] != "INFO" {
		t.Errorf("status/level = %v / %v", entry["status"], entry["level"])
	}
	if entry["bytes"] != float64(len(`{"message":"Item not found"}`)) {
		t.Errorf("bytes = %v", entry["bytes"])
	}
	if _, ok := entry["request_id"]; !ok {
		t.Error("expected request_id")
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/boom", http.NoBody))
	if got := lastEntry(t, &buf)["level"]; got != "ERROR" {
		t.Errorf("5xx level = %v, want ERROR", got)
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(newBufferLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("secret detail")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret detail") {
		t.Fatal("panic value reached the client")
	}
	if got := lastEntry(t, &buf)["msg"]; got != "panic recovered" {
		t.Errorf("msg = %v", got)
	}
}

func TestRecovery_RepanicsAbortHandler(t *testing.T) {
	h := Recovery(Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if rv := recover(); rv != http.ErrAbortHandler { //nolint:errorlint
			t.Fatalf("recovered %v, want http.ErrAbortHandler", rv)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
}
