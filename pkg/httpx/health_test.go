package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/inventory/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func serveHealth(t *testing.T, checks httpx.HealthChecks) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	var body healthBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr, body
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	rr, body := serveHealth(t, httpx.HealthChecks{
		"database":  &stubChecker{},
		"redis":     &stubChecker{},
		"event_bus": &stubChecker{},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body.Status != "ok" {
		t.Errorf("status: got %q, want %q", body.Status, "ok")
	}
	for name, state := range body.Checks {
		if state != "ok" {
			t.Errorf("%s: got %q, want ok", name, state)
		}
	}
}

func TestHealthHandler_SingleDependencyDown(t *testing.T) {
	tests := []struct {
		name string
		down string
	}{
		{"database down", "database"},
		{"redis down", "redis"},
		{"event bus down", "event_bus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks := httpx.HealthChecks{
				"database":  &stubChecker{},
				"redis":     &stubChecker{},
				"event_bus": &stubChecker{},
			}
			checks[tt.down] = &stubChecker{err: errors.New("conn refused")}

			rr, body := serveHealth(t, checks)
			if rr.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d", rr.Code)
			}
			if body.Status != "degraded" || body.Checks[tt.down] != "unreachable" {
				t.Errorf("unexpected response: %+v", body)
			}
			for name, state := range body.Checks {
				if name != tt.down && state != "ok" {
					t.Errorf("%s should be ok, got %q", name, state)
				}
			}
		})
	}
}

func TestHealthHandler_NoChecks(t *testing.T) {
	rr, body := serveHealth(t, httpx.HealthChecks{})
	if rr.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected ok with no checks, got %d %+v", rr.Code, body)
	}
}

func TestHealthHandler_ContentType(t *testing.T) {
	rr, _ := serveHealth(t, httpx.HealthChecks{"database": &stubChecker{}})

	ct := rr.Header().Get("Content-Type")
	if ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json; charset=utf-8")
	}
}
