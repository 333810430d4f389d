package pages

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/logger"
)

func TestSafeCallback(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/items?x=1", "/items?x=1"},
		{"//evil.example.com", "/"},
		{"/\\evil.example.com", "/"},
		{"https://evil.example.com", "/"},
		{"javascript:alert(1)", "/"},
		{"items", "/"},
		{"/\t/evil.example.com", "/"},
		{"/\n/evil.example.com", "/"},
		{"/\r/evil.example.com", "/"},
		{"/\x00/evil.example.com", "/"},
		{"/\x7f/evil.example.com", "/"},
		{"/items\n", "/"},
		{"/items/%2F%2Fevil", "/items/%2F%2Fevil"},
	}
	for _, tt := range tests {
		if got := SafeCallback(tt.in); got != tt.want {
			t.Errorf("SafeCallback(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newTestRouter(t *testing.T) (chi.Router, *auth.SessionManager) {
	t.Helper()
	cfg := auth.SessionConfig{
		AuthKey:       []byte("test-auth-key-must-be-32-bytes!!"),
		EncryptionKey: []byte("test-enc-key-must-be-32-bytes!!!"),
		MaxAge:        3600,
	}
	sm := auth.NewSessionManager(sessions.NewCookieStore(cfg.AuthKey, cfg.EncryptionKey), cfg, logger.Nop())
	r := chi.NewRouter()
	if err := Routes(r, sm, logger.Nop()); err != nil {
		t.Fatalf("routes: %v", err)
	}
	return r, sm
}

func get(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIndex_RedirectsToLoginWithCallback(t *testing.T) {
	r, _ := newTestRouter(t)
	w := get(r, "/?tab=all")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?callbackUrl=%2F%3Ftab%3Dall" {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestUnknownPath_RedirectsToLoginWithoutSession(t *testing.T) {
	r, _ := newTestRouter(t)
	w := get(r, "/nope")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?callbackUrl=%2Fnope" {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestUnknownPath_NotFoundForSignedInUser(t *testing.T) {
	r, sm := newTestRouter(t)
	rec := httptest.NewRecorder()
	id := auth.Identity{UserID: uuid.New(), Email: "ada@example.com", TenantID: uuid.New()}
	if err := sm.Start(rec, httptest.NewRequest(http.MethodPost, "/", nil), id); err != nil {
		t.Fatalf("start: %v", err)
	}
	if w := get(r, "/nope", rec.Result().Cookies()...); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUnknownAPIPath_IsJSONNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	w := get(r, "/api/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON body, got %q", ct)
	}
}

func TestPublicPagesRenderWithoutSession(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/login", "/register", "/static/app.js", "/static/app.css"} {
		if w := get(r, path); w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestLogin_EscapesCallback(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(r, "/login?callbackUrl=%2Fitems%22%3E%3Cscript%3E")
	body := w.Body.String()
	if strings.Contains(body, `"><script>`) {
		t.Fatalf("callback not escaped: %s", body)
	}

	w = get(r, "/login?callbackUrl=//evil.example.com")
	if !strings.Contains(w.Body.String(), `data-callback="/"`) {
		t.Fatalf("expected external callback to be replaced, got %s", w.Body.String())
	}
}

func TestIndex_RendersForSignedInUser(t *testing.T) {
	r, sm := newTestRouter(t)
	rec := httptest.NewRecorder()
	id := auth.Identity{UserID: uuid.New(), Email: "ada@example.com", TenantID: uuid.New()}
	if err := sm.Start(rec, httptest.NewRequest(http.MethodPost, "/", nil), id); err != nil {
		t.Fatalf("start: %v", err)
	}

	w := get(r, "/", rec.Result().Cookies()...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "ada@example.com") || !strings.Contains(body, `data-page="index"`) {
		t.Fatalf("unexpected page: %s", body)
	}
	if strings.Contains(body, "<script>") {
		t.Fatal("pages must not carry inline scripts")
	}
}
