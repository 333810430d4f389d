package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/inventory/pkg/logger"
)

func TestNewSessionID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := newSessionID()
		if len(id) != 52 {
			t.Fatalf("unexpected id length %d", len(id))
		}
		if seen[id] {
			t.Fatal("duplicate session id")
		}
		seen[id] = true
	}
}

// Integration test, skipped unless REDIS_URL is set.
func TestRedisStoreIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close() //nolint:errcheck

	store := NewSessionStore(client, testSessionConfig)
	sm := NewSessionManager(store, testSessionConfig, logger.Nop())
	id := newIdentity()

	w := httptest.NewRecorder()
	if err := sm.Start(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), id); err != nil {
		t.Fatalf("start: %v", err)
	}
	cookies := w.Result().Cookies()

	withCookies := func(path string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			r.AddCookie(c)
		}
		return r
	}

	got, err := sm.Identity(withCookies("/api/items"))
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if got != id {
		t.Fatalf("identity = %+v, want %+v", got, id)
	}

	session, err := store.Get(withCookies("/"), DefaultCookieName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ttl := client.TTL(context.Background(), sessionKeyPrefix+session.ID).Val(); ttl <= 0 {
		t.Errorf("expected a TTL on the session key, got %v", ttl)
	}

	if err := sm.End(httptest.NewRecorder(), withCookies("/api/auth/logout")); err != nil {
		t.Fatalf("end: %v", err)
	}
	if n := client.Exists(context.Background(), sessionKeyPrefix+session.ID).Val(); n != 0 {
		t.Error("session record survived logout")
	}
	if _, err := sm.Identity(withCookies("/api/items")); err == nil {
		t.Error("old cookie still resolves after logout")
	}
}
