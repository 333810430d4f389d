// Package auth carries the signed-in identity: server-side sessions in Redis,
// the guards that enforce them, and password hashing.
//
// Session keys: the auth key should be 32 or 64 random bytes, the encryption
// key 16, 24 or 32. Generate them with `openssl rand -base64 32`.
package auth

import (
	"context"
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

// DefaultCookieName is used when SessionConfig.CookieName is empty.
const DefaultCookieName = "inventory_session"

const sessionKeyPrefix = "inventory:session:"

// SessionConfig is built once at startup and shared by the store and the
// SessionManager.
type SessionConfig struct {
	CookieName    string
	AuthKey       []byte
	EncryptionKey []byte
	MaxAge        int  // seconds
	Secure        bool // HTTPS-only cookie
}

func (c SessionConfig) cookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c SessionConfig) options() sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   c.MaxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RedisStore is a sessions.Store that keeps session values in Redis under
// inventory:session:<id> with a TTL of MaxAge. The cookie only carries the
// signed and encrypted id. Values must have string keys and JSON-encodable
// values.
type RedisStore struct {
	client *redis.Client
	codecs []securecookie.Codec
	cfg    SessionConfig
}

// NewSessionStore returns a store on client.
func NewSessionStore(client *redis.Client, cfg SessionConfig) *RedisStore {
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(cfg.AuthKey, cfg.EncryptionKey),
		cfg:    cfg,
	}
}

// Get returns the request's cached session, loading it on first use.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New resolves the session named by the request cookie. A missing or
// tampered cookie, or an id Redis no longer knows, yields a fresh session
// with IsNew set and no error. Redis failures are returned.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := s.cfg.options()
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	values, err := s.load(r.Context(), id)
	switch {
	case errors.Is(err, redis.Nil):
		return session, nil
	case err != nil:
		return session, err
	}
	session.ID = id
	session.Values = values
	session.IsNew = false
	return session, nil
}

// Save writes the session to Redis and sets the cookie. A negative MaxAge
// deletes the record and expires the cookie instead.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.Delete(r.Context(), session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.store(r.Context(), session.ID, session.Values, ttl); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("session: encode cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Delete removes the record for session id. Deleting an unknown id is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

func (s *RedisStore) store(ctx context.Context, id string, values map[any]any, ttl time.Duration) error {
	flat := make(map[string]any, len(values))
	for k, v := range values {
		key, ok := k.(string)
		if !ok {
			return fmt.Errorf("session: non-string key %v", k)
		}
		flat[key] = v
	}
	data, err := json.Marshal(flat)
	if err != nil {
		return fmt.Errorf("session: encode values: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("session: store: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (map[any]any, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		return nil, err
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("session: decode values: %w", err)
	}
	values := make(map[any]any, len(flat))
	for k, v := range flat {
		values[k] = v
	}
	return values, nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}
