package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/inventory/pkg/logger"
)

const (
	sessionUserIDKey   = "user_id"
	sessionEmailKey    = "email"
	sessionTenantIDKey = "tenant_id"
)

// ErrNoSession is returned when the request carries no usable session.
var ErrNoSession = errors.New("no valid session")

// sessionDeleter is implemented by stores that keep server-side records.
type sessionDeleter interface {
	Delete(ctx context.Context, id string) error
}

// SessionManager reads and writes the signed-in identity through a
// sessions.Store. One instance is built at startup and shared by handlers
// and guards.
type SessionManager struct {
	store sessions.Store
	cfg   SessionConfig
	log   logger.Logger
}

func NewSessionManager(store sessions.Store, cfg SessionConfig, log logger.Logger) *SessionManager {
	return &SessionManager{store: store, cfg: cfg, log: log}
}

// Start issues a fresh session for id. Any session already presented by the
// client is discarded first so the session ID changes on every sign-in. A
// failed discard is logged; the old record then lives until its TTL.
func (m *SessionManager) Start(w http.ResponseWriter, r *http.Request, id Identity) error {
	name := m.cfg.cookieName()

	if old, err := m.store.Get(r, name); err == nil && !old.IsNew && old.ID != "" {
		if d, ok := m.store.(sessionDeleter); ok {
			if err := d.Delete(r.Context(), old.ID); err != nil {
				m.log.WarnContext(r.Context(), "previous session delete failed", "error", err)
			}
		}
	}

	session := sessions.NewSession(m.store, name)
	opts := m.cfg.options()
	session.Options = &opts
	session.IsNew = true
	session.Values[sessionUserIDKey] = id.UserID.String()
	session.Values[sessionEmailKey] = id.Email
	session.Values[sessionTenantIDKey] = id.TenantID.String()

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// End deletes the session and expires the cookie. Safe to call without a session.
func (m *SessionManager) End(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, m.cfg.cookieName())
	if session == nil {
		session = sessions.NewSession(m.store, m.cfg.cookieName())
	}
	opts := m.cfg.options()
	opts.MaxAge = -1
	session.Options = &opts
	session.Values = map[interface{}]interface{}{}

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// Identity resolves the identity stored in the request's session.
func (m *SessionManager) Identity(r *http.Request) (Identity, error) {
	session, err := m.store.Get(r, m.cfg.cookieName())
	if err != nil || session == nil || session.IsNew {
		return Identity{}, ErrNoSession
	}

	userID, err := uuidValue(session.Values, sessionUserIDKey)
	if err != nil {
		return Identity{}, err
	}
	tenantID, err := uuidValue(session.Values, sessionTenantIDKey)
	if err != nil {
		return Identity{}, err
	}
	email, _ := session.Values[sessionEmailKey].(string)

	return Identity{UserID: userID, Email: email, TenantID: tenantID}, nil
}

func uuidValue(values map[interface{}]interface{}, key string) (uuid.UUID, error) {
	raw, ok := values[key].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("%w: missing %s", ErrNoSession, key)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", ErrNoSession, key)
	}
	return id, nil
}
