// Package identitytest provides an in-memory user repository for service and
// handler tests.
package identitytest

import (
	"context"
	"sync"

	identitydomain "github.com/ghuser/inventory/services/identity/domain"
	"github.com/ghuser/inventory/services/identity/domain/models"
)

// Repository is an in-memory repositories.UserRepository keyed by email.
// Setting Err makes every method fail with it.
type Repository struct {
	mu      sync.Mutex
	users   map[string]models.User
	tenants map[string]models.Tenant
	Err     error
}

func NewRepository() *Repository {
	return &Repository{users: map[string]models.User{}, tenants: map[string]models.Tenant{}}
}

func (r *Repository) Register(_ context.Context, tenant *models.Tenant, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.users[user.Email]; ok {
		return identitydomain.ErrEmailAlreadyInUse
	}
	r.users[user.Email] = *user
	r.tenants[tenant.ID.String()] = *tenant
	return nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[email]
	if !ok {
		return nil, identitydomain.ErrUserNotFound
	}
	return &u, nil
}

func (r *Repository) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	_, ok := r.users[email]
	return ok, nil
}

// Tenant returns the stored tenant with the given ID.
func (r *Repository) Tenant(id string) (models.Tenant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	return t, ok
}

// Users is the number of stored users.
func (r *Repository) Users() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
