package repositories

import (
	"context"

	"github.com/ghuser/inventory/services/identity/domain/models"
)

// UserRepository persists tenants and users.
type UserRepository interface {
	// Register inserts tenant and user atomically. Returns
	// domain.ErrEmailAlreadyInUse when the email is taken.
	Register(ctx context.Context, tenant *models.Tenant, user *models.User) error
	// GetByEmail returns domain.ErrUserNotFound when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
