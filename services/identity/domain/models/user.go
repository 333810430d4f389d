package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultWorkspaceName is used for tenants registered without a user name.
const DefaultWorkspaceName = "My Workspace"

// Tenant is the workspace that owns items. Every user belongs to exactly one.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// User is a login identity. PasswordHash is a bcrypt hash and never leaves
// the service.
type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// NewTenant builds a tenant named after the registering user.
func NewTenant(userName string) *Tenant {
	return &Tenant{
		ID:        uuid.New(),
		Name:      WorkspaceName(userName),
		CreatedAt: time.Now().UTC(),
	}
}

// NewUser builds a user belonging to tenant. email must already be normalized.
func NewUser(tenant *Tenant, email, name, passwordHash string) *User {
	return &User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		CreatedAt:    tenant.CreatedAt,
	}
}

// WorkspaceName derives a tenant name from the user's display name.
func WorkspaceName(userName string) string {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return DefaultWorkspaceName
	}
	return userName + "'s Workspace"
}

// NormalizeEmail trims and lower-cases an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
