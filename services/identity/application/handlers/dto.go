package handlers

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/services/identity/domain/models"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitnil,max=100"      example:"Ada"`
	Email    string  `json:"email"          validate:"required,email"       example:"ada@example.com"`
	Password string  `json:"password"       validate:"required,min=8"       example:"correct horse battery"`
} // @name RegisterRequest

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required" example:"ada@example.com"`
	Password string `json:"password" validate:"required" example:"correct horse battery"`
} // @name LoginRequest

// AccountResponse identifies a user and their tenant.
type AccountResponse struct {
	ID       uuid.UUID `json:"id"       example:"123e4567-e89b-12d3-a456-426614174000"`
	Email    string    `json:"email"    example:"ada@example.com"`
	TenantID uuid.UUID `json:"tenantId" example:"550e8400-e29b-41d4-a716-446655440000"`
} // @name Account

func toAccount(u *models.User) AccountResponse {
	return AccountResponse{ID: u.ID, Email: u.Email, TenantID: u.TenantID}
}

func (r *RegisterRequest) normalize() {
	r.Email = models.NormalizeEmail(r.Email)
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		r.Name = &n
	}
}

// passwordIssue reports passwords bcrypt would reject. The validator counts
// runes, bcrypt counts bytes.
func passwordIssue(password string) *httpx.Issue {
	if len(password) <= maxPasswordBytes {
		return nil
	}
	return &httpx.Issue{
		Path:    []string{"password"},
		Message: "Maximum length is " + strconv.Itoa(maxPasswordBytes) + " bytes",
	}
}
