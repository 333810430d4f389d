package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/telemetry"
	identitydomain "github.com/ghuser/inventory/services/identity/domain"
	"github.com/ghuser/inventory/services/identity/domain/models"
	"github.com/ghuser/inventory/services/identity/domain/repositories"
)

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// IdentityService registers tenants with their first user and verifies
// credentials.
type IdentityService struct {
	repo       repositories.UserRepository
	bcryptCost int
	metrics    *telemetry.Metrics
	log        logger.Logger

	// dummyHash is compared against when the email is unknown so both
	// failure paths pay one bcrypt comparison.
	dummyHash func() string
}

// NewIdentityService returns an IdentityService. metrics may be nil.
func NewIdentityService(repo repositories.UserRepository, bcryptCost int, metrics *telemetry.Metrics, log logger.Logger) *IdentityService {
	s := &IdentityService{repo: repo, bcryptCost: bcryptCost, metrics: metrics, log: log}
	s.dummyHash = sync.OnceValue(func() string {
		h, err := auth.HashPassword("inventory-dummy-password", bcryptCost)
		if err != nil {
			return ""
		}
		return h
	})
	return s
}

// Register creates a tenant and its first user. The email is normalized
// before the duplicate check and the insert.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		s.metrics.Registration(ctx, telemetry.OutcomeError)
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		s.metrics.Registration(ctx, telemetry.OutcomeConflict)
		return nil, identitydomain.ErrEmailAlreadyInUse
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		s.metrics.Registration(ctx, telemetry.OutcomeError)
		return nil, err
	}

	tenant := models.NewTenant(in.Name)
	user := models.NewUser(tenant, email, in.Name, hash)
	if err := s.repo.Register(ctx, tenant, user); err != nil {
		if errors.Is(err, identitydomain.ErrEmailAlreadyInUse) {
			s.metrics.Registration(ctx, telemetry.OutcomeConflict)
			return nil, err
		}
		s.metrics.Registration(ctx, telemetry.OutcomeError)
		return nil, fmt.Errorf("register: %w", err)
	}

	s.metrics.Registration(ctx, telemetry.OutcomeSuccess)
	s.log.InfoContext(ctx, "tenant registered", "tenant_id", tenant.ID, "user_id", user.ID)
	return user, nil
}

// Authenticate returns the user matching email and password. Unknown emails
// and wrong passwords both yield ErrInvalidCredentials.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, identitydomain.ErrUserNotFound) {
			auth.ComparePassword(s.dummyHash(), password)
			s.metrics.Login(ctx, telemetry.OutcomeInvalid)
			return nil, identitydomain.ErrInvalidCredentials
		}
		s.metrics.Login(ctx, telemetry.OutcomeError)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		s.metrics.Login(ctx, telemetry.OutcomeInvalid)
		return nil, identitydomain.ErrInvalidCredentials
	}

	s.metrics.Login(ctx, telemetry.OutcomeSuccess)
	return user, nil
}
