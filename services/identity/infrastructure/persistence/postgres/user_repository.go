package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/events"
	identitydomain "github.com/ghuser/inventory/services/identity/domain"
	domainevents "github.com/ghuser/inventory/services/identity/domain/events"
	"github.com/ghuser/inventory/services/identity/domain/models"
	"github.com/ghuser/inventory/services/identity/domain/repositories"
	"github.com/ghuser/inventory/services/identity/infrastructure/persistence/postgres/db"
)

const (
	eventVersion = 1

	uniqueViolation = "23505"
	usersEmailKey   = "users_email_key"
)

// TxPublisher publishes a message inside an open transaction.
type TxPublisher interface {
	PublishInTx(ctx context.Context, tx *sql.Tx, topic string, msg *message.Message) error
}

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db  *database.Database
	bus TxPublisher
}

// NewUserRepository returns a UserRepository. A nil bus disables publishing.
func NewUserRepository(database *database.Database, bus TxPublisher) *UserRepository {
	return &UserRepository{db: database, bus: bus}
}

// Register inserts the tenant, its first user and a TenantRegisteredEvent in
// one transaction. A unique violation on the email index is reported as
// ErrEmailAlreadyInUse.
func (r *UserRepository) Register(ctx context.Context, tenant *models.Tenant, user *models.User) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertTenant(ctx, db.InsertTenantParams{
			ID:        tenant.ID,
			Name:      tenant.Name,
			CreatedAt: tenant.CreatedAt,
		}); err != nil {
			return fmt.Errorf("insert tenant: %w", err)
		}

		if err := q.InsertUser(ctx, db.InsertUserParams{
			ID:           user.ID,
			TenantID:     user.TenantID,
			Email:        user.Email,
			Name:         sql.NullString{String: user.Name, Valid: user.Name != ""},
			PasswordHash: user.PasswordHash,
			CreatedAt:    user.CreatedAt,
		}); err != nil {
			if isEmailConflict(err) {
				return identitydomain.ErrEmailAlreadyInUse
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if r.bus == nil {
			return nil
		}
		eventID := uuid.New()
		msg, err := events.NewEventMessage(eventID.String(), eventVersion, domainevents.TenantRegisteredEvent{
			EventID:    eventID,
			Version:    eventVersion,
			TenantID:   tenant.ID,
			TenantName: tenant.Name,
			UserID:     user.ID,
			Email:      user.Email,
			OccurredAt: user.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("build %s event: %w", domainevents.TopicTenantRegistered, err)
		}
		if err := r.bus.PublishInTx(ctx, tx, domainevents.TopicTenantRegistered, msg); err != nil {
			return fmt.Errorf("publish %s: %w", domainevents.TopicTenantRegistered, err)
		}
		return nil
	})
}

// GetByEmail looks up a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row, err := db.New(r.db.DB()).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identitydomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &models.User{
		ID:           row.ID,
		TenantID:     row.TenantID,
		Email:        row.Email,
		Name:         row.Name.String,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := db.New(r.db.DB()).UserEmailExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("query email: %w", err)
	}
	return exists, nil
}

func isEmailConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == usersEmailKey
}

var _ repositories.UserRepository = (*UserRepository)(nil)
