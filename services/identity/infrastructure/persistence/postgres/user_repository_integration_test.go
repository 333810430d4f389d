package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/logger"
	identitydomain "github.com/ghuser/inventory/services/identity/domain"
	domainevents "github.com/ghuser/inventory/services/identity/domain/events"
	"github.com/ghuser/inventory/services/identity/domain/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) PublishInTx(_ context.Context, _ *sql.Tx, topic string, _ *message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	return nil
}

// setupRepo connects to DATABASE_URL; migrations must already be applied.
func setupRepo(t *testing.T, pub TxPublisher) (*UserRepository, *database.Database) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}

	d, err := database.NewPool(context.Background(), dsn, logger.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(d.Close)
	return NewUserRepository(d, pub), d
}

func newRegistration(t *testing.T, d *database.Database) (*models.Tenant, *models.User) {
	t.Helper()
	tenant := models.NewTenant("Ada")
	user := models.NewUser(tenant, uuid.NewString()+"@example.com", "Ada", "$2a$04$hash")
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = d.DB().ExecContext(ctx, `DELETE FROM users WHERE tenant_id = $1`, tenant.ID)
		_, _ = d.DB().ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, tenant.ID)
	})
	return tenant, user
}

func TestUserRepository_RegisterAndLookup(t *testing.T) {
	pub := &recordingPublisher{}
	repo, d := setupRepo(t, pub)
	ctx := context.Background()
	tenant, user := newRegistration(t, d)

	if err := repo.Register(ctx, tenant, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(pub.topics) != 1 || pub.topics[0] != domainevents.TopicTenantRegistered {
		t.Fatalf("expected one %s event, got %v", domainevents.TopicTenantRegistered, pub.topics)
	}

	got, err := repo.GetByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != user.ID || got.TenantID != tenant.ID || got.Name != "Ada" {
		t.Fatalf("unexpected user %+v", got)
	}

	exists, err := repo.EmailExists(ctx, user.Email)
	if err != nil || !exists {
		t.Fatalf("expected email to exist, got %v, %v", exists, err)
	}
}

func TestUserRepository_DuplicateEmailIsConflict(t *testing.T) {
	repo, d := setupRepo(t, nil)
	ctx := context.Background()
	tenant, user := newRegistration(t, d)
	if err := repo.Register(ctx, tenant, user); err != nil {
		t.Fatalf("register: %v", err)
	}

	otherTenant, other := newRegistration(t, d)
	other.Email = user.Email
	err := repo.Register(ctx, otherTenant, other)
	if !errors.Is(err, identitydomain.ErrEmailAlreadyInUse) {
		t.Fatalf("expected ErrEmailAlreadyInUse, got %v", err)
	}

	var n int
	if err := d.DB().QueryRowContext(ctx, `SELECT count(*) FROM tenants WHERE id = $1`, otherTenant.ID).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatal("tenant of the failed registration must be rolled back")
	}
}

func TestUserRepository_PublishFailureRollsBack(t *testing.T) {
	repo, d := setupRepo(t, &recordingPublisher{err: errors.New("outbox down")})
	ctx := context.Background()
	tenant, user := newRegistration(t, d)

	if err := repo.Register(ctx, tenant, user); err == nil {
		t.Fatal("expected error from publisher")
	}
	if _, err := repo.GetByEmail(ctx, user.Email); !errors.Is(err, identitydomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after rollback, got %v", err)
	}
}
