package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/logger"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	domainevents "github.com/ghuser/inventory/services/item/domain/events"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// recordingPublisher captures topics published inside a transaction.
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

// setupRepo connects to DATABASE_URL (migrations must already be applied)
// and creates a fresh tenant for the test.
func setupRepo(t *testing.T, pub TxPublisher) (*ItemRepository, *database.Database, uuid.UUID) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}

	ctx := context.Background()
	d, err := database.NewPool(ctx, dsn, logger.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(d.Close)

	return NewItemRepository(d, pub), d, newTenant(t, d)
}

func newTenant(t *testing.T, d *database.Database) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	tenantID := uuid.New()
	if _, err := d.DB().ExecContext(ctx, `INSERT INTO tenants (id, name) VALUES ($1, $2)`, tenantID, "Test Workspace"); err != nil {
		t.Fatalf("insert tenant: %v", err)
	}
	t.Cleanup(func() {
		_, _ = d.DB().ExecContext(ctx, `DELETE FROM items WHERE tenant_id = $1`, tenantID)
		_, _ = d.DB().ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, tenantID)
	})
	return tenantID
}

func mustItem(t *testing.T, tenantID uuid.UUID, name string, qty int) *models.Item {
	t.Helper()
	n, err := models.NewItemName(name)
	if err != nil {
		t.Fatalf("name: %v", err)
	}
	item, err := models.NewItem(tenantID, n, qty)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	return item
}

func TestItemRepository_CRUD(t *testing.T) {
	pub := &recordingPublisher{}
	repo, _, tenantID := setupRepo(t, pub)
	ctx := context.Background()

	item := mustItem(t, tenantID, "Widget", 3)
	if err := repo.Save(ctx, item); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetByID(ctx, tenantID, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Widget" || got.Quantity != 3 {
		t.Fatalf("unexpected item %+v", got)
	}

	qty := 9
	res, err := repo.Update(ctx, tenantID, item.ID, models.ItemPatch{Quantity: &qty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("expected count 1, got %d", res.Count)
	}
	got, _ = repo.GetByID(ctx, tenantID, item.ID)
	if got.Quantity != 9 || got.Name != "Widget" {
		t.Fatalf("partial update changed the wrong columns: %+v", got)
	}

	res, err = repo.Delete(ctx, tenantID, item.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("expected count 1, got %d", res.Count)
	}
	if _, err := repo.GetByID(ctx, tenantID, item.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound after delete, got %v", err)
	}

	want := []string{domainevents.TopicItemCreated, domainevents.TopicItemUpdated, domainevents.TopicItemDeleted}
	if len(pub.topics) != len(want) {
		t.Fatalf("expected topics %v, got %v", want, pub.topics)
	}
	for i := range want {
		if pub.topics[i] != want[i] {
			t.Errorf("topic %d: want %s, got %s", i, want[i], pub.topics[i])
		}
	}
}

func TestItemRepository_ListNewestFirst(t *testing.T) {
	repo, _, tenantID := setupRepo(t, nil)
	ctx := context.Background()

	first := mustItem(t, tenantID, "First", 0)
	second := mustItem(t, tenantID, "Second", 0)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	for _, it := range []*models.Item{first, second} {
		if err := repo.Save(ctx, it); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	items, err := repo.ListByTenant(ctx, tenantID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", items)
	}
}

func TestItemRepository_CrossTenantIsNotFound(t *testing.T) {
	repo, d, tenantID := setupRepo(t, nil)
	ctx := context.Background()
	otherTenant := newTenant(t, d)

	item := mustItem(t, tenantID, "Private", 1)
	if err := repo.Save(ctx, item); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := repo.GetByID(ctx, otherTenant, item.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("get: expected ErrItemNotFound, got %v", err)
	}
	name := models.ItemName("Stolen")
	if _, err := repo.Update(ctx, otherTenant, item.ID, models.ItemPatch{Name: &name}); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("update: expected ErrItemNotFound, got %v", err)
	}
	if _, err := repo.Delete(ctx, otherTenant, item.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("delete: expected ErrItemNotFound, got %v", err)
	}

	got, err := repo.GetByID(ctx, tenantID, item.ID)
	if err != nil || got.Name != "Private" {
		t.Fatalf("owner's item must be untouched, got %+v, %v", got, err)
	}
}

func TestItemRepository_PublishFailureRollsBack(t *testing.T) {
	repo, _, tenantID := setupRepo(t, &recordingPublisher{err: errors.New("outbox down")})
	ctx := context.Background()

	item := mustItem(t, tenantID, "Ghost", 0)
	if err := repo.Save(ctx, item); err == nil {
		t.Fatal("expected save to fail when publishing fails")
	}
	if _, err := repo.GetByID(ctx, tenantID, item.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected insert to be rolled back, got %v", err)
	}
}
