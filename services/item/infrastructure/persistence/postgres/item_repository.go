package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/events"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	domainevents "github.com/ghuser/inventory/services/item/domain/events"
	"github.com/ghuser/inventory/services/item/domain/models"
	"github.com/ghuser/inventory/services/item/domain/repositories"
	"github.com/ghuser/inventory/services/item/infrastructure/persistence/postgres/db"
)

const eventVersion = 1

// TxPublisher publishes a message inside an open transaction.
// *events.EventBus satisfies it.
type TxPublisher interface {
	PublishInTx(ctx context.Context, tx *sql.Tx, topic string, msg *message.Message) error
}

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus TxPublisher
}

// NewItemRepository returns an ItemRepository backed by the given connection pool
// and event bus. Every write publishes its item event in the same transaction.
// A nil bus disables publishing.
func NewItemRepository(database *database.Database, bus TxPublisher) *ItemRepository {
	return &ItemRepository{db: database, bus: bus}
}

// Save persists a new Item and publishes an ItemCreatedEvent within the same transaction.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertItem(ctx, db.InsertItemParams{
			ID:        item.ID,
			TenantID:  item.TenantID,
			Name:      item.Name.String(),
			Quantity:  int32(item.Quantity),
			CreatedAt: item.CreatedAt,
		}); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}

		eventID := uuid.New()
		return r.publish(ctx, tx, domainevents.TopicItemCreated, eventID, domainevents.ItemCreatedEvent{
			EventID:    eventID,
			Version:    eventVersion,
			ItemID:     item.ID,
			TenantID:   item.TenantID,
			Name:       item.Name.String(),
			Quantity:   item.Quantity,
			CreatedAt:  item.CreatedAt,
			OccurredAt: item.CreatedAt,
		})
	})
}

// ListByTenant returns every item of the tenant, newest first.
func (r *ItemRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Item, error) {
	rows, err := db.New(r.db.DB()).ListItemsByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}
	return items, nil
}

// GetByID retrieves an Item by ID scoped to the given tenant. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	row, err := db.New(r.db.DB()).GetItemByID(ctx, db.GetItemByIDParams{
		ID:       id,
		TenantID: tenantID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return rowToItem(row), nil
}

// Update applies patch to the row matching id and tenantID in a single
// statement and publishes an ItemUpdatedEvent per updated row.
func (r *ItemRepository) Update(ctx context.Context, tenantID, id uuid.UUID, patch models.ItemPatch) (models.MutationResult, error) {
	params := db.UpdateItemsParams{ID: id, TenantID: tenantID}
	if patch.Name != nil {
		params.Name = sql.NullString{String: patch.Name.String(), Valid: true}
	}
	if patch.Quantity != nil {
		params.Quantity = sql.NullInt32{Int32: int32(*patch.Quantity), Valid: true}
	}

	var result models.MutationResult
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := db.New(tx).UpdateItems(ctx, params)
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		if len(rows) == 0 {
			return itemdomain.ErrItemNotFound
		}

		now := time.Now().UTC()
		for _, row := range rows {
			eventID := uuid.New()
			if err := r.publish(ctx, tx, domainevents.TopicItemUpdated, eventID, domainevents.ItemUpdatedEvent{
				EventID:    eventID,
				Version:    eventVersion,
				ItemID:     row.ID,
				TenantID:   row.TenantID,
				Name:       row.Name,
				Quantity:   int(row.Quantity),
				CreatedAt:  row.CreatedAt,
				OccurredAt: now,
			}); err != nil {
				return err
			}
		}
		result.Count = int64(len(rows))
		return nil
	})
	if err != nil {
		return models.MutationResult{}, err
	}
	return result, nil
}

// Delete removes the row matching id and tenantID in a single statement and
// publishes an ItemDeletedEvent per deleted row.
func (r *ItemRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) (models.MutationResult, error) {
	var result models.MutationResult
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := db.New(tx).DeleteItems(ctx, db.DeleteItemsParams{ID: id, TenantID: tenantID})
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if len(rows) == 0 {
			return itemdomain.ErrItemNotFound
		}

		now := time.Now().UTC()
		for _, row := range rows {
			eventID := uuid.New()
			if err := r.publish(ctx, tx, domainevents.TopicItemDeleted, eventID, domainevents.ItemDeletedEvent{
				EventID:    eventID,
				Version:    eventVersion,
				ItemID:     row.ID,
				TenantID:   row.TenantID,
				OccurredAt: now,
			}); err != nil {
				return err
			}
		}
		result.Count = int64(len(rows))
		return nil
	})
	if err != nil {
		return models.MutationResult{}, err
	}
	return result, nil
}

func (r *ItemRepository) publish(ctx context.Context, tx *sql.Tx, topic string, eventID uuid.UUID, payload any) error {
	if r.bus == nil {
		return nil
	}
	msg, err := events.NewEventMessage(eventID.String(), eventVersion, payload)
	if err != nil {
		return fmt.Errorf("build %s event: %w", topic, err)
	}
	if err := r.bus.PublishInTx(ctx, tx, topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// rowToItem maps a db.Item to a domain models.Item.
func rowToItem(row db.Item) *models.Item {
	return &models.Item{
		ID:        row.ID,
		TenantID:  row.TenantID,
		Name:      models.ItemName(row.Name),
		Quantity:  int(row.Quantity),
		CreatedAt: row.CreatedAt.UTC(),
	}
}

var _ repositories.ItemRepository = (*ItemRepository)(nil)
