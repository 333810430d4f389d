package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/inventory/services/item/domain/models"
)

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
// Every method is scoped by tenantID.
type ItemRepository interface {
	Save(ctx context.Context, item *models.Item) error

	// ListByTenant returns all items of the tenant, newest first.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Item, error)

	// GetByID returns domain.ErrItemNotFound when no row matches id and tenantID.
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error)

	// Update applies patch to rows matching id and tenantID in one statement.
	// Zero affected rows is reported as domain.ErrItemNotFound.
	Update(ctx context.Context, tenantID, id uuid.UUID, patch models.ItemPatch) (models.MutationResult, error)

	// Delete removes rows matching id and tenantID in one statement.
	// Zero affected rows is reported as domain.ErrItemNotFound.
	Delete(ctx context.Context, tenantID, id uuid.UUID) (models.MutationResult, error)
}
