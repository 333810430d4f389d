package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgcache "github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/telemetry"
	"github.com/ghuser/inventory/services/item/domain/models"
	"github.com/ghuser/inventory/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/inventory/services/item/domain/services"
)

// ItemCache is the read-through cache used by GetByID. Fills are fenced by
// the version read before the row, so a read racing an update or delete
// cannot store the old row. *pkgcache.ItemCache satisfies it.
type ItemCache interface {
	Get(ctx context.Context, tenantID, itemID uuid.UUID) (*pkgcache.CachedItem, error)
	Version(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error)
	Fill(ctx context.Context, item *pkgcache.CachedItem, version int64) (bool, error)
	Invalidate(ctx context.Context, tenantID, itemID uuid.UUID) error
}

// ItemService orchestrates the tenant-scoped item operations.
// Event publishing is handled by the repository layer (outbox pattern).
// Single-item reads are served from Redis when available; cache failures are
// logged and never fail the request.
type ItemService struct {
	repo    repositories.ItemRepository
	cache   ItemCache
	metrics *telemetry.Metrics
	log     logger.Logger
}

// NewItemService returns an ItemService. cache and metrics may be nil.
func NewItemService(repo repositories.ItemRepository, cache ItemCache, metrics *telemetry.Metrics, log logger.Logger) *ItemService {
	return &ItemService{repo: repo, cache: cache, metrics: metrics, log: log}
}

// Create validates and persists an Item. The repository publishes ItemCreatedEvent.
func (s *ItemService) Create(ctx context.Context, tenantID uuid.UUID, name string, quantity int) (*models.Item, error) {
	itemName, err := models.NewItemName(name)
	if err != nil {
		return nil, err
	}

	item, err := models.NewItem(tenantID, itemName, quantity)
	if err != nil {
		return nil, err
	}

	if err := domainsvcs.ValidateItemForCreation(item); err != nil {
		return nil, fmt.Errorf("validate item: %w", err)
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	s.metrics.ItemMutation(ctx, "create")
	return item, nil
}

// List returns every item of the tenant, newest first.
func (s *ItemService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Item, error) {
	items, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// GetByID serves from Redis when it can. On a miss it reads Postgres and
// fills the cache, unless the item was invalidated after the version was
// taken. Cache failures only skip the cache.
func (s *ItemService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	fill := false
	var version int64
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tenantID, id)
		switch {
		case err == nil:
			return fromCached(cached), nil
		case !pkgcache.IsMiss(err):
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		default:
			if version, err = s.cache.Version(ctx, tenantID, id); err != nil {
				s.log.WarnContext(ctx, "item cache version read failed", "item_id", id, "error", err)
			} else {
				fill = true
			}
		}
	}

	item, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if fill {
		stored, err := s.cache.Fill(ctx, ToCached(item), version)
		switch {
		case err != nil:
			s.log.WarnContext(ctx, "item cache fill failed", "item_id", id, "error", err)
		case !stored:
			s.log.DebugContext(ctx, "item changed during read, cache not filled", "item_id", id)
		}
	}

	return item, nil
}

// Update applies a partial update scoped to the tenant. Returns
// ErrItemNotFound when nothing matched and ErrEmptyPatch for an empty patch.
func (s *ItemService) Update(ctx context.Context, tenantID, id uuid.UUID, patch models.ItemPatch) (models.MutationResult, error) {
	if err := domainsvcs.ValidatePatch(patch); err != nil {
		return models.MutationResult{}, err
	}

	res, err := s.repo.Update(ctx, tenantID, id, patch)
	if err != nil {
		return models.MutationResult{}, fmt.Errorf("update item: %w", err)
	}

	s.invalidate(ctx, tenantID, id)
	s.metrics.ItemMutation(ctx, "update")
	return res, nil
}

// Delete removes an item scoped to the tenant.
// Returns ErrItemNotFound if no matching item exists.
func (s *ItemService) Delete(ctx context.Context, tenantID, id uuid.UUID) (models.MutationResult, error) {
	res, err := s.repo.Delete(ctx, tenantID, id)
	if err != nil {
		return models.MutationResult{}, fmt.Errorf("delete item: %w", err)
	}

	s.invalidate(ctx, tenantID, id)
	s.metrics.ItemMutation(ctx, "delete")
	return res, nil
}

func (s *ItemService) invalidate(ctx context.Context, tenantID, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID, id); err != nil {
		s.log.WarnContext(ctx, "item cache invalidation failed", "item_id", id, "error", err)
	}
}

// ToCached converts an Item to its cache read model.
func ToCached(item *models.Item) *pkgcache.CachedItem {
	return &pkgcache.CachedItem{
		ID:        item.ID,
		TenantID:  item.TenantID,
		Name:      item.Name.String(),
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
	}
}

func fromCached(c *pkgcache.CachedItem) *models.Item {
	return &models.Item{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Name:      models.ItemName(c.Name),
		Quantity:  c.Quantity,
		CreatedAt: c.CreatedAt,
	}
}
