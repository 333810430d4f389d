package main

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/pkg/events"
	"github.com/ghuser/inventory/pkg/logger"
	identityEvents "github.com/ghuser/inventory/services/identity/domain/events"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	itemEvents "github.com/ghuser/inventory/services/item/domain/events"
	"github.com/ghuser/inventory/services/item/domain/models"
)

type itemReader interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error)
}

type itemCache interface {
	Version(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error)
	Fill(ctx context.Context, item *cache.CachedItem, version int64) (bool, error)
	Invalidate(ctx context.Context, tenantID, itemID uuid.UUID) error
}

// itemProjector keeps the Redis item read model in step with item events.
// Handlers must be idempotent: EventBus retries up to 3 times on failure.
// Created and updated events re-read the row and fill under the version
// taken before the read, so neither a late event nor a concurrent delete
// resurrects a deleted item. Cache failures are logged, not retried.
type itemProjector struct {
	items itemReader
	cache itemCache
	log   logger.Logger
}

func (p *itemProjector) HandleCreated(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeEvent[itemEvents.ItemCreatedEvent](msg)
	if err != nil {
		return err
	}
	return p.refresh(ctx, evt.TenantID, evt.ItemID)
}

func (p *itemProjector) HandleUpdated(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeEvent[itemEvents.ItemUpdatedEvent](msg)
	if err != nil {
		return err
	}
	return p.refresh(ctx, evt.TenantID, evt.ItemID)
}

func (p *itemProjector) HandleDeleted(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeEvent[itemEvents.ItemDeletedEvent](msg)
	if err != nil {
		return err
	}
	p.evict(ctx, evt.TenantID, evt.ItemID)
	return nil
}

func (p *itemProjector) refresh(ctx context.Context, tenantID, itemID uuid.UUID) error {
	version, err := p.cache.Version(ctx, tenantID, itemID)
	if err != nil {
		p.log.WarnContext(ctx, "cache version read failed", "item_id", itemID, "error", err)
		return nil
	}

	item, err := p.items.GetByID(ctx, tenantID, itemID)
	if errors.Is(err, itemdomain.ErrItemNotFound) {
		p.evict(ctx, tenantID, itemID)
		return nil
	}
	if err != nil {
		return err
	}

	stored, err := p.cache.Fill(ctx, appsvcs.ToCached(item), version)
	if err != nil {
		p.log.WarnContext(ctx, "cache warm failed", "item_id", itemID, "error", err)
		return nil
	}
	p.log.DebugContext(ctx, "cache refreshed", "item_id", itemID, "tenant_id", tenantID, "stored", stored)
	return nil
}

func (p *itemProjector) evict(ctx context.Context, tenantID, itemID uuid.UUID) {
	if err := p.cache.Invalidate(ctx, tenantID, itemID); err != nil {
		p.log.WarnContext(ctx, "cache evict failed", "item_id", itemID, "error", err)
	}
}

func handleTenantRegistered(log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.DecodeEvent[identityEvents.TenantRegisteredEvent](msg)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "tenant registered",
			"tenant_id", evt.TenantID,
			"tenant_name", evt.TenantName,
			"user_id", evt.UserID,
		)
		return nil
	}
}
