// Package itemtest provides in-memory fakes of the item repository and cache
// for service and handler tests.
package itemtest

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/inventory/pkg/cache"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// Calls counts repository invocations per method.
type Calls struct {
	Save, List, Get, Update, Delete int
}

// Total is the number of repository calls of any kind.
func (c Calls) Total() int {
	return c.Save + c.List + c.Get + c.Update + c.Delete
}

// Repository is an in-memory repositories.ItemRepository. Setting Err makes
// every method fail with it.
type Repository struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Item
	calls Calls
	Err   error
}

func NewRepository(seed ...*models.Item) *Repository {
	r := &Repository{items: map[uuid.UUID]models.Item{}}
	for _, it := range seed {
		r.items[it.ID] = *it
	}
	return r
}

// Calls returns a snapshot of the call counters.
func (r *Repository) Calls() Calls {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *Repository) Save(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Save++
	if r.Err != nil {
		return r.Err
	}
	r.items[item.ID] = *item
	return nil
}

func (r *Repository) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.List++
	if r.Err != nil {
		return nil, r.Err
	}
	out := []*models.Item{}
	for _, it := range r.items {
		if it.TenantID == tenantID {
			it := it
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Get++
	if r.Err != nil {
		return nil, r.Err
	}
	it, ok := r.items[id]
	if !ok || it.TenantID != tenantID {
		return nil, itemdomain.ErrItemNotFound
	}
	return &it, nil
}

func (r *Repository) Update(_ context.Context, tenantID, id uuid.UUID, patch models.ItemPatch) (models.MutationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Update++
	if r.Err != nil {
		return models.MutationResult{}, r.Err
	}
	it, ok := r.items[id]
	if !ok || it.TenantID != tenantID {
		return models.MutationResult{}, itemdomain.ErrItemNotFound
	}
	if patch.Name != nil {
		it.Name = *patch.Name
	}
	if patch.Quantity != nil {
		it.Quantity = *patch.Quantity
	}
	r.items[id] = it
	return models.MutationResult{Count: 1}, nil
}

func (r *Repository) Delete(_ context.Context, tenantID, id uuid.UUID) (models.MutationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls.Delete++
	if r.Err != nil {
		return models.MutationResult{}, r.Err
	}
	it, ok := r.items[id]
	if !ok || it.TenantID != tenantID {
		return models.MutationResult{}, itemdomain.ErrItemNotFound
	}
	delete(r.items, id)
	return models.MutationResult{Count: 1}, nil
}

// Cache is an in-memory item cache with the same version fencing as the
// Redis one. Setting Err makes every method fail.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]pkgcache.CachedItem
	versions map[string]int64
	Err      error
	Hits     int
	// Stale counts fills dropped because the item was invalidated meanwhile.
	Stale int
}

func NewCache() *Cache {
	return &Cache{entries: map[string]pkgcache.CachedItem{}, versions: map[string]int64{}}
}

func cacheKey(tenantID, itemID uuid.UUID) string {
	return tenantID.String() + ":" + itemID.String()
}

func (c *Cache) Get(_ context.Context, tenantID, itemID uuid.UUID) (*pkgcache.CachedItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	e, ok := c.entries[cacheKey(tenantID, itemID)]
	if !ok {
		return nil, redis.Nil
	}
	c.Hits++
	return &e, nil
}

func (c *Cache) Version(_ context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.versions[cacheKey(tenantID, itemID)], nil
}

func (c *Cache) Fill(_ context.Context, item *pkgcache.CachedItem, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return false, c.Err
	}
	key := cacheKey(item.TenantID, item.ID)
	if c.versions[key] != version {
		c.Stale++
		return false, nil
	}
	c.entries[key] = *item
	return true, nil
}

func (c *Cache) Invalidate(_ context.Context, tenantID, itemID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	key := cacheKey(tenantID, itemID)
	delete(c.entries, key)
	c.versions[key]++
	return nil
}

// Has reports whether an entry exists for the pair.
func (c *Cache) Has(tenantID, itemID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[cacheKey(tenantID, itemID)]
	return ok
}
