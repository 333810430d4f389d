package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/inventory/services/item/domain"
)

// Item is the core aggregate for this bounded context.
type Item struct {
	ID        uuid.UUID
	TenantID  uuid.UUID // tenant scope (always filter by this in queries)
	Name      ItemName
	Quantity  int
	CreatedAt time.Time
}

// NewItem constructs a valid Item aggregate with generated ID and current
// timestamp, truncated to the microsecond precision Postgres stores.
func NewItem(tenantID uuid.UUID, name ItemName, quantity int) (*Item, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	return &Item{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}, nil
}

// ValidateQuantity rejects negative stock counts.
func ValidateQuantity(q int) error {
	if q < 0 {
		return fmt.Errorf("%w: must be greater than or equal to 0", domain.ErrInvalidQuantity)
	}
	return nil
}

// ItemPatch is a partial update. Nil fields are left unchanged.
type ItemPatch struct {
	Name     *ItemName
	Quantity *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil
}

// MutationResult reports how many rows an update or delete touched.
type MutationResult struct {
	Count int64 `json:"count"`
} // @name MutationResult
