package db

import (
	"time"

	"github.com/google/uuid"
)

// Item mirrors one row of the items table.
type Item struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Quantity  int32
	CreatedAt time.Time
}
