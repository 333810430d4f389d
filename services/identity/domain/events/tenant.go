package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicTenantRegistered is published when a tenant and its first user are created.
const TopicTenantRegistered = "tenant.registered"

// TenantRegisteredEvent is published in the registration transaction.
type TenantRegisteredEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
