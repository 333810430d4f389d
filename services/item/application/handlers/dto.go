package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// MsgInvalidID is returned when the {id} path parameter is not a UUID.
const MsgInvalidID = "Invalid id"

// ItemResponse is the wire shape of an Item.
type ItemResponse struct {
	ID        uuid.UUID `json:"id"        example:"123e4567-e89b-12d3-a456-426614174000"`
	Name      string    `json:"name"      example:"Widget"`
	Quantity  int       `json:"quantity"  example:"12"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	TenantID  uuid.UUID `json:"tenantId"  example:"550e8400-e29b-41d4-a716-446655440000"`
} // @name Item

func toResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		Name:      item.Name.String(),
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		TenantID:  item.TenantID,
	}
}

// CreateItemRequest is the request body for POST /items. Quantity accepts
// an integer or an integral numeric string.
type CreateItemRequest struct {
	Name     *string         `json:"name"                  example:"Widget"`
	Quantity json.RawMessage `json:"quantity,omitempty" swaggertype:"integer" example:"3"`
} // @name CreateItemRequest

// UpdateItemRequest is the request body for PUT /items/{id}. At least one
// field is required.
type UpdateItemRequest struct {
	Name     *string         `json:"name,omitempty"     example:"Widget"`
	Quantity json.RawMessage `json:"quantity,omitempty" swaggertype:"integer" example:"3"`
} // @name UpdateItemRequest

// createItemInput is the normalized create payload checked by the validator.
type createItemInput struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type updateItemInput struct {
	Name     *string `json:"name"     validate:"omitnil,min=1,max=100"`
	Quantity *int    `json:"quantity" validate:"omitnil,gte=0"`
}

// parseQuantity coerces a raw JSON value to an integer. A missing or null
// value yields (nil, nil).
func parseQuantity(raw json.RawMessage) (*int, *httpx.Issue) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}

	invalid := &httpx.Issue{Path: []string{"quantity"}, Message: "Expected integer"}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, invalid
		}
		s = strings.TrimSpace(str)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, invalid
	}
	if f > math.MaxInt32 {
		return nil, &httpx.Issue{
			Path:    []string{"quantity"},
			Message: "Must be less than or equal to " + strconv.Itoa(math.MaxInt32),
		}
	}
	if f < math.MinInt32 {
		f = math.MinInt32
	}
	q := int(f)
	return &q, nil
}

// parseID reads the {id} path parameter. It must be a canonical UUID.
func parseID(r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if len(raw) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// trim removes surrounding whitespace from user-supplied names.
func trim(s string) string {
	return strings.TrimSpace(s)
}
