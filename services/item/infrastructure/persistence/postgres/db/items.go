package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const itemColumns = `id, tenant_id, name, quantity, created_at`

const insertItem = `INSERT INTO items (id, tenant_id, name, quantity, created_at)
VALUES ($1, $2, $3, $4, $5)`

type InsertItemParams struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Quantity  int32
	CreatedAt time.Time
}

func (q *Queries) InsertItem(ctx context.Context, arg InsertItemParams) error {
	_, err := q.db.ExecContext(ctx, insertItem,
		arg.ID,
		arg.TenantID,
		arg.Name,
		arg.Quantity,
		arg.CreatedAt,
	)
	return err
}

const listItemsByTenant = `SELECT ` + itemColumns + `
FROM items
WHERE tenant_id = $1
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListItemsByTenant(ctx context.Context, tenantID uuid.UUID) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, listItemsByTenant, tenantID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

const getItemByID = `SELECT ` + itemColumns + `
FROM items
WHERE id = $1 AND tenant_id = $2`

type GetItemByIDParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

func (q *Queries) GetItemByID(ctx context.Context, arg GetItemByIDParams) (Item, error) {
	row := q.db.QueryRowContext(ctx, getItemByID, arg.ID, arg.TenantID)
	var i Item
	err := row.Scan(&i.ID, &i.TenantID, &i.Name, &i.Quantity, &i.CreatedAt)
	return i, err
}

// updateItems leaves a column untouched when its parameter is NULL.
const updateItems = `UPDATE items
SET name = COALESCE($3, name),
    quantity = COALESCE($4, quantity)
WHERE id = $1 AND tenant_id = $2
RETURNING ` + itemColumns

type UpdateItemsParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     sql.NullString
	Quantity sql.NullInt32
}

// UpdateItems returns the updated rows; an empty slice means nothing matched.
func (q *Queries) UpdateItems(ctx context.Context, arg UpdateItemsParams) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, updateItems,
		arg.ID,
		arg.TenantID,
		arg.Name,
		arg.Quantity,
	)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

const deleteItems = `DELETE FROM items
WHERE id = $1 AND tenant_id = $2
RETURNING ` + itemColumns

type DeleteItemsParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

// DeleteItems returns the deleted rows; an empty slice means nothing matched.
func (q *Queries) DeleteItems(ctx context.Context, arg DeleteItemsParams) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, deleteItems, arg.ID, arg.TenantID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		var i Item
		if err := rows.Scan(&i.ID, &i.TenantID, &i.Name, &i.Quantity, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
