package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Email        string
	Name         sql.NullString
	PasswordHash string
	CreatedAt    time.Time
}

const insertTenant = `INSERT INTO tenants (id, name, created_at) VALUES ($1, $2, $3)`

type InsertTenantParams struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

func (q *Queries) InsertTenant(ctx context.Context, arg InsertTenantParams) error {
	_, err := q.db.ExecContext(ctx, insertTenant, arg.ID, arg.Name, arg.CreatedAt)
	return err
}

const insertUser = `INSERT INTO users (id, tenant_id, email, name, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

type InsertUserParams struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Email        string
	Name         sql.NullString
	PasswordHash string
	CreatedAt    time.Time
}

func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) error {
	_, err := q.db.ExecContext(ctx, insertUser,
		arg.ID,
		arg.TenantID,
		arg.Email,
		arg.Name,
		arg.PasswordHash,
		arg.CreatedAt,
	)
	return err
}

const getUserByEmail = `SELECT id, tenant_id, email, name, password_hash, created_at
FROM users
WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	return u, err
}

const userEmailExists = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

func (q *Queries) UserEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, userEmailExists, email).Scan(&exists)
	return exists, err
}
