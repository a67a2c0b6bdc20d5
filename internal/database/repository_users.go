package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateUser inserts a new login identity, generating its id
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	query := `
		INSERT INTO users (id, username, password_hash, employee_id, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return r.q.QueryRow(
		ctx, query,
		user.ID, user.Username, user.PasswordHash, user.EmployeeID, user.IsAdmin,
	).Scan(&user.CreatedAt)
}

// GetUserByUsername retrieves a user by username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, password_hash, employee_id, is_admin, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanUser(r.q.QueryRow(ctx, query, username))
}

// GetUserByID retrieves a user by id
func (r *Repository) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, username, password_hash, employee_id, is_admin, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.q.QueryRow(ctx, query, id))
}

func (r *Repository) scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash,
		&user.EmployeeID, &user.IsAdmin, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
