package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/model"
)

const userColumns = `id, email, name, password_hash, role, created_at`

// CreateUser creates a new user. Emails are stored lower-cased.
func CreateUser(ctx context.Context, q sqlx.ExtContext, email, name, passwordHash, role string) (*model.User, error) {
	id := uuid.NewString()
	_, err := q.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role) VALUES (?, ?, ?, ?, ?)`,
		id, strings.ToLower(email), name, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, q, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, q sqlx.QueryerContext, id string) (*model.User, error) {
	u := &model.User{}
	err := sqlx.GetContext(ctx, q, u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email address (case-insensitive).
func GetUserByEmail(ctx context.Context, q sqlx.QueryerContext, email string) (*model.User, error) {
	u := &model.User{}
	err := sqlx.GetContext(ctx, q, u, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all users in creation order.
func ListUsers(ctx context.Context, q sqlx.QueryerContext) ([]model.User, error) {
	var users []model.User
	err := sqlx.SelectContext(ctx, q, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, q sqlx.ExecerContext, id string, passwordHash string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
