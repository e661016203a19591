package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashevelev/chatweb/pkg/domain"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. A duplicate email yields
// domain.ErrConflict.
func (u *userRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`

	res, err := u.db.ExecContext(ctx, query,
		user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrConflict
	}

	return nil
}

// GetByEmail looks a user up by lowercase email.
func (u *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user domain.User
	err := u.db.QueryRowContext(ctx, query, strings.ToLower(email)).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}

	return &user, nil
}

// TouchUpdatedAt stamps the user's last activity time.
func (u *userRepository) TouchUpdatedAt(ctx context.Context, userID string) error {
	const query = `
		UPDATE users
		SET updated_at = $2
		WHERE id = $1
	`

	if _, err := u.db.ExecContext(ctx, query, userID, time.Now()); err != nil {
		return fmt.Errorf("updating user timestamp: %w", err)
	}

	return nil
}
