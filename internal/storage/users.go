package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ironlog/ironlog/internal/models"
)

const userColumns = `id, username, phone_number, created_at, updated_at, last_login, is_active`

// CreateUser registers a new account. The username must already be
// normalized (lowercase, trimmed). Returns ErrUsernameTaken or
// ErrPhoneTaken on uniqueness conflicts.
func (db *DB) CreateUser(ctx context.Context, username, phoneNumber string) (*models.User, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = $1)`, phoneNumber,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking phone number: %w", err)
	}
	if exists {
		return nil, ErrPhoneTaken
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO users (username, phone_number) VALUES ($1, $2)
		 RETURNING `+userColumns,
		username, phoneNumber)
	return scanUser(row)
}

// GetUserByUsername finds an active user by username, case-insensitively.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE username = lower($1) AND is_active`,
		username)
	return scanUser(row)
}

// UsernameExists reports whether a username is taken, active or not.
func (db *DB) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = lower($1))`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking username: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps the user's last login time.
func (db *DB) UpdateLastLogin(ctx context.Context, userID int, at time.Time) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE users SET last_login = $2, updated_at = NOW() WHERE id = $1`,
		userID, at)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePhoneNumber changes a user's phone number, enforcing uniqueness
// across other accounts.
func (db *DB) UpdatePhoneNumber(ctx context.Context, userID int, phoneNumber string) (*models.User, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = $1 AND id <> $2)`,
		phoneNumber, userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking phone number: %w", err)
	}
	if exists {
		return nil, ErrPhoneTaken
	}

	row := db.Pool.QueryRow(ctx,
		`UPDATE users SET phone_number = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, phoneNumber)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}
