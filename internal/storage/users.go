package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/google/uuid"
)

// CreateUser stores a new account. An empty user.ID is assigned, and the
// email must not already be registered.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User, passwordHash string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user, passwordHash); err != nil {
		return err
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.DefaultCurrency == "" {
		user.DefaultCurrency = currency.Default
	}
	user.Email = strings.TrimSpace(user.Email)
	user.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, default_currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, passwordHash, string(user.DefaultCurrency), user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, translateError(err))
	}
	return nil
}

// GetUserByID returns the account with the given id.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	user, _, err := s.getUser(ctx, "id = ?", id)
	return user, err
}

// GetUserByEmail returns the account registered under email, matched
// case-insensitively, along with its password hash.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, "", err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, "", err
	}

	return s.getUser(ctx, "email = ?", strings.TrimSpace(email))
}

func (s *SQLiteStorage) getUser(ctx context.Context, where string, arg any) (*model.User, string, error) {
	var (
		user model.User
		hash string
		code string
	)

	// #nosec G202 - where is one of two fixed clauses
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, default_currency, created_at
		FROM users
		WHERE `+where, arg).Scan(&user.ID, &user.Name, &user.Email, &hash, &code, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("user: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	user.DefaultCurrency = currency.Code(code)
	return &user, hash, nil
}

// UpdateUserProfile changes the account's display name and email.
func (s *SQLiteStorage) UpdateUserProfile(ctx context.Context, id, name, email string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if err := validateString(email, "email"); err != nil {
		return err
	}

	return s.updateUser(ctx, id, `UPDATE users SET name = ?, email = ? WHERE id = ?`,
		strings.TrimSpace(name), strings.TrimSpace(email), id)
}

// UpdateUserPassword replaces the account's password hash.
func (s *SQLiteStorage) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(passwordHash, "passwordHash"); err != nil {
		return err
	}

	return s.updateUser(ctx, id, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

// UpdateUserCurrency sets the account's preferred display currency.
func (s *SQLiteStorage) UpdateUserCurrency(ctx context.Context, id string, code currency.Code) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !code.Valid() {
		return fmt.Errorf("%w: %q", currency.ErrUnknownCurrency, code)
	}

	return s.updateUser(ctx, id, `UPDATE users SET default_currency = ? WHERE id = ?`, string(code), id)
}

func (s *SQLiteStorage) updateUser(ctx context.Context, id, query string, args ...any) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", id, translateError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}
	return nil
}
