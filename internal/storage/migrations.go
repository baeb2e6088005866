package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT NOT NULL UNIQUE COLLATE NOCASE,
					password_hash TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					title TEXT NOT NULL,
					amount REAL NOT NULL,
					date TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('expense', 'income', 'investment')),
					category TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'USD' CHECK (currency IN ('USD', 'INR')),
					is_recurring BOOLEAN NOT NULL DEFAULT 0,
					recurrence TEXT DEFAULT 'None' CHECK (recurrence IN
						('None', 'Daily', 'Weekly', 'Biweekly', 'Monthly', 'Quarterly', 'Yearly')),
					notes TEXT,
					created_at DATETIME NOT NULL,
					FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_transactions_user_date ON transactions(user_id, date)`,

				`CREATE TABLE IF NOT EXISTS stock_investments (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					ticker TEXT NOT NULL,
					shares REAL NOT NULL CHECK (shares > 0),
					purchase_price REAL NOT NULL CHECK (purchase_price > 0),
					current_price REAL,
					currency TEXT NOT NULL DEFAULT 'USD' CHECK (currency IN ('USD', 'INR')),
					purchase_date TEXT NOT NULL,
					created_at DATETIME NOT NULL,
					FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_stock_investments_user ON stock_investments(user_id)`,

				`CREATE TABLE IF NOT EXISTS fixed_deposit_investments (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					bank_name TEXT NOT NULL,
					amount REAL NOT NULL CHECK (amount > 0),
					interest_rate REAL NOT NULL CHECK (interest_rate > 0),
					start_date TEXT NOT NULL,
					maturity_date TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'USD' CHECK (currency IN ('USD', 'INR')),
					created_at DATETIME NOT NULL,
					FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_fixed_deposits_user ON fixed_deposit_investments(user_id)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add checkpoint metadata table",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS checkpoint_metadata (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					description TEXT,
					file_size INTEGER,
					row_counts TEXT,
					schema_version INTEGER,
					is_auto BOOLEAN DEFAULT 0,
					parent_checkpoint TEXT
				)`,
				`CREATE INDEX idx_checkpoint_metadata_created_at ON checkpoint_metadata(created_at)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Track external ids of imported transactions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`ALTER TABLE transactions ADD COLUMN external_id TEXT`,
				`CREATE UNIQUE INDEX idx_transactions_user_external
					ON transactions(user_id, external_id)
					WHERE external_id IS NOT NULL`,
			})
		},
	},
	{
		Version:     4,
		Description: "Add default currency preference to users",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				ALTER TABLE users
				ADD COLUMN default_currency TEXT NOT NULL DEFAULT 'USD'
				CHECK (default_currency IN ('USD', 'INR'))
			`)
			if err != nil {
				return fmt.Errorf("failed to add default_currency column: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
