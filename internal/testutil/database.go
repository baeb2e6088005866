// Package testutil provides test databases and record fixtures for FinFlow
// packages. Every helper registers its own cleanup with the test.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
	"github.com/Veraticus/finflow/internal/storage"
	"github.com/Veraticus/finflow/internal/testutil/records"
)

// SeedPasswordHash is stored for seeded users. It is not a valid bcrypt hash,
// so seeded users can never log in; tests that need login go through signup.
const SeedPasswordHash = "seeded-user-without-password"

// TestDB represents a migrated in-memory database with one seeded user.
type TestDB struct {
	Storage service.Storage
	User    *model.User
	Records records.Set
	t       *testing.T
}

// SetupTestDB creates an in-memory database, migrates it, and seeds a user.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	txns, _ := db.Storage.GetUserTransactions(ctx, db.User.ID)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithBuilder seeds the records produced by configure for the
// default user.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b records.Builder) records.Builder {
//		return b.WithFixture(records.FixtureMixed)
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(records.Builder) records.Builder) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Configure: configure})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup func(context.Context, service.Storage, *model.User) error
	Configure   func(records.Builder) records.Builder
	UserName    string
	UserEmail   string
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	user := &model.User{Name: opts.UserName, Email: opts.UserEmail}
	if user.Name == "" {
		user.Name = "Test User"
	}
	if user.Email == "" {
		user.Email = "test@example.com"
	}
	if err := store.CreateUser(ctx, user, SeedPasswordHash); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	db := &TestDB{Storage: store, User: user, t: t}

	if opts.Configure != nil {
		set, err := opts.Configure(records.NewBuilder(t, user.ID)).Build(ctx, store)
		if err != nil {
			t.Fatalf("failed to seed records: %v", err)
		}
		db.Records = set
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store, user); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// MustTransactions returns every transaction of the seeded user or fails the test.
func (db *TestDB) MustTransactions() []model.Transaction {
	db.t.Helper()
	txns, err := db.Storage.GetUserTransactions(context.Background(), db.User.ID)
	if err != nil {
		db.t.Fatalf("failed to load transactions: %v", err)
	}
	return txns
}
