package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_Users(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	user := &model.User{Name: "Priya", Email: " priya@example.com "}
	require.NoError(t, store.CreateUser(ctx, user, "hash-1"))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "priya@example.com", user.Email)
	assert.Equal(t, currency.USD, user.DefaultCurrency)

	byEmail, hash, err := store.GetUserByEmail(ctx, "PRIYA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "hash-1", hash)

	byID, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Priya", byID.Name)

	_, _, err = store.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_UpdateUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	user := createTestUser(t, store, "update@example.com")
	taken := createTestUser(t, store, "taken@example.com")

	require.NoError(t, store.UpdateUserProfile(ctx, user.ID, "Renamed", "renamed@example.com"))
	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "renamed@example.com", got.Email)

	err = store.UpdateUserProfile(ctx, user.ID, "Renamed", taken.Email)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	require.NoError(t, store.UpdateUserPassword(ctx, user.ID, "hash-2"))
	_, hash, err := store.GetUserByEmail(ctx, "renamed@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", hash)

	require.NoError(t, store.UpdateUserCurrency(ctx, user.ID, currency.INR))
	got, err = store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, currency.INR, got.DefaultCurrency)

	err = store.UpdateUserCurrency(ctx, user.ID, "JPY")
	assert.ErrorIs(t, err, currency.ErrUnknownCurrency)

	err = store.UpdateUserPassword(ctx, "missing", "hash")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
