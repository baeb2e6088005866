package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestSession(t *testing.T) (*Session, *testutil.TestDB, *FileStore) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	files := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	return NewSession(db.Storage, files, WithBcryptCost(bcrypt.MinCost)), db, files
}

func TestSession_SignupAndLogin(t *testing.T) {
	s, _, files := newTestSession(t)
	ctx := context.Background()

	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Signup(ctx, "Asha", "asha@example.com", "secret1"))
	user, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, currency.USD, user.DefaultCurrency)

	_, err := os.Stat(files.Path())
	require.NoError(t, err, "session is persisted")

	require.NoError(t, s.Logout())
	assert.False(t, s.IsAuthenticated())
	_, err = os.Stat(files.Path())
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, s.Login(ctx, "asha@example.com", "wrong-password"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.Login(ctx, "nobody@example.com", "secret1"), ErrInvalidCredentials)
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login(ctx, "ASHA@example.com", "secret1"))
	again, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user.ID, again.ID)
}

// failingPersister keeps nothing and fails every Save.
type failingPersister struct{ err error }

func (f failingPersister) Load() (*model.User, error) { return nil, nil }
func (f failingPersister) Save(*model.User) error { return f.err }
func (f failingPersister) Clear() error { return nil }

func TestSession_SignupSaveFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	diskFull := errors.New("no space left on device")
	s := NewSession(db.Storage, failingPersister{err: diskFull}, WithBcryptCost(bcrypt.MinCost))
	ctx := context.Background()

	err := s.Signup(ctx, "Asha", "asha@example.com", "secret1")
	require.ErrorIs(t, err, ErrSessionNotSaved)
	assert.ErrorIs(t, err, diskFull)

	user, ok := s.CurrentUser()
	require.True(t, ok, "signed in for this process despite the save failure")
	assert.Equal(t, "asha@example.com", user.Email)

	err = s.Signup(ctx, "Asha", "asha@example.com", "secret1")
	assert.ErrorIs(t, err, common.ErrInvalidInput, "the account already exists")

	files := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	fresh := NewSession(db.Storage, files, WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, fresh.Login(ctx, "asha@example.com", "secret1"), "created account can log in")
}

func TestSession_SignupValidation(t *testing.T) {
	s, db, _ := newTestSession(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		fullName string
		email    string
		password string
	}{
		{name: "short name", fullName: "A", email: "a@example.com", password: "secret1"},
		{name: "bad email", fullName: "Asha", email: "not-an-email", password: "secret1"},
		{name: "display-name email", fullName: "Asha", email: "Asha <a@example.com>", password: "secret1"},
		{name: "short password", fullName: "Asha", email: "a@example.com", password: "12345"},
		{name: "taken email", fullName: "Asha", email: db.User.Email, password: "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Signup(ctx, tt.fullName, tt.email, tt.password)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
			assert.False(t, s.IsAuthenticated())
		})
	}
}

func TestSession_Restore(t *testing.T) {
	s, db, files := newTestSession(t)
	ctx := context.Background()

	t.Run("nothing persisted", func(t *testing.T) {
		require.NoError(t, s.Restore(ctx))
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("valid session", func(t *testing.T) {
		require.NoError(t, files.Save(db.User))
		fresh := NewSession(db.Storage, files)
		require.NoError(t, fresh.Restore(ctx))
		user, ok := fresh.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, db.User.ID, user.ID)
	})

	t.Run("corrupt file is removed", func(t *testing.T) {
		require.NoError(t, os.WriteFile(files.Path(), []byte("{not json"), 0600))
		fresh := NewSession(db.Storage, files)
		require.NoError(t, fresh.Restore(ctx))
		assert.False(t, fresh.IsAuthenticated())
		_, err := os.Stat(files.Path())
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("deleted user is signed out", func(t *testing.T) {
		ghost := *db.User
		ghost.ID = "deleted-user"
		require.NoError(t, files.Save(&ghost))
		fresh := NewSession(db.Storage, files)
		require.NoError(t, fresh.Restore(ctx))
		assert.False(t, fresh.IsAuthenticated())
	})
}

func TestSession_Settings(t *testing.T) {
	s, _, files := newTestSession(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdateProfile(ctx, "Name", "n@example.com"), common.ErrNotAuthenticated)
	assert.ErrorIs(t, s.SetDefaultCurrency(ctx, currency.INR), common.ErrNotAuthenticated)

	require.NoError(t, s.Signup(ctx, "Ravi", "ravi@example.com", "secret1"))

	require.NoError(t, s.UpdateProfile(ctx, "Ravi K", "ravi.k@example.com"))
	user, _ := s.CurrentUser()
	assert.Equal(t, "Ravi K", user.Name)

	persisted, err := files.Load()
	require.NoError(t, err)
	assert.Equal(t, "ravi.k@example.com", persisted.Email)

	require.NoError(t, s.SetDefaultCurrency(ctx, currency.INR))
	user, _ = s.CurrentUser()
	assert.Equal(t, currency.INR, user.DefaultCurrency)
	assert.ErrorIs(t, s.SetDefaultCurrency(ctx, "EUR"), common.ErrInvalidInput)

	assert.ErrorIs(t, s.ChangePassword(ctx, "secret1", "newpass1", "different"), common.ErrInvalidInput)
	assert.ErrorIs(t, s.ChangePassword(ctx, "secret1", "short", "short"), common.ErrInvalidInput)
	assert.ErrorIs(t, s.ChangePassword(ctx, "wrong", "newpass1", "newpass1"), ErrInvalidCredentials)
	require.NoError(t, s.ChangePassword(ctx, "secret1", "newpass1", "newpass1"))

	require.NoError(t, s.Logout())
	assert.ErrorIs(t, s.Login(ctx, "ravi.k@example.com", "secret1"), ErrInvalidCredentials)
	require.NoError(t, s.Login(ctx, "ravi.k@example.com", "newpass1"))
}

func TestCurrentUser_ReturnsCopy(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.NoError(t, s.Signup(context.Background(), "Meera", "meera@example.com", "secret1"))

	user, _ := s.CurrentUser()
	user.Name = "Mutated"

	again, _ := s.CurrentUser()
	assert.Equal(t, "Meera", again.Name)
}
