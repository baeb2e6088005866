// Package auth holds the signed-in user for the lifetime of a process and
// across runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// Account rules.
const (
	MinNameLength     = 2
	MinPasswordLength = 6
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrSessionNotSaved is returned by Signup when the account was created and
// signed in for this process but the session file could not be written.
var ErrSessionNotSaved = errors.New("account created but session not saved")

// Session is the identity of the person using FinFlow. It is passed
// explicitly to whatever needs to know who is signed in.
type Session struct {
	users   service.UserStore
	persist Persister
	logger  *slog.Logger
	current *model.User
	cost    int
	mu      sync.RWMutex
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Session) { s.cost = cost }
}

// NewSession creates a signed-out session.
func NewSession(users service.UserStore, persist Persister, opts ...Option) *Session {
	s := &Session{
		users:   users,
		persist: persist,
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = common.ComponentLogger(s.logger, "auth")
	return s
}

// Restore signs the persisted user back in. A corrupt session file or one
// naming a user that no longer exists is removed and the session stays
// signed out.
func (s *Session) Restore(ctx context.Context) error {
	stored, err := s.persist.Load()
	if errors.Is(err, ErrCorruptSession) {
		s.logger.Warn("discarding corrupt session", "error", err)
		return s.persist.Clear()
	}
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}

	user, err := s.users.GetUserByID(ctx, stored.ID)
	if errors.Is(err, common.ErrNotFound) {
		s.logger.Warn("discarding session for missing user", "user_id", stored.ID)
		return s.persist.Clear()
	}
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.set(user)
	return nil
}

// Login checks the credentials and signs the user in.
func (s *Session) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", common.ErrInvalidInput)
	}

	user, hash, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.signIn(user); err != nil {
		return err
	}
	s.logger.Info("signed in", "user_id", user.ID)
	return nil
}

// Signup creates an account and signs it in.
func (s *Session) Signup(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Name: name, Email: email, DefaultCurrency: currency.Default}
	if err := s.users.CreateUser(ctx, user, string(hash)); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return fmt.Errorf("%w: an account with email %s already exists", common.ErrInvalidInput, email)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	// The account exists from here on.
	s.set(user)
	s.logger.Info("signed up", "user_id", user.ID)
	if err := s.persist.Save(user); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionNotSaved, err)
	}
	return nil
}

// Logout signs the user out and forgets the persisted session.
func (s *Session) Logout() error {
	s.set(nil)
	return s.persist.Clear()
}

// CurrentUser returns a copy of the signed-in user.
func (s *Session) CurrentUser() (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	user := *s.current
	return &user, true
}

// IsAuthenticated reports whether anyone is signed in.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// UpdateProfile changes the signed-in user's name and email.
func (s *Session) UpdateProfile(ctx context.Context, name, email string) error {
	user, err := s.require()
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}

	if err := s.users.UpdateUserProfile(ctx, user.ID, name, email); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return fmt.Errorf("%w: email %s is already in use", common.ErrInvalidInput, email)
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	user.Name = name
	user.Email = email
	return s.signIn(user)
}

// ChangePassword replaces the password after checking the current one.
func (s *Session) ChangePassword(ctx context.Context, current, next, confirm string) error {
	user, err := s.require()
	if err != nil {
		return err
	}

	if err := ValidatePassword(next); err != nil {
		return err
	}
	if next != confirm {
		return fmt.Errorf("%w: passwords don't match", common.ErrInvalidInput)
	}

	_, hash, err := s.users.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, string(newHash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetDefaultCurrency stores the signed-in user's preferred display currency.
func (s *Session) SetDefaultCurrency(ctx context.Context, code currency.Code) error {
	user, err := s.require()
	if err != nil {
		return err
	}
	if !code.Valid() {
		return fmt.Errorf("%w: %w %q", common.ErrInvalidInput, currency.ErrUnknownCurrency, code)
	}

	if err := s.users.UpdateUserCurrency(ctx, user.ID, code); err != nil {
		return fmt.Errorf("failed to update currency: %w", err)
	}

	user.DefaultCurrency = code
	return s.signIn(user)
}

func (s *Session) require() (*model.User, error) {
	user, ok := s.CurrentUser()
	if !ok {
		return nil, common.ErrNotAuthenticated
	}
	return user, nil
}

func (s *Session) signIn(user *model.User) error {
	if err := s.persist.Save(user); err != nil {
		return err
	}
	s.set(user)
	return nil
}

func (s *Session) set(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = user
}

// ValidateName requires at least MinNameLength characters.
func ValidateName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < MinNameLength {
		return fmt.Errorf("%w: name must be at least %d characters", common.ErrInvalidInput, MinNameLength)
	}
	return nil
}

// ValidateEmail requires a bare address such as jo@example.com.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address, "@") {
		return fmt.Errorf("%w: invalid email address %q", common.ErrInvalidInput, email)
	}
	return nil
}

// ValidatePassword requires at least MinPasswordLength characters.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidInput, MinPasswordLength)
	}
	return nil
}
