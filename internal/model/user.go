package model

import (
	"time"

	"github.com/Veraticus/finflow/internal/currency"
)

// User is a signed-up FinFlow account. Every record belongs to one user.
type User struct {
	CreatedAt       time.Time     `json:"-"`
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	DefaultCurrency currency.Code `json:"default_currency,omitempty"`
}

// Currency returns the user's preferred display currency.
func (u *User) Currency() currency.Code {
	if u.DefaultCurrency.Valid() {
		return u.DefaultCurrency
	}
	return currency.Default
}
