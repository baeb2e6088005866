package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidInvestment  = errors.New("invalid investment")
	ErrInvalidUser        = errors.New("invalid user")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// validateNewTransaction validates a plain transaction payload.
func validateNewTransaction(p *service.NewTransaction) error {
	if p == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidTransaction)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidTransaction)
	}
	if !finite(p.Amount) {
		return fmt.Errorf("%w: amount must be a finite number", ErrInvalidTransaction)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, p.Type)
	}
	if !p.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidTransaction, p.Currency)
	}
	if p.Recurrence != "" {
		if _, err := model.ParseRecurrence(string(p.Recurrence)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
		}
	}
	return nil
}

// validateNewStock validates a stock purchase payload.
func validateNewStock(p *service.NewStockInvestment) error {
	if p == nil {
		return fmt.Errorf("%w: stock investment", ErrNilParameter)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidInvestment)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidInvestment)
	}
	if strings.TrimSpace(p.Ticker) == "" {
		return fmt.Errorf("%w: missing ticker", ErrInvalidInvestment)
	}
	if !finite(p.Shares) || p.Shares <= 0 {
		return fmt.Errorf("%w: shares must be positive", ErrInvalidInvestment)
	}
	if !finite(p.PurchasePrice) || p.PurchasePrice <= 0 {
		return fmt.Errorf("%w: purchase price must be positive", ErrInvalidInvestment)
	}
	if p.CurrentPrice != nil && (!finite(*p.CurrentPrice) || *p.CurrentPrice < 0) {
		return fmt.Errorf("%w: current price must not be negative", ErrInvalidInvestment)
	}
	if p.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: missing purchase date", ErrInvalidInvestment)
	}
	if !p.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidInvestment, p.Currency)
	}
	return nil
}

// validateNewFixedDeposit validates a fixed deposit payload.
func validateNewFixedDeposit(p *service.NewFixedDeposit) error {
	if p == nil {
		return fmt.Errorf("%w: fixed deposit", ErrNilParameter)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidInvestment)
	}
	if strings.TrimSpace(p.BankName) == "" {
		return fmt.Errorf("%w: missing bank name", ErrInvalidInvestment)
	}
	if !finite(p.Amount) || p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInvestment)
	}
	if !finite(p.InterestRate) || p.InterestRate <= 0 {
		return fmt.Errorf("%w: interest rate must be positive", ErrInvalidInvestment)
	}
	if p.StartDate.IsZero() || p.MaturityDate.IsZero() {
		return fmt.Errorf("%w: missing start or maturity date", ErrInvalidInvestment)
	}
	if p.MaturityDate.Before(p.StartDate) {
		return fmt.Errorf("%w: maturity %s is before start %s", ErrInvalidDateRange,
			p.MaturityDate.Format(model.DateLayout), p.StartDate.Format(model.DateLayout))
	}
	if !p.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidInvestment, p.Currency)
	}
	return nil
}

// validateUser validates a user about to be created.
func validateUser(user *model.User, passwordHash string) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(user.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidUser)
	}
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidUser)
	}
	if passwordHash == "" {
		return fmt.Errorf("%w: missing password hash", ErrInvalidUser)
	}
	if user.DefaultCurrency != "" && !user.DefaultCurrency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidUser, user.DefaultCurrency)
	}
	return nil
}
