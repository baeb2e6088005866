// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
)

// NewTransaction is the payload for creating a plain transaction.
// An empty Recurrence is omitted and the store records None.
type NewTransaction struct {
	Date        time.Time
	UserID      string
	Title       string
	Category    string
	Notes       string
	ExternalID  string
	Type        model.TransactionType
	Currency    currency.Code
	Recurrence  model.Recurrence
	Amount      float64
	IsRecurring bool
}

// NewStockInvestment is the payload for creating a stock purchase.
type NewStockInvestment struct {
	PurchaseDate  time.Time
	CurrentPrice  *float64
	UserID        string
	Name          string
	Ticker        string
	Currency      currency.Code
	Shares        float64
	PurchasePrice float64
}

// NewFixedDeposit is the payload for creating a fixed deposit.
type NewFixedDeposit struct {
	StartDate    time.Time
	MaturityDate time.Time
	UserID       string
	BankName     string
	Currency     currency.Code
	Amount       float64
	InterestRate float64
}

// RecordCreator is the create half of the record store.
type RecordCreator interface {
	CreateTransaction(ctx context.Context, payload NewTransaction) (*model.Transaction, error)
	CreateStockInvestment(ctx context.Context, payload NewStockInvestment) (*model.StockInvestment, error)
	CreateFixedDeposit(ctx context.Context, payload NewFixedDeposit) (*model.FixedDeposit, error)
}

// RecordReader is the read half of the record store. Every read is scoped
// to one user.
type RecordReader interface {
	GetUserTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error)
	GetStockInvestments(ctx context.Context, userID string) ([]model.StockInvestment, error)
	GetFixedDepositInvestments(ctx context.Context, userID string) ([]model.FixedDeposit, error)
}

// RecordStore holds the transactions and investments of every user.
type RecordStore interface {
	RecordCreator
	RecordReader
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// UserStore holds user accounts and their credentials.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User, passwordHash string) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, string, error)
	UpdateUserProfile(ctx context.Context, id, name, email string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUserCurrency(ctx context.Context, id string, code currency.Code) error
}

// ImportStore records transactions that arrive from bank files and feeds.
type ImportStore interface {
	// ImportTransaction inserts payload unless the user already has a
	// transaction with the same ExternalID. It reports whether a row was
	// inserted.
	ImportTransaction(ctx context.Context, payload NewTransaction) (bool, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	RecordStore
	UserStore
	ImportStore

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// WithDefaults fills unset fields with the default backoff.
func (o RetryOptions) WithDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2.0
	}
	return o
}
