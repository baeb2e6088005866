// Package records provides a fluent builder for seeding transactions and
// investments in tests.
//
// Example usage:
//
//	set, err := records.NewBuilder(t, userID).
//		WithFixture(records.FixtureMixed).
//		WithExpense("Coffee", "food", 4.50, "2024-03-01").
//		Build(ctx, store)
package records

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
)

// Builder provides a fluent interface for constructing test records.
type Builder interface {
	// WithExpense adds a USD expense on date (YYYY-MM-DD).
	WithExpense(title, category string, amount float64, date string) Builder

	// WithIncome adds a USD income on date (YYYY-MM-DD).
	WithIncome(title, category string, amount float64, date string) Builder

	// WithTransaction adds an arbitrary transaction payload. UserID is filled in.
	WithTransaction(payload service.NewTransaction) Builder

	// WithStock adds a stock purchase. UserID is filled in.
	WithStock(payload service.NewStockInvestment) Builder

	// WithFixedDeposit adds a fixed deposit. UserID is filled in.
	WithFixedDeposit(payload service.NewFixedDeposit) Builder

	// WithFixture adds every record from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the records in store and returns what was created.
	Build(ctx context.Context, store service.RecordCreator) (Set, error)
}

// Set is what a Builder created.
type Set struct {
	Transactions  []model.Transaction
	Stocks        []model.StockInvestment
	FixedDeposits []model.FixedDeposit
}

type builder struct {
	t        *testing.T
	userID   string
	txns     []service.NewTransaction
	stocks   []service.NewStockInvestment
	deposits []service.NewFixedDeposit
}

// NewBuilder creates a builder whose records belong to userID.
func NewBuilder(t *testing.T, userID string) Builder {
	t.Helper()
	return &builder{t: t, userID: userID}
}

// Date parses a YYYY-MM-DD date or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("invalid fixture date: %v", err)
	}
	return d
}

func (b *builder) plain(typ model.TransactionType, title, category string, amount float64, date string) Builder {
	b.t.Helper()
	return b.WithTransaction(service.NewTransaction{
		Title:    title,
		Category: category,
		Amount:   amount,
		Date:     Date(b.t, date),
		Type:     typ,
		Currency: currency.USD,
	})
}

func (b *builder) WithExpense(title, category string, amount float64, date string) Builder {
	b.t.Helper()
	return b.plain(model.TypeExpense, title, category, amount, date)
}

func (b *builder) WithIncome(title, category string, amount float64, date string) Builder {
	b.t.Helper()
	return b.plain(model.TypeIncome, title, category, amount, date)
}

func (b *builder) WithTransaction(payload service.NewTransaction) Builder {
	payload.UserID = b.userID
	b.txns = append(b.txns, payload)
	return b
}

func (b *builder) WithStock(payload service.NewStockInvestment) Builder {
	payload.UserID = b.userID
	b.stocks = append(b.stocks, payload)
	return b
}

func (b *builder) WithFixedDeposit(payload service.NewFixedDeposit) Builder {
	payload.UserID = b.userID
	b.deposits = append(b.deposits, payload)
	return b
}

func (b *builder) WithFixture(fixture Fixture) Builder {
	b.t.Helper()
	fixture(b.t, b)
	return b
}

func (b *builder) Build(ctx context.Context, store service.RecordCreator) (Set, error) {
	var set Set

	for _, payload := range b.txns {
		txn, err := store.CreateTransaction(ctx, payload)
		if err != nil {
			return Set{}, fmt.Errorf("failed to create transaction %q: %w", payload.Title, err)
		}
		set.Transactions = append(set.Transactions, *txn)
	}

	for _, payload := range b.stocks {
		stock, err := store.CreateStockInvestment(ctx, payload)
		if err != nil {
			return Set{}, fmt.Errorf("failed to create stock %q: %w", payload.Ticker, err)
		}
		set.Stocks = append(set.Stocks, *stock)
	}

	for _, payload := range b.deposits {
		fd, err := store.CreateFixedDeposit(ctx, payload)
		if err != nil {
			return Set{}, fmt.Errorf("failed to create fixed deposit at %q: %w", payload.BankName, err)
		}
		set.FixedDeposits = append(set.FixedDeposits, *fd)
	}

	return set, nil
}
