package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/finflow/internal/model"
)

// StubFeed is an in-memory bank feed used in place of Plaid by sync tests.
// GetTransactions returns the stored transactions whose day falls inside the
// requested range, the way Plaid filters by posting date.
type StubFeed struct {
	Transactions []model.Transaction
	Accounts     []string
	// Err, when set, fails every call.
	Err error

	Requests        []DateRange
	AccountRequests int
}

// DateRange is one GetTransactions request seen by a StubFeed.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// GetTransactions records the range and returns the matching transactions.
func (f *StubFeed) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	f.Requests = append(f.Requests, DateRange{Start: startDate, End: endDate})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}

	first, last := startDate.Format(model.DateLayout), endDate.Format(model.DateLayout)
	matched := []model.Transaction{}
	for _, txn := range f.Transactions {
		day := txn.Date.Format(model.DateLayout)
		if day < first || day > last {
			continue
		}
		matched = append(matched, txn)
	}
	return matched, nil
}

// GetAccounts returns the configured account names.
func (f *StubFeed) GetAccounts(ctx context.Context) ([]string, error) {
	f.AccountRequests++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]string{}, f.Accounts...), nil
}

var _ TransactionFetcher = (*StubFeed)(nil)
