package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/finflow/internal/model"
)

// TransactionFetcher fetches bank feed transactions. Returned transactions
// carry an ExternalID but no UserID.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccounts(ctx context.Context) ([]string, error)
}
