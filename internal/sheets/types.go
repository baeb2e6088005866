package sheets

import (
	"context"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/report"
)

// Export is one user's report as written to a spreadsheet. Every amount
// except the per-transaction original amount is in Currency.
type Export struct {
	AsOf         time.Time
	UserName     string
	Currency     currency.Code
	Summary      report.BalanceSummary
	Monthly      []report.MonthFlow
	Categories   []report.CategoryTotal
	Holdings     []report.Holding
	Transactions []model.Transaction
}

// ReportWriter writes an export and returns the spreadsheet id.
type ReportWriter interface {
	Export(ctx context.Context, export Export) (string, error)
}
