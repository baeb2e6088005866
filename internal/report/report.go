// Package report computes balances, cash flow and holdings for one user's
// records in a single display currency.
package report

import (
	"fmt"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/shopspring/decimal"
)

// Input is everything one user has recorded.
type Input struct {
	Transactions []model.Transaction
	Stocks       []model.StockInvestment
	Deposits     []model.FixedDeposit
}

// BalanceSummary is the dashboard headline. Amounts are in Currency.
//
// Cash is income less expenses and plain investment transactions.
// InvestmentValue covers plain investment transactions at face value, stocks
// at their current price and deposits with interest accrued to date, so
// TotalBalance is Cash plus InvestmentValue. InvestmentGrowth is the gain on
// the invested cost in percent.
type BalanceSummary struct {
	Currency         currency.Code
	TotalBalance     float64
	Cash             float64
	Income           float64
	Expenses         float64
	InvestmentCost   float64
	InvestmentValue  float64
	InvestmentGrowth float64
}

// Summarize computes the balance summary as of asOf.
func Summarize(in Input, display currency.Code, asOf time.Time) (BalanceSummary, error) {
	if !display.Valid() {
		return BalanceSummary{}, fmt.Errorf("%w: %q", currency.ErrUnknownCurrency, display)
	}

	var income, expenses, invested, cost, value total
	for i := range in.Transactions {
		t := &in.Transactions[i]
		var err error
		switch t.Type {
		case model.TypeIncome:
			err = income.add(t.Amount, t.Currency, display)
		case model.TypeExpense:
			err = expenses.add(t.Amount, t.Currency, display)
		case model.TypeInvestment:
			err = invested.add(t.Amount, t.Currency, display)
		}
		if err != nil {
			return BalanceSummary{}, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
	}

	cost.sum = invested.sum
	value.sum = invested.sum
	for i := range in.Stocks {
		s := &in.Stocks[i]
		if err := cost.add(s.Cost(), s.Currency, display); err != nil {
			return BalanceSummary{}, fmt.Errorf("stock %s: %w", s.ID, err)
		}
		if err := value.add(s.Value(), s.Currency, display); err != nil {
			return BalanceSummary{}, fmt.Errorf("stock %s: %w", s.ID, err)
		}
	}
	for i := range in.Deposits {
		d := &in.Deposits[i]
		if err := cost.add(d.Amount, d.Currency, display); err != nil {
			return BalanceSummary{}, fmt.Errorf("deposit %s: %w", d.ID, err)
		}
		if err := value.add(d.AccruedValue(asOf), d.Currency, display); err != nil {
			return BalanceSummary{}, fmt.Errorf("deposit %s: %w", d.ID, err)
		}
	}

	cash := income.sum.Sub(expenses.sum).Sub(invested.sum)
	return BalanceSummary{
		Currency:         display,
		TotalBalance:     cash.Add(value.sum).InexactFloat64(),
		Cash:             cash.InexactFloat64(),
		Income:           income.float(),
		Expenses:         expenses.float(),
		InvestmentCost:   cost.float(),
		InvestmentValue:  value.float(),
		InvestmentGrowth: growth(cost.sum, value.sum),
	}, nil
}

// total accumulates converted amounts without float drift.
type total struct {
	sum decimal.Decimal
}

func (t *total) add(amount float64, from, to currency.Code) error {
	converted, err := currency.Convert(amount, from, to)
	if err != nil {
		return err
	}
	t.sum = t.sum.Add(decimal.NewFromFloat(converted))
	return nil
}

func (t *total) float() float64 {
	return t.sum.InexactFloat64()
}

// growth is the percentage change from cost to value, or zero with no cost.
func growth(cost, value decimal.Decimal) float64 {
	if cost.IsZero() {
		return 0
	}
	return value.Sub(cost).Div(cost).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
