package records

import (
	"testing"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/service"
)

// Fixture adds a predefined set of records to a builder.
type Fixture func(t *testing.T, b Builder)

// FixtureMonth is one month of ordinary cash flow in March 2024:
// 5000 income against 1450 of expenses.
func FixtureMonth(t *testing.T, b Builder) {
	t.Helper()
	b.WithIncome("Salary", "salary", 5000, "2024-03-01").
		WithExpense("Rent", "utilities", 1200, "2024-03-02").
		WithExpense("Groceries", "food", 180, "2024-03-09").
		WithExpense("Cinema", "entertainment", 70, "2024-03-16")
}

// FixtureInvestments is one priced stock, one unpriced stock and one fixed deposit.
func FixtureInvestments(t *testing.T, b Builder) {
	t.Helper()
	price := 200.0
	b.WithStock(service.NewStockInvestment{
		Name:          "Apple",
		Ticker:        "AAPL",
		Shares:        10,
		PurchasePrice: 150,
		CurrentPrice:  &price,
		Currency:      currency.USD,
		PurchaseDate:  Date(t, "2024-01-10"),
	}).WithStock(service.NewStockInvestment{
		Name:          "Infosys",
		Ticker:        "INFY",
		Shares:        2,
		PurchasePrice: 1670,
		Currency:      currency.INR,
		PurchaseDate:  Date(t, "2024-02-01"),
	}).WithFixedDeposit(service.NewFixedDeposit{
		BankName:     "SBI",
		Amount:       100000,
		InterestRate: 7.3,
		StartDate:    Date(t, "2024-01-01"),
		MaturityDate: Date(t, "2025-01-01"),
		Currency:     currency.INR,
	})
}

// FixtureMixed combines FixtureMonth and FixtureInvestments.
func FixtureMixed(t *testing.T, b Builder) {
	t.Helper()
	FixtureMonth(t, b)
	FixtureInvestments(t, b)
}
