package model

import (
	"testing"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType(" Income ")
	require.NoError(t, err)
	assert.Equal(t, TypeIncome, got)

	_, err = ParseTransactionType("transfer")
	assert.Error(t, err)
}

func TestParseRecurrence(t *testing.T) {
	got, err := ParseRecurrence("biweekly")
	require.NoError(t, err)
	assert.Equal(t, RecurrenceBiweekly, got)

	_, err = ParseRecurrence("fortnightly")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d := date(t, "2024-01-01")
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, "2024-01-01", d.Format(DateLayout))

	_, err := ParseDate("01/02/2024")
	assert.Error(t, err)
}

func TestStockInvestment_Value(t *testing.T) {
	s := StockInvestment{Shares: 10, PurchasePrice: 100}
	assert.InDelta(t, 1000, s.Cost(), 1e-9)
	assert.InDelta(t, 1000, s.Value(), 1e-9, "falls back to cost")

	price := 120.0
	s.CurrentPrice = &price
	assert.InDelta(t, 1200, s.Value(), 1e-9)
}

func TestFixedDeposit_AccruedValue(t *testing.T) {
	fd := FixedDeposit{
		Amount:       1000,
		InterestRate: 7.3,
		StartDate:    date(t, "2024-01-01"),
		MaturityDate: date(t, "2025-01-01"),
		Currency:     currency.INR,
	}

	tests := []struct {
		asOf string
		name string
		want float64
	}{
		{name: "before start", asOf: "2023-12-01", want: 1000},
		{name: "on start", asOf: "2024-01-01", want: 1000},
		{name: "after 100 days", asOf: "2024-04-10", want: 1000 * (1 + 0.073*100/365)},
		{name: "capped at maturity", asOf: "2030-01-01", want: 1000 * (1 + 0.073*366/365)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, fd.AccruedValue(date(t, tt.asOf)), 1e-9)
		})
	}

	assert.InDelta(t, fd.AccruedValue(date(t, "2030-01-01")), fd.MaturityValue(), 1e-9)
	assert.True(t, fd.Matured(date(t, "2025-01-01")))
	assert.False(t, fd.Matured(date(t, "2024-12-31")))
}

func TestSuggestedCategories(t *testing.T) {
	investments := SuggestedCategories(TypeInvestment)
	names := make([]string, 0, len(investments))
	for _, c := range investments {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, CategoryStocks)
	assert.Contains(t, names, CategoryFixedDeposit)
	assert.Equal(t, "Food & Dining", CategoryLabel("food"))
	assert.Equal(t, "custom", CategoryLabel("custom"))
}

func TestUser_Currency(t *testing.T) {
	u := User{}
	assert.Equal(t, currency.USD, u.Currency())
	u.DefaultCurrency = currency.INR
	assert.Equal(t, currency.INR, u.Currency())
}
