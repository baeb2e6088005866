package model

import (
	"time"

	"github.com/Veraticus/finflow/internal/currency"
)

// StockInvestment is a purchase of shares in one listed company.
type StockInvestment struct {
	PurchaseDate  time.Time
	CreatedAt     time.Time
	CurrentPrice  *float64
	ID            string
	UserID        string
	Name          string
	Ticker        string // exchange code, e.g. NASDAQ:GOOGL
	Currency      currency.Code
	Shares        float64
	PurchasePrice float64
}

// Cost is what the shares were bought for.
func (s *StockInvestment) Cost() float64 {
	return s.Shares * s.PurchasePrice
}

// Value is the shares at the current price, or at cost when no current
// price is known.
func (s *StockInvestment) Value() float64 {
	if s.CurrentPrice == nil {
		return s.Cost()
	}
	return s.Shares * *s.CurrentPrice
}

// FixedDeposit is a term deposit with a bank.
type FixedDeposit struct {
	StartDate    time.Time
	MaturityDate time.Time
	CreatedAt    time.Time
	ID           string
	UserID       string
	BankName     string
	Currency     currency.Code
	Amount       float64
	InterestRate float64 // annual percentage
}

const daysPerYear = 365

// AccruedValue is the principal plus simple interest earned from the start
// date up to asOf, never past maturity.
func (f *FixedDeposit) AccruedValue(asOf time.Time) float64 {
	end := Day(asOf)
	if end.After(f.MaturityDate) {
		end = f.MaturityDate
	}
	if !end.After(f.StartDate) {
		return f.Amount
	}

	days := end.Sub(f.StartDate).Hours() / 24
	return f.Amount * (1 + f.InterestRate/100*days/daysPerYear)
}

// MaturityValue is the value the deposit pays out at maturity.
func (f *FixedDeposit) MaturityValue() float64 {
	return f.AccruedValue(f.MaturityDate)
}

// Matured reports whether the deposit has reached maturity by asOf.
func (f *FixedDeposit) Matured(asOf time.Time) bool {
	return !Day(asOf).Before(f.MaturityDate)
}
