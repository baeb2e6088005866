package report

import (
	"fmt"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/shopspring/decimal"
)

// HoldingKind distinguishes stocks from deposits in Holdings.
type HoldingKind string

// Holding kinds.
const (
	KindStock        HoldingKind = "stock"
	KindFixedDeposit HoldingKind = "fixed-deposit"
)

// Holding is one investment valued in the display currency.
type Holding struct {
	Date       time.Time // purchase or start date
	Kind       HoldingKind
	ID         string
	Name       string
	Detail     string // ticker and shares, or rate and maturity
	Cost       float64
	Value      float64
	Gain       float64
	GainPct    float64
	Matured    bool
	PriceKnown bool
}

// Holdings lists every stock followed by every deposit, valued as of asOf.
func Holdings(stocks []model.StockInvestment, deposits []model.FixedDeposit, display currency.Code, asOf time.Time) ([]Holding, error) {
	out := make([]Holding, 0, len(stocks)+len(deposits))

	for i := range stocks {
		s := &stocks[i]
		h, err := newHolding(s.Cost(), s.Value(), s.Currency, display)
		if err != nil {
			return nil, fmt.Errorf("stock %s: %w", s.ID, err)
		}
		h.Kind = KindStock
		h.ID = s.ID
		h.Name = s.Name
		h.Date = s.PurchaseDate
		h.Detail = fmt.Sprintf("%s x %s", s.Ticker, decimal.NewFromFloat(s.Shares).String())
		h.PriceKnown = s.CurrentPrice != nil
		out = append(out, h)
	}

	for i := range deposits {
		d := &deposits[i]
		h, err := newHolding(d.Amount, d.AccruedValue(asOf), d.Currency, display)
		if err != nil {
			return nil, fmt.Errorf("deposit %s: %w", d.ID, err)
		}
		h.Kind = KindFixedDeposit
		h.ID = d.ID
		h.Name = d.BankName
		h.Date = d.StartDate
		h.Detail = fmt.Sprintf("%s%% until %s", decimal.NewFromFloat(d.InterestRate).String(), d.MaturityDate.Format(model.DateLayout))
		h.Matured = d.Matured(asOf)
		h.PriceKnown = true
		out = append(out, h)
	}

	return out, nil
}

func newHolding(cost, value float64, from, to currency.Code) (Holding, error) {
	var c, v total
	if err := c.add(cost, from, to); err != nil {
		return Holding{}, err
	}
	if err := v.add(value, from, to); err != nil {
		return Holding{}, err
	}
	return Holding{
		Cost:    c.float(),
		Value:   v.float(),
		Gain:    v.sum.Sub(c.sum).InexactFloat64(),
		GainPct: growth(c.sum, v.sum),
	}, nil
}
