package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/shopspring/decimal"
)

// MonthFlow is one month of income and expenses.
type MonthFlow struct {
	Month    time.Time // first day of the month, UTC
	Income   float64
	Expenses float64
}

// Label renders the month as "Jan 2024".
func (m MonthFlow) Label() string {
	return m.Month.Format("Jan 2006")
}

// Net is income less expenses.
func (m MonthFlow) Net() float64 {
	return m.Income - m.Expenses
}

// MonthlyFlow returns the last months calendar months up to and including
// the month of asOf, oldest first. Months without transactions are zero.
func MonthlyFlow(txns []model.Transaction, display currency.Code, months int, asOf time.Time) ([]MonthFlow, error) {
	if months <= 0 {
		return nil, nil
	}

	last := monthStart(asOf)
	first := last.AddDate(0, -(months - 1), 0)

	type sums struct{ income, expenses total }
	buckets := make([]sums, months)

	for i := range txns {
		t := &txns[i]
		m := monthStart(t.Date)
		if m.Before(first) || m.After(last) {
			continue
		}
		idx := monthsBetween(first, m)

		var err error
		switch t.Type {
		case model.TypeIncome:
			err = buckets[idx].income.add(t.Amount, t.Currency, display)
		case model.TypeExpense:
			err = buckets[idx].expenses.add(t.Amount, t.Currency, display)
		}
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
	}

	out := make([]MonthFlow, months)
	for i := range buckets {
		out[i] = MonthFlow{
			Month:    first.AddDate(0, i, 0),
			Income:   buckets[i].income.float(),
			Expenses: buckets[i].expenses.float(),
		}
	}
	return out, nil
}

// CategoryTotal is the amount spent or received in one category.
type CategoryTotal struct {
	Category string
	Label    string
	Total    float64
	Share    float64 // percent of the type's total
	Count    int
}

// CategoryBreakdown totals the transactions of type t per category, largest
// first.
func CategoryBreakdown(txns []model.Transaction, t model.TransactionType, display currency.Code) ([]CategoryTotal, error) {
	byCategory := make(map[string]*total)
	counts := make(map[string]int)
	var grand total

	for i := range txns {
		txn := &txns[i]
		if txn.Type != t {
			continue
		}
		category := txn.Category
		if category == "" {
			category = model.CategoryOther
		}
		acc, ok := byCategory[category]
		if !ok {
			acc = &total{}
			byCategory[category] = acc
		}
		if err := acc.add(txn.Amount, txn.Currency, display); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", txn.ID, err)
		}
		if err := grand.add(txn.Amount, txn.Currency, display); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", txn.ID, err)
		}
		counts[category]++
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for category, acc := range byCategory {
		share := 0.0
		if !grand.sum.IsZero() {
			share = acc.sum.Div(grand.sum).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		out = append(out, CategoryTotal{
			Category: category,
			Label:    model.CategoryLabel(category),
			Total:    acc.float(),
			Share:    share,
			Count:    counts[category],
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
