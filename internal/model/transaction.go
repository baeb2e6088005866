// Package model defines the records FinFlow stores for a user.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
)

// DateLayout is the calendar-date format used for every record date.
const DateLayout = "2006-01-02"

// TransactionType carries the direction of a transaction.
type TransactionType string

const (
	// TypeExpense is money leaving the user.
	TypeExpense TransactionType = "expense"
	// TypeIncome is money received by the user.
	TypeIncome TransactionType = "income"
	// TypeInvestment is money moved into an investment.
	TypeInvestment TransactionType = "investment"
)

// TransactionTypes lists every type in display order.
var TransactionTypes = []TransactionType{TypeExpense, TypeIncome, TypeInvestment}

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeExpense, TypeIncome, TypeInvestment:
		return true
	}
	return false
}

// ParseTransactionType parses a case-insensitive transaction type.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return t, nil
}

// Recurrence is how often a recurring transaction repeats.
type Recurrence string

// Recurrence values. Only declared; nothing expands recurring transactions.
const (
	RecurrenceNone      Recurrence = "None"
	RecurrenceDaily     Recurrence = "Daily"
	RecurrenceWeekly    Recurrence = "Weekly"
	RecurrenceBiweekly  Recurrence = "Biweekly"
	RecurrenceMonthly   Recurrence = "Monthly"
	RecurrenceQuarterly Recurrence = "Quarterly"
	RecurrenceYearly    Recurrence = "Yearly"
)

// Recurrences lists every recurrence in display order.
var Recurrences = []Recurrence{
	RecurrenceNone,
	RecurrenceDaily,
	RecurrenceWeekly,
	RecurrenceBiweekly,
	RecurrenceMonthly,
	RecurrenceQuarterly,
	RecurrenceYearly,
}

// ParseRecurrence parses a case-insensitive recurrence name.
func ParseRecurrence(s string) (Recurrence, error) {
	trimmed := strings.TrimSpace(s)
	for _, r := range Recurrences {
		if strings.EqualFold(string(r), trimmed) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown recurrence %q", s)
}

// Transaction is a plain income, expense or investment record.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	ID          string
	UserID      string
	Title       string
	Category    string
	Notes       string
	ExternalID  string // FITID or bank feed id for imported rows
	Type        TransactionType
	Currency    currency.Code
	Recurrence  Recurrence
	Amount      float64
	IsRecurring bool
}

// DateString returns the transaction date as YYYY-MM-DD.
func (t *Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
