package submission

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/shopspring/decimal"
)

// Form is the raw input of the add-transaction form. Every field is the
// text the user typed; parsing happens during validation.
type Form struct {
	Type       string
	Category   string
	Title      string
	Amount     string
	Date       string
	Notes      string
	Currency   string
	Recurrence string

	// Stock purchases.
	Ticker       string
	Shares       string
	CurrentPrice string

	// Fixed deposits.
	BankName     string
	InterestRate string
	MaturityDate string

	IsRecurring bool
}

// Form field names, as reported by FieldError.
const (
	FieldType         = "type"
	FieldCategory     = "category"
	FieldTitle        = "title"
	FieldAmount       = "amount"
	FieldDate         = "date"
	FieldCurrency     = "currency"
	FieldRecurrence   = "recurrence"
	FieldTicker       = "ticker"
	FieldShares       = "shares"
	FieldCurrentPrice = "current_price"
	FieldBankName     = "bank_name"
	FieldInterestRate = "interest_rate"
	FieldMaturityDate = "maturity_date"
)

// FieldError rejects one form field. It matches common.ErrInvalidInput.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, common.ErrInvalidInput) succeed.
func (e *FieldError) Unwrap() error {
	return common.ErrInvalidInput
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fieldErr(field, "is required")
	}
	return value, nil
}

// parseNumber parses a decimal number, allowing thousands separators.
func parseNumber(field, raw string) (float64, error) {
	raw, err := required(field, raw)
	if err != nil {
		return 0, err
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, fieldErr(field, "%q is not a number", raw)
	}
	n := d.InexactFloat64()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fieldErr(field, "%q is not a finite number", raw)
	}
	return n, nil
}

func parsePositive(field, raw string) (float64, error) {
	n, err := parseNumber(field, raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fieldErr(field, "must be greater than zero")
	}
	return n, nil
}

func parseDate(field, raw string) (time.Time, error) {
	raw, err := required(field, raw)
	if err != nil {
		return time.Time{}, err
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, fieldErr(field, "must be a date like 2024-01-31")
	}
	return d, nil
}

// parseDateOr parses raw, or returns fallback when raw is blank.
func parseDateOr(field, raw string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return model.Day(fallback), nil
	}
	return parseDate(field, raw)
}
