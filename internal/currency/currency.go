// Package currency holds the supported currencies and the arithmetic and
// display rules for amounts expressed in them.
//
// Every rate is relative to the US dollar, so adding a currency only needs a
// new Descriptor: conversions between any two currencies pivot through USD.
package currency

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Code identifies a supported currency.
type Code string

// Supported currency codes.
const (
	USD Code = "USD"
	INR Code = "INR"
)

// Default is used when no currency was selected.
const Default = USD

// ErrUnknownCurrency is returned when a code is not in the currency table.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrNotFinite is returned by Format for NaN and infinite amounts.
var ErrNotFinite = errors.New("amount is not a finite number")

// Descriptor describes one supported currency.
type Descriptor struct {
	Code   Code
	Symbol string
	Name   string
	// ExchangeRate is the number of units of this currency per 1 USD.
	ExchangeRate float64
}

var descriptors = map[Code]Descriptor{
	USD: {
		Code:         USD,
		Symbol:       "$",
		Name:         "US Dollar",
		ExchangeRate: 1,
	},
	INR: {
		Code:         INR,
		Symbol:       "₹",
		Name:         "Indian Rupee",
		ExchangeRate: 83.5,
	},
}

// minorUnits is the number of decimal places every amount is displayed with.
const minorUnits = 2

// maxMinor is the largest count of minor units go-money's int64 formatter
// can hold.
var maxMinor = decimal.NewFromInt(math.MaxInt64)

// Valid reports whether c is a supported code.
func (c Code) Valid() bool {
	_, ok := descriptors[c]
	return ok
}

func (c Code) String() string {
	return string(c)
}

// Parse converts user or file input such as "inr" into a Code.
func Parse(s string) (Code, error) {
	code := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !code.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
	}
	return code, nil
}

// Lookup returns the descriptor for code.
func Lookup(code Code) (Descriptor, error) {
	d, ok := descriptors[code]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, string(code))
	}
	return d, nil
}

// Codes returns every supported code in alphabetical order.
func Codes() []Code {
	codes := make([]Code, 0, len(descriptors))
	for code := range descriptors {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Descriptors returns every descriptor ordered by code.
func Descriptors() []Descriptor {
	codes := Codes()
	out := make([]Descriptor, 0, len(codes))
	for _, code := range codes {
		out = append(out, descriptors[code])
	}
	return out
}

// Convert converts amount from one currency into another through USD.
// Equal codes return amount unchanged. No rounding is applied.
func Convert(amount float64, from, to Code) (float64, error) {
	fromDesc, err := Lookup(from)
	if err != nil {
		return 0, err
	}
	toDesc, err := Lookup(to)
	if err != nil {
		return 0, err
	}

	if from == to {
		return amount, nil
	}

	amountInUSD := amount
	if from != USD {
		amountInUSD = amount / fromDesc.ExchangeRate
	}

	if to == USD {
		return amountInUSD, nil
	}
	return amountInUSD * toDesc.ExchangeRate, nil
}

// Format renders amount as the currency symbol followed by the amount with
// two decimals and comma grouping, e.g. "$1,234.50" or "$-12.50". Halves
// round away from zero.
func Format(amount float64, code Code) (string, error) {
	d, err := Lookup(code)
	if err != nil {
		return "", err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", fmt.Errorf("%w: %v", ErrNotFinite, amount)
	}

	value := decimal.NewFromFloat(amount).Round(minorUnits)
	sign := ""
	if value.IsNegative() {
		sign = "-"
	}
	return d.Symbol + sign + groupDigits(value.Abs()), nil
}

// groupDigits formats a non-negative, already rounded value as "1,234.50".
func groupDigits(v decimal.Decimal) string {
	minor := v.Shift(minorUnits)
	if minor.LessThanOrEqual(maxMinor) {
		return money.NewFormatter(minorUnits, ".", ",", "", "1").Format(minor.IntPart())
	}

	// Beyond int64 minor units, group the decimal string directly.
	whole, frac, _ := strings.Cut(v.StringFixed(minorUnits), ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + "." + frac
}

// Display is Format for codes already known to be valid, such as those
// stored on records. It falls back to "<amount> <code>" when Format fails,
// which covers unknown codes and non-finite amounts.
func Display(amount float64, code Code) string {
	s, err := Format(amount, code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	return s
}
