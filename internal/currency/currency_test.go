package currency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorTable(t *testing.T) {
	usd, err := Lookup(USD)
	require.NoError(t, err)
	assert.Equal(t, 1.0, usd.ExchangeRate)

	for _, d := range Descriptors() {
		assert.Greater(t, d.ExchangeRate, 0.0, d.Code)
		assert.False(t, math.IsInf(d.ExchangeRate, 0), d.Code)
		assert.NotEmpty(t, d.Symbol, d.Code)
		assert.NotEmpty(t, d.Name, d.Code)
	}
}

func TestConvert_Identity(t *testing.T) {
	amounts := []float64{0, 0.1, 5.75, 1234.5, -42.42, 1e9, math.SmallestNonzeroFloat64}
	for _, code := range Codes() {
		for _, amount := range amounts {
			got, err := Convert(amount, code, code)
			require.NoError(t, err)
			assert.Equal(t, amount, got, "%s %v", code, amount)
		}
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	amounts := []float64{0.01, 1, 5.75, 99.99, 1234.5, 1e7}
	for _, from := range Codes() {
		for _, to := range Codes() {
			for _, amount := range amounts {
				there, err := Convert(amount, from, to)
				require.NoError(t, err)
				back, err := Convert(there, to, from)
				require.NoError(t, err)
				assert.InEpsilon(t, amount, back, 1e-12, "%v %s->%s", amount, from, to)
			}
		}
	}
}

func TestConvert_PivotsThroughUSD(t *testing.T) {
	tests := []struct {
		name   string
		from   Code
		to     Code
		amount float64
		want   float64
	}{
		{name: "usd to inr", amount: 10, from: USD, to: INR, want: 835},
		{name: "inr to usd", amount: 835, from: INR, to: USD, want: 10},
		{name: "zero", amount: 0, from: INR, to: USD, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.amount, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestConvert_UnknownCurrency(t *testing.T) {
	_, err := Convert(1, USD, Code("EUR"))
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	_, err = Convert(1, Code("GBP"), USD)
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	_, err = Convert(1, Code("XXX"), Code("XXX"))
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		code   Code
		want   string
		amount float64
	}{
		{name: "grouped usd", amount: 1234.5, code: USD, want: "$1,234.50"},
		{name: "zero inr", amount: 0, code: INR, want: "₹0.00"},
		{name: "small", amount: 5.75, code: USD, want: "$5.75"},
		{name: "millions", amount: 1234567.891, code: USD, want: "$1,234,567.89"},
		{name: "rounds half away from zero", amount: 0.125, code: USD, want: "$0.13"},
		{name: "cents only", amount: 0.07, code: INR, want: "₹0.07"},
		{name: "negative", amount: -12.5, code: USD, want: "$-12.50"},
		{name: "negative grouped inr", amount: -1234.5, code: INR, want: "₹-1,234.50"},
		{name: "negative rounds to zero", amount: -0.001, code: USD, want: "$0.00"},
		{name: "largest int64 cents range", amount: 9e16, code: USD, want: "$90,000,000,000,000,000.00"},
		{name: "past int64 cents", amount: 1e17, code: USD, want: "$100,000,000,000,000,000.00"},
		{name: "huge", amount: 1e20, code: USD, want: "$100,000,000,000,000,000,000.00"},
		{name: "huge negative", amount: -1e20, code: INR, want: "₹-100,000,000,000,000,000,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.amount, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_UnknownCurrency(t *testing.T) {
	_, err := Format(1, Code("EUR"))
	assert.ErrorIs(t, err, ErrUnknownCurrency)
	assert.Equal(t, "1.00 EUR", Display(1, Code("EUR")))
}

func TestFormat_NotFinite(t *testing.T) {
	overflow, err := Convert(1e307, USD, INR)
	require.NoError(t, err)
	require.True(t, math.IsInf(overflow, 1))

	tests := []struct {
		name        string
		code        Code
		wantDisplay string
		amount      float64
	}{
		{name: "positive infinity", amount: math.Inf(1), code: USD, wantDisplay: "+Inf USD"},
		{name: "negative infinity", amount: math.Inf(-1), code: USD, wantDisplay: "-Inf USD"},
		{name: "nan", amount: math.NaN(), code: INR, wantDisplay: "NaN INR"},
		{name: "conversion overflow", amount: overflow, code: INR, wantDisplay: "+Inf INR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(tt.amount, tt.code)
			require.ErrorIs(t, err, ErrNotFinite)
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.wantDisplay, Display(tt.amount, tt.code))
			})
		})
	}
}

func TestParse(t *testing.T) {
	code, err := Parse(" inr ")
	require.NoError(t, err)
	assert.Equal(t, INR, code)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	_, err = Parse("eur")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestCodes(t *testing.T) {
	assert.Equal(t, []Code{INR, USD}, Codes())
	assert.True(t, USD.Valid())
	assert.False(t, Code("usd").Valid())
}
