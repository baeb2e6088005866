package plaid

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		ClientID:    "test-client-id",
		Secret:      "test-secret",
		Environment: "sandbox",
		AccessToken: "test-token",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		wantErr error
		mutate  func(*Config)
		name    string
		errMsg  string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "valid production environment", mutate: func(c *Config) { c.Environment = "production" }},
		{
			name:    "missing client ID",
			mutate:  func(c *Config) { c.ClientID = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid client ID is required",
		},
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.Secret = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid secret is required",
		},
		{
			name:    "missing access token",
			mutate:  func(c *Config) { c.AccessToken = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid access token is required",
		},
		{
			name:    "missing environment",
			mutate:  func(c *Config) { c.Environment = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid environment is required",
		},
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.Environment = "development" },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "invalid Plaid environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(validConfig())
	require.NoError(t, err)
	assert.NotNil(t, client.client)
	assert.Equal(t, "test-token", client.accessToken)
	assert.NotNil(t, client.logger)
	assert.NotNil(t, client.retryOpts)

	client, err = NewClient(Config{ClientID: "test-client-id"})
	require.Error(t, err)
	assert.Nil(t, client)
}

func testClient() *Client {
	return &Client{
		accessToken: "test-token",
		logger:      slog.Default().With("component", "plaid-test"),
	}
}

func TestClient_GetTransactions_Validation(t *testing.T) {
	client := testClient()

	tests := []struct {
		startDate time.Time
		endDate   time.Time
		ctx       context.Context
		name      string
		errMsg    string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			startDate: time.Now().AddDate(0, -1, 0),
			endDate:   time.Now(),
			errMsg:    "context cannot be nil",
		},
		{
			name:      "start date after end date",
			ctx:       context.Background(),
			startDate: time.Now(),
			endDate:   time.Now().AddDate(0, -1, 0),
			errMsg:    "start date must be before end date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetTransactions(tt.ctx, tt.startDate, tt.endDate) //nolint:staticcheck // nil context is under test
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func plaidTransaction(id string, amount float64, date, name string) plaid.Transaction {
	var pt plaid.Transaction
	pt.SetTransactionId(id)
	pt.SetAccountId("acc-1")
	pt.SetAmount(amount)
	pt.SetDate(date)
	pt.SetName(name)
	pt.SetPending(false)
	return pt
}

func TestMapPlaidTransaction(t *testing.T) {
	client := testClient()

	t.Run("debit becomes expense", func(t *testing.T) {
		pt := plaidTransaction("tx-1", 5.50, "2024-03-04", "STARBUCKS STORE 123456789")
		pt.SetIsoCurrencyCode("USD")
		pt.SetCategory([]string{"Food and Drink", "Restaurants", "Coffee Shop"})

		tx, ok := client.mapPlaidTransaction(pt)
		require.True(t, ok)
		assert.Equal(t, "plaid:tx-1", tx.ExternalID)
		assert.Equal(t, "Starbucks Store", tx.Title)
		assert.Equal(t, model.TypeExpense, tx.Type)
		assert.InDelta(t, 5.50, tx.Amount, 1e-9)
		assert.Equal(t, currency.USD, tx.Currency)
		assert.Equal(t, "food", tx.Category)
		assert.Equal(t, "2024-03-04", tx.DateString())
		assert.Empty(t, tx.UserID)
	})

	t.Run("credit becomes income", func(t *testing.T) {
		pt := plaidTransaction("tx-2", -2500, "2024-03-01", "ACME PAYROLL")
		pt.SetMerchantName("Acme Corp")
		pt.SetIsoCurrencyCode("INR")
		pt.SetCategory([]string{"Transfer", "Payroll"})

		tx, ok := client.mapPlaidTransaction(pt)
		require.True(t, ok)
		assert.Equal(t, "Acme", tx.Title, "merchant name preferred over name")
		assert.Equal(t, model.TypeIncome, tx.Type)
		assert.InDelta(t, 2500, tx.Amount, 1e-9)
		assert.Equal(t, currency.INR, tx.Currency)
		assert.Equal(t, "salary", tx.Category)
	})

	t.Run("missing currency uses default", func(t *testing.T) {
		tx, ok := client.mapPlaidTransaction(plaidTransaction("tx-3", 10, "2024-03-01", "Shop"))
		require.True(t, ok)
		assert.Equal(t, currency.Default, tx.Currency)
		assert.Equal(t, model.CategoryOther, tx.Category)
	})

	t.Run("skipped transactions", func(t *testing.T) {
		pending := plaidTransaction("tx-4", 10, "2024-03-01", "Shop")
		pending.SetPending(true)
		_, ok := client.mapPlaidTransaction(pending)
		assert.False(t, ok, "pending")

		euro := plaidTransaction("tx-5", 10, "2024-03-01", "Shop")
		euro.SetIsoCurrencyCode("EUR")
		_, ok = client.mapPlaidTransaction(euro)
		assert.False(t, ok, "unsupported currency")

		_, ok = client.mapPlaidTransaction(plaidTransaction("tx-6", 10, "03/01/2024", "Shop"))
		assert.False(t, ok, "bad date")
	})
}

func TestMapCategory(t *testing.T) {
	tests := []struct {
		name      string
		want      string
		hierarchy []string
		txType    model.TransactionType
	}{
		{name: "empty", hierarchy: nil, txType: model.TypeExpense, want: model.CategoryOther},
		{name: "shops", hierarchy: []string{"Shops", "Supermarkets and Groceries"}, txType: model.TypeExpense, want: "shopping"},
		{name: "travel", hierarchy: []string{"Travel", "Taxi"}, txType: model.TypeExpense, want: "transportation"},
		{name: "recreation", hierarchy: []string{"Recreation", "Gyms and Fitness Centers"}, txType: model.TypeExpense, want: "entertainment"},
		{name: "interest", hierarchy: []string{"Transfer", "Credit", "Interest Earned"}, txType: model.TypeIncome, want: "interest"},
		{name: "payroll expense", hierarchy: []string{"Transfer", "Payroll"}, txType: model.TypeExpense, want: model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapCategory(tt.hierarchy, tt.txType))
		})
	}
}

func TestCleanMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "basic name", input: "Starbucks", expected: "Starbucks"},
		{name: "lowercase to title case", input: "starbucks coffee", expected: "Starbucks Coffee"},
		{name: "remove LLC suffix", input: "Amazon LLC", expected: "Amazon"},
		{name: "remove Inc suffix", input: "Apple Inc", expected: "Apple"},
		{name: "remove transaction ID", input: "PAYPAL 123456789", expected: "Paypal"},
		{name: "preserve short numbers", input: "7-ELEVEN 2345", expected: "7-Eleven 2345"},
		{name: "multiple cleanups", input: "amazon.com llc 987654321", expected: "Amazon.Com"},
		{name: "extra spaces", input: "  Google   Cloud   ", expected: "Google Cloud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanMerchantName(tt.input))
		})
	}
}

func TestStubFeed(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	feed := &StubFeed{
		Transactions: []model.Transaction{
			{ExternalID: "plaid:feb", Title: "Rent", Amount: 1200, Date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
			{ExternalID: "plaid:first", Title: "Corner Grocery", Amount: 42.10, Date: day(1)},
			{ExternalID: "plaid:mid", Title: "Metro Card", Amount: 20, Date: day(15)},
			{ExternalID: "plaid:last", Title: "Payroll", Amount: 2500, Date: day(31)},
		},
		Accounts: []string{"Checking"},
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []string
	}{
		{name: "whole month is inclusive", start: day(1), end: day(31), want: []string{"plaid:first", "plaid:mid", "plaid:last"}},
		{name: "single day", start: day(15), end: day(15), want: []string{"plaid:mid"}},
		{name: "time of day ignored", start: day(1).Add(18 * time.Hour), end: day(1).Add(20 * time.Hour), want: []string{"plaid:first"}},
		{name: "empty range", start: day(2), end: day(14), want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := feed.GetTransactions(context.Background(), tt.start, tt.end)
			require.NoError(t, err)
			ids := []string{}
			for _, txn := range txns {
				ids = append(ids, txn.ExternalID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
	require.Len(t, feed.Requests, len(tests))
	assert.Equal(t, day(15), feed.Requests[1].Start)

	accounts, err := feed.GetAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Checking"}, accounts)
	assert.Equal(t, 1, feed.AccountRequests)

	feed.Err = common.ErrPlaidRateLimit
	_, err = feed.GetTransactions(context.Background(), day(1), day(31))
	assert.ErrorIs(t, err, common.ErrPlaidRateLimit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = feed.GetAccounts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
