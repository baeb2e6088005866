package config

import (
	"path/filepath"
	"testing"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("FINFLOW_TEST_DIR", "/srv/finflow")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: "/home/tester"},
		{in: "~/data/finflow.db", want: "/home/tester/data/finflow.db"},
		{in: "$FINFLOW_TEST_DIR/finflow.db", want: "/srv/finflow/finflow.db"},
		{in: "/abs/path.db", want: "/abs/path.db"},
		{in: "~other/path", want: "~other/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester/.local/share/finflow", "finflow.db"), cfg.DatabasePath)
	assert.Equal(t, filepath.Join("/home/tester/.local/share/finflow", "session.json"), cfg.SessionPath)
	assert.Equal(t, currency.USD, cfg.DisplayCurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyDatabasePath, "/tmp/custom.db")
	v.Set(KeyDisplayCurrency, "inr")
	v.Set(KeyLogFormat, "JSON")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DatabasePath)
	assert.Equal(t, currency.INR, cfg.DisplayCurrency)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{name: "unknown currency", key: KeyDisplayCurrency, value: "EUR", wantErr: common.ErrInvalidConfig},
		{name: "unknown level", key: KeyLogLevel, value: "verbose", wantErr: common.ErrInvalidConfig},
		{name: "unknown format", key: KeyLogFormat, value: "xml", wantErr: common.ErrInvalidConfig},
		{name: "empty database path", key: KeyDatabasePath, value: "", wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadPlaidConfig(t *testing.T) {
	t.Setenv("PLAID_CLIENT_ID", "env-client")
	t.Setenv("PLAID_SECRET", "env-secret")
	t.Setenv("PLAID_ACCESS_TOKEN", "")

	v := viper.New()
	v.Set("plaid.access_token", "access-sandbox-123")

	cfg, err := LoadPlaidConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "env-client", cfg.ClientID)
	assert.Equal(t, "access-sandbox-123", cfg.AccessToken)
	assert.Equal(t, "sandbox", cfg.Environment)

	v.Set("plaid.access_token", "")
	_, err = LoadPlaidConfig(v)
	assert.Error(t, err)
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "")

	v := viper.New()
	_, err := LoadSheetsConfig(v)
	assert.Error(t, err, "no credentials configured")

	v.Set("sheets.service_account_path", "/keys/sa.json")
	v.Set("sheets.spreadsheet_id", "sheet-123")
	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
	assert.Equal(t, "FinFlow Report", cfg.SpreadsheetName)
}

func TestLoadSheetsConfig_CachedToken(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, sheets.SaveToken(tokenFile, &oauth2.Token{AccessToken: "a", RefreshToken: "cached-refresh"}))

	v := viper.New()
	v.Set("sheets.client_id", "client")
	v.Set("sheets.client_secret", "secret")
	v.Set("sheets.token_file", tokenFile)

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "cached-refresh", cfg.RefreshToken)

	oauth, err := LoadSheetsOAuth(v)
	require.NoError(t, err)
	assert.Equal(t, tokenFile, oauth.TokenFile)
	assert.Equal(t, "client", oauth.ClientID)
}

func TestLoadSheetsOAuth_MissingClient(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")

	_, err := LoadSheetsOAuth(viper.New())
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
