package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig resolves the Google Sheets export settings with this
// precedence: viper (config file or FINFLOW_SHEETS_* env), then the
// GOOGLE_SHEETS_* environment variables, then defaults.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	cfg := sheets.DefaultConfig()

	if s := v.GetString("sheets.service_account_path"); s != "" {
		cfg.ServiceAccountPath = ExpandPath(s)
	}
	cfg.ClientID = v.GetString("sheets.client_id")
	cfg.ClientSecret = v.GetString("sheets.client_secret")
	cfg.RefreshToken = v.GetString("sheets.refresh_token")
	cfg.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if s := v.GetString("sheets.spreadsheet_name"); s != "" {
		cfg.SpreadsheetName = s
	}
	if s := v.GetString("sheets.timezone"); s != "" {
		cfg.TimeZone = s
	}

	fallback := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	if cfg.ServiceAccountPath == "" {
		if s := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); s != "" {
			cfg.ServiceAccountPath = ExpandPath(s)
		}
	}
	fallback(&cfg.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	fallback(&cfg.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	fallback(&cfg.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	fallback(&cfg.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")

	// A token cached by "finflow export auth" supplies the refresh token.
	if cfg.HasOAuth() && cfg.RefreshToken == "" {
		if token, err := sheets.LoadToken(SheetsTokenFile(v)); err == nil {
			cfg.RefreshToken = token.RefreshToken
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SheetsTokenFile is where the Google OAuth2 token is cached.
func SheetsTokenFile(v *viper.Viper) string {
	if v == nil {
		v = viper.GetViper()
	}
	if s := v.GetString("sheets.token_file"); s != "" {
		return ExpandPath(s)
	}
	return filepath.Join(DefaultDir(), "sheets_token.json")
}

// LoadSheetsOAuth returns the OAuth2 client settings used to authorize
// FinFlow against Google Sheets. The refresh token is not needed here.
func LoadSheetsOAuth(v *viper.Viper) (sheets.OAuth2Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := sheets.OAuth2Config{
		ClientID:     firstNonEmpty(v.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID")),
		ClientSecret: firstNonEmpty(v.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")),
		TokenFile:    SheetsTokenFile(v),
		CallbackAddr: v.GetString("sheets.callback_addr"),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return sheets.OAuth2Config{}, fmt.Errorf("%w: sheets.client_id and sheets.client_secret are required for OAuth2", common.ErrMissingConfig)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}
