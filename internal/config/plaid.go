package config

import (
	"os"

	"github.com/Veraticus/finflow/internal/plaid"
	"github.com/spf13/viper"
)

// LoadPlaidConfig resolves the Plaid bank feed settings from viper, falling
// back to the PLAID_* environment variables.
func LoadPlaidConfig(v *viper.Viper) (*plaid.Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := plaid.Config{
		ClientID:    v.GetString("plaid.client_id"),
		Secret:      v.GetString("plaid.secret"),
		Environment: v.GetString("plaid.environment"),
		AccessToken: v.GetString("plaid.access_token"),
	}

	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("PLAID_CLIENT_ID")
	}
	if cfg.Secret == "" {
		cfg.Secret = os.Getenv("PLAID_SECRET")
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("PLAID_ACCESS_TOKEN")
	}
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
