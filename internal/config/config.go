package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyDatabasePath    = "database.path"
	KeySessionPath     = "session.path"
	KeyDisplayCurrency = "display.currency"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
)

// EnvPrefix prefixes every environment override, e.g. FINFLOW_DATABASE_PATH.
const EnvPrefix = "FINFLOW"

// Config is the resolved application configuration.
type Config struct {
	DatabasePath    string
	SessionPath     string
	LogLevel        string
	LogFormat       string
	DisplayCurrency currency.Code
}

// DefaultDir is where FinFlow keeps its config, database and session.
func DefaultDir() string {
	return ExpandPath("~/.local/share/finflow")
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, filepath.Join(DefaultDir(), "finflow.db"))
	v.SetDefault(KeySessionPath, filepath.Join(DefaultDir(), "session.json"))
	v.SetDefault(KeyDisplayCurrency, string(currency.Default))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load resolves the configuration from v. A nil v means the global viper.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		SessionPath:  ExpandPath(v.GetString(KeySessionPath)),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
	}

	raw := v.GetString(KeyDisplayCurrency)
	if raw == "" {
		cfg.DisplayCurrency = currency.Default
	} else {
		code, err := currency.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, KeyDisplayCurrency, err)
		}
		cfg.DisplayCurrency = code
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if c.SessionPath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeySessionPath)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, KeyLogLevel, err)
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: %s must be console or json, got %q", common.ErrInvalidConfig, KeyLogFormat, c.LogFormat)
	}
	return nil
}
