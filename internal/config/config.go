package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for the offline sync subsystem, loaded
// from environment variables (KIOSCO_*) with an optional .env for local dev.
type Config struct {
	Env string `mapstructure:"KIOSCO_ENV"` // development | production

	// Remote kiosco API
	APIBaseURL string        `mapstructure:"KIOSCO_API_URL"`
	APIToken   string        `mapstructure:"KIOSCO_API_TOKEN"`
	APITimeout time.Duration `mapstructure:"KIOSCO_API_TIMEOUT"`

	// Local store
	DBPath string `mapstructure:"KIOSCO_DB_PATH"`

	// Connectivity probe
	ProbeInterval time.Duration `mapstructure:"KIOSCO_PROBE_INTERVAL"`

	// Max concurrent sale pushes during the push phase of a full sync.
	PushConcurrency int `mapstructure:"KIOSCO_PUSH_CONCURRENCY"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("KIOSCO_ENV", "development")
	viper.SetDefault("KIOSCO_API_URL", "http://localhost:3000/api")
	viper.SetDefault("KIOSCO_API_TIMEOUT", "15s")
	viper.SetDefault("KIOSCO_DB_PATH", "kiosco.db")
	viper.SetDefault("KIOSCO_PROBE_INTERVAL", "10s")
	viper.SetDefault("KIOSCO_PUSH_CONCURRENCY", 4)

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
