// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// RecoveryAPIBaseURL is the opaque prefix for the recovery endpoints (e.g. https://api.example.com).
	// Required by the recover command; see RequireBaseURL.
	RecoveryAPIBaseURL string `mapstructure:"RECOVERY_API_BASE_URL"`
	// HTTPTimeout is the per-request timeout of the recovery HTTP client (e.g. "15s").
	HTTPTimeout string `mapstructure:"HTTP_TIMEOUT"`
	// LogFile is where the recover command writes log output while the terminal UI owns the screen; empty discards it.
	LogFile string `mapstructure:"RECOVERY_LOG_FILE"`
	// Env is the application environment (e.g. "development", "production"). Used with DevReturnCode to refuse dev code retrieval in production.
	Env string `mapstructure:"APP_ENV"`

	// Telemetry (optional). When the OTLP endpoint is empty, spans, metrics and records are dropped.
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317).
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure disables TLS for https OTLP endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	// LokiURL is the Loki base URL (e.g. http://localhost:3100). When set, recovery events are also pushed to Loki.
	LokiURL string `mapstructure:"LOKI_URL"`

	// Dev stub only.
	// DevStubAddr is the address the dev stub listens on (e.g. :8081).
	DevStubAddr string `mapstructure:"DEV_STUB_ADDR"`
	// DevStubAccounts is a comma-separated list of account emails the dev stub knows about.
	DevStubAccounts string `mapstructure:"DEV_STUB_ACCOUNTS"`
	// DevStubCodeTTL is how long an issued verification code stays valid (e.g. "10m").
	DevStubCodeTTL string `mapstructure:"DEV_STUB_CODE_TTL"`
	// DevReturnCode when true serves issued codes on GET /dev/recovery/code. Must not be true when Env is production.
	DevReturnCode bool `mapstructure:"DEV_RETURN_CODE"`
	// BcryptCost is the bcrypt cost factor (4–31) the dev stub hashes reset passwords with; default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("RECOVERY_API_BASE_URL", "")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("RECOVERY_LOG_FILE", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "recovery-client")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("DEV_STUB_ADDR", ":8081")
	v.SetDefault("DEV_STUB_ACCOUNTS", "")
	v.SetDefault("DEV_STUB_CODE_TTL", "10m")
	v.SetDefault("DEV_RETURN_CODE", false)
	v.SetDefault("BCRYPT_COST", 12)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DevReturnCode && cfg.Env == "production" {
		return nil, errors.New("config: DEV_RETURN_CODE must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// RequireBaseURL returns an error if RecoveryAPIBaseURL is empty. The value itself is not validated
// or defaulted; the client treats it as an opaque prefix.
func (c *Config) RequireBaseURL() error {
	if c == nil || strings.TrimSpace(c.RecoveryAPIBaseURL) == "" {
		return errors.New("config: RECOVERY_API_BASE_URL must be set")
	}
	return nil
}

// RequestTimeout parses HTTPTimeout as a time.Duration. Returns 15s if unset or invalid.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// CodeTTL parses DevStubCodeTTL as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) CodeTTL() time.Duration {
	d, err := time.ParseDuration(c.DevStubCodeTTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// DevStubAccountsList returns the dev stub account emails from the comma-separated config, lowercased.
func (c *Config) DevStubAccountsList() []string {
	if c == nil || c.DevStubAccounts == "" {
		return nil
	}
	parts := strings.Split(c.DevStubAccounts, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToLower(strings.TrimSpace(p)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
