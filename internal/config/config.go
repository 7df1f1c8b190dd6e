// Package config loads urlsentry's runtime configuration with
// github.com/spf13/viper: mapstructure-tagged struct, env-binding,
// and defaults, with production-mode safety validation at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment is the deployment mode, gating the production safety
// checks in Validate.
type Environment string

const (
	EnvDev        Environment = "dev"
	EnvProduction Environment = "production"
)

// Config is the full set of recognised options, plus the ambient
// LOG_FORMAT/HOST/PORT keys every deployment needs regardless of the
// analysis pipeline's own knobs.
type Config struct {
	Environment        Environment   `mapstructure:"environment"`
	APIKey             string        `mapstructure:"api_key"`
	BackendCORSOrigins []string      `mapstructure:"backend_cors_origins"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	TrustedProxyCount  int           `mapstructure:"trusted_proxy_count"`
	MaxURLLength       int           `mapstructure:"max_url_length"`
	AllowedSchemes     []string      `mapstructure:"allowed_schemes"`
	ModelDir           string        `mapstructure:"model_dir"`
	NetworkTimeout     time.Duration `mapstructure:"network_timeout"`
	WHOISTimeout       time.Duration `mapstructure:"whois_timeout"`
	CacheMaxSize       int           `mapstructure:"cache_max_size"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`

	LogFormat string `mapstructure:"log_format"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
}

// Load reads configuration from the environment (and an optional
// config.yaml if present). A missing config file is not fatal — every
// option has a workable default and the service is meant to run
// entirely from environment variables in production.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")

	v.SetDefault("environment", "dev")
	v.SetDefault("api_key", "")
	v.SetDefault("backend_cors_origins", []string{"*"})
	v.SetDefault("rate_limit_per_minute", 30)
	v.SetDefault("trusted_proxy_count", 0)
	v.SetDefault("max_url_length", 2048)
	v.SetDefault("allowed_schemes", []string{"http", "https"})
	v.SetDefault("model_dir", "models")
	v.SetDefault("network_timeout", 8*time.Second)
	v.SetDefault("whois_timeout", 10*time.Second)
	v.SetDefault("cache_max_size", 2000)
	v.SetDefault("cache_ttl", 3600*time.Second)
	v.SetDefault("cache_redis_addr", "")
	v.SetDefault("log_format", "text")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		"environment", "api_key", "backend_cors_origins", "rate_limit_per_minute",
		"trusted_proxy_count", "max_url_length", "allowed_schemes", "model_dir",
		"network_timeout", "whois_timeout", "cache_max_size", "cache_ttl",
		"cache_redis_addr", "log_format", "host", "port",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
	// The deployment environment names these keys in ALL_CAPS with no
	// prefix; bind those spellings explicitly since they diverge from
	// the snake_case mapstructure tags above.
	_ = v.BindEnv("environment", "ENVIRONMENT")
	_ = v.BindEnv("api_key", "API_KEY")
	_ = v.BindEnv("backend_cors_origins", "BACKEND_CORS_ORIGINS")
	_ = v.BindEnv("rate_limit_per_minute", "RATE_LIMIT_PER_MINUTE")
	_ = v.BindEnv("trusted_proxy_count", "TRUSTED_PROXY_COUNT")
	_ = v.BindEnv("max_url_length", "MAX_URL_LENGTH")
	_ = v.BindEnv("allowed_schemes", "ALLOWED_SCHEMES")
	_ = v.BindEnv("model_dir", "MODEL_DIR")
	_ = v.BindEnv("network_timeout", "NETWORK_TIMEOUT")
	_ = v.BindEnv("whois_timeout", "WHOIS_TIMEOUT")
	_ = v.BindEnv("cache_max_size", "CACHE_MAX_SIZE")
	_ = v.BindEnv("cache_ttl", "CACHE_TTL")
	_ = v.BindEnv("cache_redis_addr", "CACHE_REDIS_ADDR")
	_ = v.BindEnv("log_format", "LOG_FORMAT")
	_ = v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	// BACKEND_CORS_ORIGINS and ALLOWED_SCHEMES arrive as a single
	// comma-separated env var in practice; split if viper handed back
	// a one-element slice containing commas.
	cfg.BackendCORSOrigins = splitIfSingle(cfg.BackendCORSOrigins)
	cfg.AllowedSchemes = splitIfSingle(cfg.AllowedSchemes)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitIfSingle(vals []string) []string {
	if len(vals) == 1 && strings.Contains(vals[0], ",") {
		parts := strings.Split(vals[0], ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return vals
}

// Validate enforces the production safety rules: a nonzero exit is
// expected of the caller when this returns an error (empty API key or
// wildcard CORS in production). Model-load failure is deliberately not
// validated here — it is a startup warning, not a fatal configuration
// error.
func (c *Config) Validate() error {
	if c.Environment != EnvProduction {
		return nil
	}
	if c.APIKey == "" {
		return fmt.Errorf("config: ENVIRONMENT=production requires a non-empty API_KEY")
	}
	for _, origin := range c.BackendCORSOrigins {
		if origin == "*" {
			return fmt.Errorf("config: ENVIRONMENT=production does not allow a wildcard BACKEND_CORS_ORIGINS entry")
		}
	}
	return nil
}
