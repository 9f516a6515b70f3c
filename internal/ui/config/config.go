package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

// UI server config
type Config struct {
	Environment     string        `env:"ENVIRONMENT,default=dev"`
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=3000"`
	LogLevel        string        `env:"LOG_LEVEL,default=debug"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	APIBaseURL      string        `env:"API_BASE_URL,default=http://localhost:8080"`
	ShortenEndpoint string        `env:"SHORTEN_ENDPOINT,default=/shorten"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT,default=0s"` // 0 = no timeout
	RateLimitRPS    int32         `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst  int32         `env:"RATE_LIMIT_BURST,default=10"`
	MaxRequestSize  int64         `env:"MAX_REQUEST_SIZE,default=16384"` // 16KB
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS,separator=|"`
}

// CLIConfig holds the defaults for the command line client. Flags override these values.
type CLIConfig struct {
	APIBaseURL      string        `env:"API_BASE_URL,default=http://localhost:8080"`
	ShortenEndpoint string        `env:"SHORTEN_ENDPOINT,default=/shorten"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT,default=0s"`
	LogLevel        string        `env:"LOG_LEVEL,default=warn"`
}

const (
	ServerShutdownTimeout = 10 * time.Second
	CORSMaxAgeInSeconds   = 86400 // 24 hours
)

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"perf":    true,
	"prod":    true,
	"staging": true,
}

func NewConfig() (*Config, error) {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func NewCLIConfig() (*CLIConfig, error) {
	var cfg CLIConfig

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, perf, staging, prod", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.DispatchTimeout < 0 {
		return fmt.Errorf("dispatch timeout cannot be negative, got %v", cfg.DispatchTimeout)
	}

	if err := ValidateAPIBaseURL(cfg.APIBaseURL); err != nil {
		return err
	}

	if !strings.HasPrefix(cfg.ShortenEndpoint, "/") {
		return fmt.Errorf("SHORTEN_ENDPOINT must start with '/': %s", cfg.ShortenEndpoint)
	}

	if cfg.MaxRequestSize <= 0 {
		return fmt.Errorf("MAX_REQUEST_SIZE must be positive, got %d", cfg.MaxRequestSize)
	}

	if cfg.Environment == "prod" || cfg.Environment == "staging" {
		if len(cfg.AllowedOrigins) > 0 && cfg.AllowedOrigins[0] == "*" {
			return fmt.Errorf("ALLOWED_ORIGINS must not be set to '*' in %v", cfg.Environment)
		}
	}

	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return nil
}

// ValidateAPIBaseURL checks the backend base url is an absolute http(s) url without a trailing path
func ValidateAPIBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}

	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %s", baseURL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL does not include a valid scheme (http or https): %s", baseURL)
	}

	if u.Hostname() == "" {
		return fmt.Errorf("API_BASE_URL does not include a host: %s", baseURL)
	}

	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("API_BASE_URL should not include a path: %s", baseURL)
	}

	return nil
}
