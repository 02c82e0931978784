package techhatch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/techhatch/transport"
)

// Config is the full client configuration. Start from DefaultConfig and override
// what differs; LoadConfig does that from YAML and the environment.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Retry       RetryConfig       `yaml:"retry"`
	OTP         OTPConfig         `yaml:"otp"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Redis       RedisConfig       `yaml:"redis"`
	Audit       AuditConfig       `yaml:"audit"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Log         LogConfig         `yaml:"log"`
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// RetryConfig controls the backoff of network failures and 5xx responses.
// Attempt n (1-based) waits BaseDelay * 2^n.
type RetryConfig struct {
	Limit     int           `yaml:"limit"`
	BaseDelay time.Duration `yaml:"base_delay"`
}

// OTPConfig controls the local side of OTP challenges.
type OTPConfig struct {
	ResendCooldown time.Duration `yaml:"resend_cooldown"`
	// CooldownBackend is "memory" (default) or "redis".
	CooldownBackend string `yaml:"cooldown_backend"`
	RedisPrefix     string `yaml:"redis_prefix"`
}

/*
====================================
CREDENTIALS CONFIG
====================================
*/

// CredentialBackend selects where the credential token is persisted.
type CredentialBackend string

const (
	CredentialsMemory CredentialBackend = "memory"
	CredentialsFile   CredentialBackend = "file"
	CredentialsRedis  CredentialBackend = "redis"
)

// CredentialsConfig selects the credential persistence backend.
type CredentialsConfig struct {
	Backend CredentialBackend `yaml:"backend"`
	// Path is the credential file for the file backend. Empty uses the user config dir.
	Path     string `yaml:"path"`
	RedisKey string `yaml:"redis_key"`
}

// RedisConfig is used when a redis-backed component is selected and the Builder
// was given no client.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// LogConfig configures the default slog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8080",
			Timeout:   30 * time.Second,
			UserAgent: "techhatch-go",
		},
		Retry: RetryConfig{
			Limit:     3,
			BaseDelay: time.Second,
		},
		OTP: OTPConfig{
			ResendCooldown:  60 * time.Second,
			CooldownBackend: "memory",
			RedisPrefix:     "thc:",
		},
		Credentials: CredentialsConfig{
			Backend:  CredentialsMemory,
			RedisKey: "th:credential",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("API BaseURL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("API BaseURL must be http or https")
	}
	if u.Host == "" {
		return errors.New("API BaseURL must have a host")
	}
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}

	if c.Retry.Limit < 0 {
		return errors.New("Retry Limit must be >= 0")
	}
	if c.Retry.Limit > transport.MaxRetryLimit {
		return fmt.Errorf("Retry Limit must be <= %d", transport.MaxRetryLimit)
	}
	if c.Retry.BaseDelay < 0 {
		return errors.New("Retry BaseDelay must be >= 0")
	}

	if c.OTP.ResendCooldown <= 0 {
		return errors.New("OTP ResendCooldown must be > 0")
	}
	switch c.OTP.CooldownBackend {
	case "", "memory", "redis":
	default:
		return errors.New("OTP CooldownBackend must be 'memory' or 'redis'")
	}

	switch c.Credentials.Backend {
	case "", CredentialsMemory, CredentialsFile:
	case CredentialsRedis:
		if strings.TrimSpace(c.Credentials.RedisKey) == "" {
			return errors.New("Credentials RedisKey must be set for the redis backend")
		}
	default:
		return fmt.Errorf("Credentials Backend %q is not supported", c.Credentials.Backend)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errors.New("Log Format must be 'text' or 'json'")
	}
	return nil
}
