package techhatch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables applied on top of the YAML file.
const (
	EnvAPIURL          = "TECHHATCH_API_URL"
	EnvCredentials     = "TECHHATCH_CREDENTIALS"
	EnvCredentialsPath = "TECHHATCH_CREDENTIALS_PATH"
	EnvRedisAddr       = "TECHHATCH_REDIS_ADDR"
	EnvLogLevel        = "TECHHATCH_LOG_LEVEL"
	EnvLogFormat       = "TECHHATCH_LOG_FORMAT"
	EnvRetryLimit      = "TECHHATCH_RETRY_LIMIT"
)

// LoadConfig builds a Config from the defaults, the YAML file at path (optional),
// the given dotenv files and the process environment, in that order of precedence
// from lowest to highest. Without env files a ".env" in the working directory is
// loaded when present. Variables already set in the environment win over dotenv.
func LoadConfig(path string, envFiles ...string) (Config, error) {
	if err := loadDotenv(envFiles); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		cfg.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvCredentials); ok && v != "" {
		cfg.Credentials.Backend = CredentialBackend(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(EnvCredentialsPath); ok && v != "" {
		cfg.Credentials.Path = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		cfg.Redis.Addr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := lookup(EnvRetryLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRetryLimit, err)
		}
		cfg.Retry.Limit = n
	}
	return nil
}
