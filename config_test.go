package techhatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantValid: true},
		{
			name:      "https base url",
			mutate:    func(c *Config) { c.API.BaseURL = "https://jobs.example.com" },
			wantValid: true,
		},
		{
			name:      "base url without scheme",
			mutate:    func(c *Config) { c.API.BaseURL = "jobs.example.com" },
			wantValid: false,
		},
		{
			name:      "base url without host",
			mutate:    func(c *Config) { c.API.BaseURL = "http://" },
			wantValid: false,
		},
		{
			name:      "negative timeout",
			mutate:    func(c *Config) { c.API.Timeout = -time.Second },
			wantValid: false,
		},
		{
			name:      "retry disabled",
			mutate:    func(c *Config) { c.Retry.Limit = 0 },
			wantValid: true,
		},
		{
			name:      "retry limit too high",
			mutate:    func(c *Config) { c.Retry.Limit = 11 },
			wantValid: false,
		},
		{
			name:      "negative base delay",
			mutate:    func(c *Config) { c.Retry.BaseDelay = -time.Second },
			wantValid: false,
		},
		{
			name:      "zero resend cooldown",
			mutate:    func(c *Config) { c.OTP.ResendCooldown = 0 },
			wantValid: false,
		},
		{
			name:      "unknown cooldown backend",
			mutate:    func(c *Config) { c.OTP.CooldownBackend = "etcd" },
			wantValid: false,
		},
		{
			name:      "redis credentials",
			mutate:    func(c *Config) { c.Credentials.Backend = CredentialsRedis },
			wantValid: true,
		},
		{
			name: "redis credentials without key",
			mutate: func(c *Config) {
				c.Credentials.Backend = CredentialsRedis
				c.Credentials.RedisKey = "  "
			},
			wantValid: false,
		},
		{
			name:      "unknown credentials backend",
			mutate:    func(c *Config) { c.Credentials.Backend = "keychain" },
			wantValid: false,
		},
		{
			name: "audit without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name:      "json logs",
			mutate:    func(c *Config) { c.Log.Format = "JSON" },
			wantValid: true,
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Log.Format = "xml" },
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefaultConfigRetrySchedule(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.Retry.Limit)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 60*time.Second, cfg.OTP.ResendCooldown)
	assert.Equal(t, CredentialsMemory, cfg.Credentials.Backend)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "techhatch.yaml", `
api:
  base_url: https://api.jobs.test
  timeout: 5s
retry:
  limit: 2
otp:
  resend_cooldown: 30s
credentials:
  backend: file
  path: /tmp/th-creds.json
log:
  level: debug
  format: json
`)
	envFile := writeFile(t, dir, "empty.env", "")

	cfg, err := LoadConfig(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "https://api.jobs.test", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.Retry.Limit)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay, "unset keys keep defaults")
	assert.Equal(t, 30*time.Second, cfg.OTP.ResendCooldown)
	assert.Equal(t, CredentialsFile, cfg.Credentials.Backend)
	assert.Equal(t, "/tmp/th-creds.json", cfg.Credentials.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "api:\n  base_uri: http://x\n")
	envFile := writeFile(t, dir, "empty.env", "")

	_, err := LoadConfig(path, envFile)
	require.Error(t, err)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "techhatch.yaml", "api:\n  base_url: http://from-file:8080\n")
	envFile := writeFile(t, dir, "test.env", "TECHHATCH_RETRY_LIMIT=1\nTECHHATCH_LOG_FORMAT=json\n")

	t.Setenv(EnvAPIURL, "http://from-env:9090")
	t.Setenv(EnvRetryLimit, "")
	t.Setenv(EnvLogFormat, "")
	require.NoError(t, os.Unsetenv(EnvRetryLimit))
	require.NoError(t, os.Unsetenv(EnvLogFormat))

	cfg, err := LoadConfig(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:9090", cfg.API.BaseURL)
	assert.Equal(t, 1, cfg.Retry.Limit)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	envFile := writeFile(t, t.TempDir(), "empty.env", "")
	t.Setenv(EnvRetryLimit, "three")

	_, err := LoadConfig("", envFile)
	require.Error(t, err)
}

func TestApplyEnvLookup(t *testing.T) {
	cfg := DefaultConfig()
	env := map[string]string{
		EnvCredentials:     " REDIS ",
		EnvRedisAddr:       "cache:6380",
		EnvCredentialsPath: "/var/lib/th.json",
	}
	err := applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)

	assert.Equal(t, CredentialsRedis, cfg.Credentials.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "/var/lib/th.json", cfg.Credentials.Path)
	assert.NoError(t, cfg.Validate())
}
