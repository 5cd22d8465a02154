package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TEAMBOARD_POSTGRES_URL", "postgres://localhost/teamboard?sslmode=disable")
	t.Setenv("TEAMBOARD_JWT_SECRET", testSecret)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "custom")

	assert.Equal(t, "custom", getEnv("TEST_VAR", "default"))
	assert.Equal(t, "default", getEnv("TEST_VAR_NOT_SET", "default"))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"false", "false", true, false},
		{"upper case", "TRUE", false, true},
		{"unset uses default", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.want, getEnvBool("TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetEnvNumbersAndDurations(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty-two")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_BAD_DURATION", "soon")

	assert.Equal(t, 42, getEnvInt("TEST_INT", 7))
	assert.Equal(t, 7, getEnvInt("TEST_BAD_INT", 7))
	assert.Equal(t, int64(42), getEnvInt64("TEST_INT", 7))
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("TEST_BAD_DURATION", time.Second))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", " a.example.com, ,b.example.com ")
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, getEnvList("TEST_LIST"))
	assert.Nil(t, getEnvList("TEST_LIST_NOT_SET"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, storage.AvatarBackendPostgres, cfg.Storage.AvatarBackend)
	assert.Equal(t, ThrottleBackendMemory, cfg.Auth.ThrottleBackend)
	assert.Equal(t, 3, cfg.Auth.ThrottleMaxFailures)
	assert.Equal(t, time.Minute, cfg.Auth.ThrottleWindow)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TEAMBOARD_THROTTLE_BACKEND", "Redis")
	t.Setenv("TEAMBOARD_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("TEAMBOARD_THROTTLE_MAX_FAILURES", "5")
	t.Setenv("TEAMBOARD_THROTTLE_WINDOW", "2m")
	t.Setenv("TEAMBOARD_AVATAR_BACKEND", "s3")
	t.Setenv("TEAMBOARD_S3_BUCKET", "avatars")
	t.Setenv("TEAMBOARD_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ThrottleBackendRedis, cfg.Auth.ThrottleBackend)
	assert.Equal(t, 5, cfg.Auth.ThrottleMaxFailures)
	assert.Equal(t, 2*time.Minute, cfg.Auth.ThrottleWindow)
	assert.Equal(t, storage.AvatarBackendS3, cfg.Storage.AvatarBackend)
	assert.Equal(t, "avatars", cfg.Storage.S3Bucket)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
}

func TestLoadConfig_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"TEAMBOARD_POSTGRES_URL=postgres://from-file/teamboard",
		"TEAMBOARD_JWT_SECRET=" + testSecret,
		"TEAMBOARD_PORT=7070",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	t.Chdir(dir)

	// registered with t.Setenv so values loaded from the file are restored afterwards
	t.Setenv("TEAMBOARD_POSTGRES_URL", "")
	t.Setenv("TEAMBOARD_JWT_SECRET", "")
	os.Unsetenv("TEAMBOARD_POSTGRES_URL")
	os.Unsetenv("TEAMBOARD_JWT_SECRET")
	t.Setenv("TEAMBOARD_PORT", "6060")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-file/teamboard", cfg.Storage.PostgresURL)
	assert.Equal(t, "6060", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "8080", HealthPort: "9090"},
			Storage: storage.Config{PostgresURL: "postgres://x", AvatarBackend: storage.AvatarBackendPostgres},
			Auth: AuthConfig{
				JWTSecret:           testSecret,
				TokenTTL:            time.Hour,
				ThrottleBackend:     ThrottleBackendMemory,
				ThrottleMaxFailures: 3,
				ThrottleWindow:      time.Minute,
				RateLimitRequests:   30,
				RateLimitWindow:     time.Minute,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"same ports", func(c *Config) { c.Server.HealthPort = "8080" }, "must be different"},
		{"missing postgres", func(c *Config) { c.Storage.PostgresURL = "" }, "postgres URL is required"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 32 bytes"},
		{"redis throttle without redis", func(c *Config) { c.Auth.ThrottleBackend = ThrottleBackendRedis }, "redis URL is required"},
		{"unknown throttle backend", func(c *Config) { c.Auth.ThrottleBackend = "disk" }, "invalid throttle backend"},
		{"zero failures", func(c *Config) { c.Auth.ThrottleMaxFailures = 0 }, "max failures"},
		{"s3 without bucket", func(c *Config) { c.Storage.AvatarBackend = storage.AvatarBackendS3 }, "S3 bucket is required"},
		{"unknown avatar backend", func(c *Config) { c.Storage.AvatarBackend = "ftp" }, "invalid avatar backend"},
		{"otel without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelServiceName = "teamboard"
		}, "endpoint is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
