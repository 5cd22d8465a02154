package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/storage"
)

// Throttle backends
const (
	ThrottleBackendMemory = "memory"
	ThrottleBackendRedis  = "redis"
)

// envFiles are tried in order; the first one found is loaded. Existing
// environment variables always win over file values.
var envFiles = []string{".env", "../.env"}

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Storage       storage.Config
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// AuthConfig holds token, hashing and throttling settings
type AuthConfig struct {
	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int

	ThrottleBackend     string
	ThrottleMaxFailures int
	ThrottleWindow      time.Duration

	// Per-IP limits on login and signup
	RateLimitRequests int
	RateLimitBurst    int
	RateLimitWindow   time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel

	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables, after loading the
// first .env file found
func LoadConfig() (*Config, error) {
	for _, p := range envFiles {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Auth:          loadAuthConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("TEAMBOARD_HOST", "0.0.0.0"),
		Port:            getEnv("TEAMBOARD_PORT", "8080"),
		ReadTimeout:     getEnvDuration("TEAMBOARD_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("TEAMBOARD_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("TEAMBOARD_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("TEAMBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("TEAMBOARD_MAX_BODY_BYTES", 6<<20),
		CORSOrigins:     getEnvList("TEAMBOARD_CORS_ORIGINS"),
		HealthPort:      getEnv("TEAMBOARD_HEALTH_PORT", "9090"),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	cfg.PostgresURL = getEnv("TEAMBOARD_POSTGRES_URL", cfg.PostgresURL)
	if maxConns := getEnvInt("TEAMBOARD_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("TEAMBOARD_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	cfg.PostgresTimeout = getEnvDuration("TEAMBOARD_POSTGRES_TIMEOUT", cfg.PostgresTimeout)
	cfg.PostgresConnMaxLifetime = getEnvDuration("TEAMBOARD_POSTGRES_CONN_MAX_LIFETIME", cfg.PostgresConnMaxLifetime)

	cfg.RedisURL = getEnv("TEAMBOARD_REDIS_URL", cfg.RedisURL)
	cfg.RedisPassword = getEnv("TEAMBOARD_REDIS_PASSWORD", cfg.RedisPassword)
	if redisDB := getEnvInt("TEAMBOARD_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if retries := getEnvInt("TEAMBOARD_REDIS_MAX_RETRIES", 0); retries > 0 {
		cfg.RedisMaxRetries = retries
	}
	if poolSize := getEnvInt("TEAMBOARD_REDIS_POOL_SIZE", 0); poolSize > 0 {
		cfg.RedisPoolSize = poolSize
	}

	cfg.AvatarBackend = strings.ToLower(getEnv("TEAMBOARD_AVATAR_BACKEND", cfg.AvatarBackend))
	cfg.S3Endpoint = getEnv("TEAMBOARD_S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3Region = getEnv("TEAMBOARD_S3_REGION", cfg.S3Region)
	cfg.S3Bucket = getEnv("TEAMBOARD_S3_BUCKET", cfg.S3Bucket)
	cfg.S3AccessKey = getEnv("TEAMBOARD_S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = getEnv("TEAMBOARD_S3_SECRET_KEY", cfg.S3SecretKey)
	cfg.S3UsePathStyle = getEnvBool("TEAMBOARD_S3_USE_PATH_STYLE", cfg.S3UsePathStyle)

	cfg.CacheEnabled = getEnvBool("TEAMBOARD_CACHE_ENABLED", cfg.CacheEnabled)
	if size := getEnvInt("TEAMBOARD_CACHE_SIZE", 0); size > 0 {
		cfg.CacheSize = size
	}
	cfg.CacheTTL = getEnvDuration("TEAMBOARD_CACHE_TTL", cfg.CacheTTL)

	return cfg
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:           getEnv("TEAMBOARD_JWT_SECRET", ""),
		JWTIssuer:           getEnv("TEAMBOARD_JWT_ISSUER", auth.DefaultIssuer),
		TokenTTL:            getEnvDuration("TEAMBOARD_TOKEN_TTL", auth.DefaultTokenTTL),
		BcryptCost:          getEnvInt("TEAMBOARD_BCRYPT_COST", auth.DefaultBcryptCost),
		ThrottleBackend:     strings.ToLower(getEnv("TEAMBOARD_THROTTLE_BACKEND", ThrottleBackendMemory)),
		ThrottleMaxFailures: getEnvInt("TEAMBOARD_THROTTLE_MAX_FAILURES", auth.DefaultMaxFailures),
		ThrottleWindow:      getEnvDuration("TEAMBOARD_THROTTLE_WINDOW", auth.DefaultThrottleWindow),
		RateLimitRequests:   getEnvInt("TEAMBOARD_RATE_LIMIT_REQUESTS", 30),
		RateLimitBurst:      getEnvInt("TEAMBOARD_RATE_LIMIT_BURST", 10),
		RateLimitWindow:     getEnvDuration("TEAMBOARD_RATE_LIMIT_WINDOW", time.Minute),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("TEAMBOARD_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("TEAMBOARD_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("TEAMBOARD_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("TEAMBOARD_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("TEAMBOARD_OTEL_SERVICE_NAME", "teamboard"),
		OTelServiceVersion: getEnv("TEAMBOARD_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("TEAMBOARD_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.HealthPort == "" {
		return errors.New("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return errors.New("server port and health port must be different")
	}

	if c.Storage.PostgresURL == "" {
		return errors.New("postgres URL is required")
	}
	switch c.Storage.AvatarBackend {
	case storage.AvatarBackendPostgres:
	case storage.AvatarBackendS3:
		if c.Storage.S3Bucket == "" {
			return errors.New("S3 bucket is required for the s3 avatar backend")
		}
	default:
		return fmt.Errorf("invalid avatar backend: %s (must be postgres or s3)", c.Storage.AvatarBackend)
	}

	if len(c.Auth.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("JWT secret must be at least %d bytes", auth.MinSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	switch c.Auth.ThrottleBackend {
	case ThrottleBackendMemory:
	case ThrottleBackendRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("redis URL is required for the redis throttle backend")
		}
	default:
		return fmt.Errorf("invalid throttle backend: %s (must be memory or redis)", c.Auth.ThrottleBackend)
	}
	if c.Auth.ThrottleMaxFailures <= 0 {
		return errors.New("throttle max failures must be positive")
	}
	if c.Auth.ThrottleWindow <= 0 {
		return errors.New("throttle window must be positive")
	}
	if c.Auth.RateLimitRequests <= 0 || c.Auth.RateLimitWindow <= 0 {
		return errors.New("rate limit requests and window must be positive")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return errors.New("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return errors.New("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// Addr returns the API listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// HealthAddr returns the health/metrics listen address
func (s ServerConfig) HealthAddr() string {
	return s.Host + ":" + s.HealthPort
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty items
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
