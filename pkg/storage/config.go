package storage

import "time"

// Avatar backends
const (
	AvatarBackendPostgres = "postgres"
	AvatarBackendS3       = "s3"
)

// Config for the storage backends
type Config struct {
	// PostgreSQL config
	PostgresURL             string
	PostgresMaxConns        int
	PostgresMinConns        int
	PostgresTimeout         time.Duration
	PostgresConnMaxLifetime time.Duration

	// Redis config; empty URL disables Redis
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Avatar blob backend: "postgres" or "s3"
	AvatarBackend string

	// S3 config
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// Avatar read cache
	CacheEnabled bool
	CacheSize    int
	CacheTTL     time.Duration
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		PostgresMaxConns:        20,
		PostgresMinConns:        2,
		PostgresTimeout:         10 * time.Second,
		PostgresConnMaxLifetime: 30 * time.Minute,
		RedisDB:                 0,
		RedisMaxRetries:         3,
		RedisPoolSize:           10,
		AvatarBackend:           AvatarBackendPostgres,
		S3Region:                "us-east-1",
		CacheEnabled:            true,
		CacheSize:               256,
		CacheTTL:                5 * time.Minute,
	}
}
