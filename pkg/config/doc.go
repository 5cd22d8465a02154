// Package config loads teamboard configuration from TEAMBOARD_* environment
// variables, optionally seeded from a .env file.
//
// Server settings:
//
//	TEAMBOARD_PORT="8080"
//	TEAMBOARD_HEALTH_PORT="9090"
//	TEAMBOARD_CORS_ORIGINS="https://board.example.com"
//
// Storage settings:
//
//	TEAMBOARD_POSTGRES_URL="postgres://localhost/teamboard?sslmode=disable"
//	TEAMBOARD_REDIS_URL="redis://localhost:6379/0"
//	TEAMBOARD_AVATAR_BACKEND="postgres"  # postgres, s3
//	TEAMBOARD_S3_BUCKET="teamboard-avatars"
//
// Auth settings:
//
//	TEAMBOARD_JWT_SECRET="<at least 32 bytes>"
//	TEAMBOARD_TOKEN_TTL="24h"
//	TEAMBOARD_THROTTLE_BACKEND="memory"  # memory, redis
//	TEAMBOARD_THROTTLE_MAX_FAILURES="3"
//	TEAMBOARD_THROTTLE_WINDOW="1m"
//
// Observability settings:
//
//	TEAMBOARD_LOG_LEVEL="info"  # debug, info, warn, error
//	TEAMBOARD_OTEL_ENABLED="true"
//	TEAMBOARD_OTEL_ENDPOINT="otel-collector:4317"
//
// Variables already set in the environment take precedence over the .env file.
package config
