// Package postgres holds the storage backends: the PostgreSQL pool and schema
// migrations, the user and avatar stores, the S3 avatar store and the Redis
// client used by the shared login throttle.
package postgres
