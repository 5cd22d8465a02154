package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/storage"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Connect opens the PostgreSQL pool described by cfg and pings it
func Connect(ctx context.Context, cfg storage.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.PostgresMaxConns)
	db.SetMaxIdleConns(cfg.PostgresMinConns)
	db.SetConnMaxLifetime(cfg.PostgresConnMaxLifetime)

	timeout := cfg.PostgresTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// ReportStats copies pool statistics into metrics every interval until ctx ends
func ReportStats(ctx context.Context, db *sql.DB, metrics *observability.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		metrics.ObserveDBStats(db.Stats())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// MapError translates driver errors into storage sentinels. It is shared by every
// package that talks to PostgreSQL directly.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", storage.ErrConflict, pqErr.Constraint)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", storage.ErrNotFound, pqErr.Constraint)
		}
	}
	return err
}

// ExpectOne maps a write that touched zero rows to storage.ErrNotFound
func ExpectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
