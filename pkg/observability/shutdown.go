package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ShutdownFunc releases one resource during shutdown
type ShutdownFunc func(context.Context) error

type namedShutdown struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager runs registered shutdown hooks in reverse registration order,
// so resources opened first (database, redis) are closed after the servers using them.
type ShutdownManager struct {
	logger  *Logger
	timeout time.Duration

	mu    sync.Mutex
	funcs []namedShutdown
}

// NewShutdownManager creates a new shutdown manager; zero timeout means 30s
func NewShutdownManager(logger *Logger, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a named shutdown hook
func (sm *ShutdownManager) Register(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.funcs = append(sm.funcs, namedShutdown{name: name, fn: fn})
}

// Shutdown runs every hook once, bounded by the manager timeout. All hooks run even
// when one fails; the errors are joined.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, sm.timeout)
	defer cancel()

	sm.mu.Lock()
	funcs := sm.funcs
	sm.funcs = nil
	sm.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		hook := funcs[i]
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%s: shutdown timeout reached", hook.name))
			continue
		}
		if err := hook.fn(ctx); err != nil {
			sm.logger.WithError(err).WithField("component", hook.name).Error("shutdown hook failed")
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			continue
		}
		sm.logger.WithField("component", hook.name).Debug("shutdown complete")
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	sm.logger.Info("graceful shutdown complete")
	return nil
}
