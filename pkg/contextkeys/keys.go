// Package contextkeys holds every context key shared across packages.
//
// Keys live here so the middleware that sets a value and the handlers that
// read it agree on a single typed key:
//
//	ctx = contextkeys.WithAuth(ctx, authCtx)
//	authCtx, _ := ctx.Value(contextkeys.AuthKey).(*auth.AuthContext)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthKey contains *auth.AuthContext
	// Set by: middleware.AuthMiddleware (pkg/middleware/auth.go)
	// Required by: role gate, handlers acting on the caller
	AuthKey Key = "auth_context"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: logger, error responses
	RequestIDKey Key = "request_id"

	// CallerNIPKey contains the caller's NIP
	// Set by: middleware.AuthMiddleware after token verification
	// Used by: logger
	CallerNIPKey Key = "caller_nip"

	// LoggerKey contains *observability.Logger
	// Set by: httputil.LoggingMiddleware
	LoggerKey Key = "logger"
)

// WithAuth adds authentication context to the context
func WithAuth(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, AuthKey, authCtx)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithCallerNIP records the authenticated caller
func WithCallerNIP(ctx context.Context, nip string) context.Context {
	return context.WithValue(ctx, CallerNIPKey, nip)
}

// WithLogger adds logger to the context
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetCallerNIP returns the authenticated caller, or "" before authentication
func GetCallerNIP(ctx context.Context) string {
	nip, _ := ctx.Value(CallerNIPKey).(string)
	return nip
}
