// Package middleware provides the HTTP gates in front of teamboard handlers:
// bearer token authentication, role authorization and per-client rate limiting.
//
// AuthMiddleware verifies the bearer token and stores an *auth.AuthContext on the
// request context. RequireRoles then admits only the listed roles:
//
//	chain := httputil.Chain(
//		middleware.NewAuthMiddleware(authService).Handler,
//		middleware.RequireRoles(metrics, auth.RoleSuperAdmin, auth.RoleAdmin),
//	)
//
// RateLimiter is a per-IP token bucket used on the unauthenticated login and
// signup routes, in addition to the per-account login throttle in pkg/auth.
package middleware
