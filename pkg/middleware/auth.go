package middleware

import (
	"net/http"
	"strings"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/contextkeys"
	"github.com/platinummonkey/teamboard/pkg/httputil"
)

// TokenVerifier turns a bearer token into verified claims
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

// AuthMiddleware requires a valid bearer token on every request it wraps
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Format: "Bearer <token>"
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := m.verifier.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			httputil.WriteUnauthorized(w, auth.ErrInvalidToken.Error())
			return
		}

		ctx := contextkeys.WithAuth(r.Context(), &auth.AuthContext{Claims: claims})
		ctx = contextkeys.WithCallerNIP(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	authCtx, ok := r.Context().Value(contextkeys.AuthKey).(*auth.AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}
