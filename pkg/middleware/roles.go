package middleware

import (
	"net/http"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/httputil"
	"github.com/platinummonkey/teamboard/pkg/observability"
)

// Decision is the outcome of a role check
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Authorize allows claims whose role is listed in allowed. There is no role
// hierarchy and an empty list allows nobody.
func Authorize(claims *auth.Claims, allowed []auth.Role) Decision {
	if claims == nil {
		return Deny
	}
	for _, role := range allowed {
		if claims.Role == role {
			return Allow
		}
	}
	return Deny
}

// RequireRoles rejects callers whose role is not one of roles. It must run after
// AuthMiddleware; a request without an auth context is a 401.
func RequireRoles(metrics *observability.Metrics, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if authCtx == nil || authCtx.Claims == nil {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			if Authorize(authCtx.Claims, roles) != Allow {
				metrics.RecordAuthorizationDenial(string(authCtx.Role()))
				observability.FromContext(r.Context()).
					WithFields(map[string]interface{}{
						"nip":  authCtx.NIP(),
						"role": authCtx.Role(),
						"path": r.URL.Path,
					}).Warn("role not permitted")
				httputil.WriteForbidden(w, "insufficient role permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
