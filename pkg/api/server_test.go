package api

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/middleware"
)

var pathVar = regexp.MustCompile(`\{([a-zA-Z]+)(:[^}]*)?\}`)

// concretePath fills every path variable with a value its pattern accepts
func concretePath(template string) string {
	return pathVar.ReplaceAllStringFunc(template, func(v string) string {
		if strings.HasPrefix(v, "{nip") {
			return testNIP
		}
		return "1"
	})
}

func serve(s *Server, method, path, token string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestNewServer_RequiresAuth(t *testing.T) {
	_, err := NewServer(Deps{})
	require.Error(t, err)
}

func TestServer_Mount(t *testing.T) {
	f := newFixture(t)
	noop := func(w http.ResponseWriter, r *http.Request) {}

	tests := []struct {
		name    string
		route   Route
		wantErr string
	}{
		{
			name:  "public route",
			route: Route{Method: http.MethodGet, Path: "/ping", Handler: noop},
		},
		{
			name:    "roles without auth",
			route:   Route{Method: http.MethodGet, Path: "/x", RequiredRoles: adminOnly, Handler: noop},
			wantErr: "requires roles without authentication",
		},
		{
			name:    "unknown role",
			route:   Route{Method: http.MethodGet, Path: "/y", RequiresAuth: true, RequiredRoles: []auth.Role{"Root"}, Handler: noop},
			wantErr: "unknown role",
		},
		{
			name:    "missing handler",
			route:   Route{Method: http.MethodGet, Path: "/z"},
			wantErr: "has no handler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.server.mount(tt.route)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServer_RoutesRegistered(t *testing.T) {
	f := newFixture(t)

	for _, rt := range f.server.Routes() {
		req := httptest.NewRequest(rt.Method, concretePath(rt.Path), nil)
		var match mux.RouteMatch
		assert.True(t, f.server.router.Match(req, &match), "%s %s", rt.Method, rt.Path)
		if match.Route != nil {
			tpl, err := match.Route.GetPathTemplate()
			require.NoError(t, err)
			assert.Equal(t, rt.Path, tpl, "%s %s matched a different route", rt.Method, rt.Path)
		}
	}
}

func TestServer_RoleGate(t *testing.T) {
	roles := []auth.Role{auth.RoleSuperAdmin, auth.RoleAdmin, auth.RoleUser}

	for _, rt := range newFixture(t).server.Routes() {
		rt := rt
		t.Run(rt.Method+" "+rt.Path, func(t *testing.T) {
			path := concretePath(rt.Path)

			if rt.RequiresAuth {
				f := newFixture(t)
				w := serve(f.server, rt.Method, path, "", "")
				assert.Equal(t, http.StatusUnauthorized, w.Code, "no token")
			}

			for _, role := range roles {
				f := newFixture(t)
				w := serve(f.server, rt.Method, path, tokenFor(role), "")

				allowed := len(rt.RequiredRoles) == 0
				for _, r := range rt.RequiredRoles {
					if r == role {
						allowed = true
					}
				}

				if allowed {
					assert.NotEqual(t, http.StatusForbidden, w.Code, "role %s", role)
					assert.NotEqual(t, http.StatusUnauthorized, w.Code, "role %s", role)
				} else {
					assert.Equal(t, http.StatusForbidden, w.Code, "role %s", role)
				}
			}
		})
	}
}

func TestServer_InvalidToken(t *testing.T) {
	f := newFixture(t)
	w := serve(f.server, http.MethodGet, "/teams", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_NotFoundAndMethod(t *testing.T) {
	f := newFixture(t)

	w := serve(f.server, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())

	w = serve(f.server, http.MethodPatch, "/teams", tokenFor(auth.RoleAdmin), "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = serve(f.server, http.MethodGet, "/teams/abc", tokenFor(auth.RoleAdmin), "")
	assert.Equal(t, http.StatusNotFound, w.Code, "non-numeric ids do not match")
}

func TestServer_RateLimitedLogin(t *testing.T) {
	limiter := middleware.NewRateLimiter(&middleware.RateLimitConfig{
		RequestsPerWindow: 1,
		WindowDuration:    time.Minute,
	}, clockwork.NewFakeClock())
	f := newFixture(t, func(d *Deps) { d.RateLimiter = limiter })

	body := `{"username":"a@b.c","password":"secret"}`
	w := serve(f.server, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(f.server, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = serve(f.server, http.MethodGet, "/projects/by-team/1", "", "")
	assert.Equal(t, http.StatusOK, w.Code, "only login and signup are limited")
}

func TestServer_RequestID(t *testing.T) {
	f := newFixture(t)
	w := serve(f.server, http.MethodGet, "/projects/by-team/1", "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
