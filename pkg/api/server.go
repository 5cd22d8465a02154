package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/avatars"
	"github.com/platinummonkey/teamboard/pkg/httputil"
	"github.com/platinummonkey/teamboard/pkg/middleware"
	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/projects"
	"github.com/platinummonkey/teamboard/pkg/tasks"
	"github.com/platinummonkey/teamboard/pkg/teams"
)

// AuthService is the account side of the API
type AuthService interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error)
	Signup(ctx context.Context, req auth.SignupRequest) (*auth.AuthResult, error)
	ListUsers(ctx context.Context) ([]auth.PublicUser, error)
	GetUser(ctx context.Context, nip string) (*auth.PublicUser, error)
	UpdatePassword(ctx context.Context, nip string, req auth.UpdatePasswordRequest) error
	UpdateUser(ctx context.Context, nip string, req auth.UpdateUserRequest) (*auth.PublicUser, error)
	VerifyToken(token string) (*auth.Claims, error)
}

// AvatarService stores profile images
type AvatarService interface {
	Get(ctx context.Context, nip string) (*avatars.Avatar, error)
	Upload(ctx context.Context, nip string, upload avatars.Upload) (*avatars.Avatar, error)
	Replace(ctx context.Context, nip string, upload avatars.Upload) (*avatars.Avatar, error)
	Delete(ctx context.Context, nip string) error
}

// Deps wires the server to its services. Metrics, RateLimiter and Logger are optional.
type Deps struct {
	Auth     AuthService
	Avatars  AvatarService
	Teams    teams.Service
	Projects projects.Service
	Tasks    tasks.Service

	RateLimiter *middleware.RateLimiter
	Metrics     *observability.Metrics
	Logger      *observability.Logger

	CORSOrigins  []string
	MaxBodyBytes int64
	Tracing      bool
}

// Server is the HTTP API
type Server struct {
	deps    Deps
	router  *mux.Router
	authMW  *middleware.AuthMiddleware
	logger  *observability.Logger
	handler http.Handler
}

// NewServer builds the router from the route table
func NewServer(deps Deps) (*Server, error) {
	if deps.Auth == nil {
		return nil, errors.New("api: auth service is required")
	}
	if deps.Logger == nil {
		deps.Logger = observability.NewNopLogger()
	}

	s := &Server{
		deps:   deps,
		router: mux.NewRouter(),
		authMW: middleware.NewAuthMiddleware(deps.Auth),
		logger: deps.Logger,
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "route not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	for _, rt := range s.Routes() {
		if err := s.mount(rt); err != nil {
			return nil, err
		}
	}

	middlewares := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(deps.Logger),
		httputil.LoggingMiddleware(deps.Logger),
	}
	if len(deps.CORSOrigins) > 0 {
		middlewares = append(middlewares, httputil.CORSMiddleware(deps.CORSOrigins))
	}
	if deps.MaxBodyBytes > 0 {
		middlewares = append(middlewares, httputil.MaxBytesMiddleware(deps.MaxBodyBytes))
	}

	var handler http.Handler = httputil.Chain(middlewares...)(s.router)
	if deps.Tracing {
		handler = otelhttp.NewHandler(handler, "teamboard",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if route := mux.CurrentRoute(r); route != nil {
					if tpl, err := route.GetPathTemplate(); err == nil {
						return r.Method + " " + tpl
					}
				}
				return r.Method + " " + r.URL.Path
			}),
		)
	}
	s.handler = handler
	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// mount registers one route record. Role requirements only make sense behind
// authentication, so a record with roles but no auth is rejected.
func (s *Server) mount(rt Route) error {
	if rt.Handler == nil {
		return fmt.Errorf("api: route %s %s has no handler", rt.Method, rt.Path)
	}
	if len(rt.RequiredRoles) > 0 && !rt.RequiresAuth {
		return fmt.Errorf("api: route %s %s requires roles without authentication", rt.Method, rt.Path)
	}
	for _, role := range rt.RequiredRoles {
		if !role.Valid() {
			return fmt.Errorf("api: route %s %s names unknown role %q", rt.Method, rt.Path, role)
		}
	}

	var h http.Handler = rt.Handler
	if len(rt.RequiredRoles) > 0 {
		h = middleware.RequireRoles(s.deps.Metrics, rt.RequiredRoles...)(h)
	}
	if rt.RequiresAuth {
		h = s.authMW.Handler(h)
	}
	if rt.RateLimited && s.deps.RateLimiter != nil {
		h = s.deps.RateLimiter.Handler(h)
	}
	h = s.deps.Metrics.InstrumentHandler(rt.Method, rt.Path, h)

	s.router.Handle(rt.Path, h).Methods(rt.Method)
	return nil
}
