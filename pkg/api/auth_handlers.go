package api

import (
	"net/http"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/httputil"
	"github.com/platinummonkey/teamboard/pkg/middleware"
)

// inactiveResponse is the soft refusal returned to inactive accounts
type inactiveResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// login handles POST /auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	result, err := s.deps.Auth.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if result.Outcome == auth.LoginInactive {
		_ = httputil.WriteSuccess(w, inactiveResponse{
			Status:  "inactive",
			Message: "account is inactive, contact an administrator",
		})
		return
	}
	_ = httputil.WriteSuccess(w, auth.AuthResult{User: result.User, Token: result.Token})
}

// signup handles POST /auth/signup
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	result, err := s.deps.Auth.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteCreated(w, result)
}

// listUsers handles GET /auth/user
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Auth.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, users)
}

// getUser handles GET /auth/user/by-nip/{nip}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	nip, ok := httputil.ParsePathStringOrError(w, r, "nip")
	if !ok {
		return
	}

	user, err := s.deps.Auth.GetUser(r.Context(), nip)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, user)
}

// updatePassword handles PUT /auth/update-password/{nip}
func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	nip, ok := httputil.ParsePathStringOrError(w, r, "nip")
	if !ok {
		return
	}

	var req auth.UpdatePasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.deps.Auth.UpdatePassword(r.Context(), nip, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, messageResponse{Message: "password updated"})
}

// updateUser handles PUT /auth/update-user/{nip}. Only Super Admin and Admin
// callers may change a role or status, and no caller may grant a role above
// their own.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	nip, ok := httputil.ParsePathStringOrError(w, r, "nip")
	if !ok {
		return
	}

	var req auth.UpdateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Role != nil || req.Status != nil {
		caller := middleware.GetAuthContext(r)
		if !caller.HasRole(auth.RoleSuperAdmin, auth.RoleAdmin) {
			s.deps.Metrics.RecordAuthorizationDenial(string(caller.Role()))
			httputil.WriteForbidden(w, "only administrators may change role or status")
			return
		}
		if req.Role != nil && !caller.Role().CanAssign(*req.Role) {
			s.deps.Metrics.RecordAuthorizationDenial(string(caller.Role()))
			httputil.WriteForbidden(w, "cannot grant a role above your own")
			return
		}
	}

	user, err := s.deps.Auth.UpdateUser(r.Context(), nip, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, user)
}
