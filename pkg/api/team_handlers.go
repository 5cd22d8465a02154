package api

import (
	"net/http"

	"github.com/platinummonkey/teamboard/pkg/httputil"
	"github.com/platinummonkey/teamboard/pkg/middleware"
	"github.com/platinummonkey/teamboard/pkg/teams"
)

// createTeam handles POST /teams; the caller becomes the owner
func (s *Server) createTeam(w http.ResponseWriter, r *http.Request) {
	var req teams.CreateTeamRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	owner := middleware.GetAuthContext(r).NIP()
	team, err := s.deps.Teams.CreateTeam(r.Context(), owner, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteCreated(w, team)
}

// listTeams handles GET /teams
func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Teams.ListTeams(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, list)
}

// getTeam handles GET /teams/{id}
func (s *Server) getTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	team, err := s.deps.Teams.GetTeam(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, team)
}

// updateTeam handles PUT /teams/{id}
func (s *Server) updateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req teams.UpdateTeamRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	team, err := s.deps.Teams.UpdateTeam(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, team)
}

// deleteTeam handles DELETE /teams/{id}
func (s *Server) deleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.deps.Teams.DeleteTeam(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}

// listMembers handles GET /teams/{id}/members
func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	members, err := s.deps.Teams.ListMembers(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, members)
}

// addMember handles POST /teams/{id}/members
func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req teams.AddMemberRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	member, err := s.deps.Teams.AddMember(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteCreated(w, member)
}

// removeMember handles DELETE /teams/{id}/members/{nip}
func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	nip, ok := httputil.ParsePathStringOrError(w, r, "nip")
	if !ok {
		return
	}

	if err := s.deps.Teams.RemoveMember(r.Context(), id, nip); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}
