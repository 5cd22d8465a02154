package api

import (
	"net/http"

	"github.com/platinummonkey/teamboard/pkg/httputil"
	"github.com/platinummonkey/teamboard/pkg/projects"
)

// createProject handles POST /projects/{teamId}/projects
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathInt64OrError(w, r, "teamId")
	if !ok {
		return
	}

	var req projects.CreateProjectRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	project, err := s.deps.Projects.Create(r.Context(), teamID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteCreated(w, project)
}

// listProjects handles GET /projects/AllProject
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Projects.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, list)
}

// listProjectsByTeam handles GET /projects/by-team/{teamId}
func (s *Server) listProjectsByTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathInt64OrError(w, r, "teamId")
	if !ok {
		return
	}

	list, err := s.deps.Projects.ListByTeam(r.Context(), teamID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, list)
}

// updateProject handles PUT /projects/{id}
func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req projects.UpdateProjectRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	project, err := s.deps.Projects.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, project)
}

// deleteProject handles DELETE /projects/{id}
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.deps.Projects.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}
