package api

import (
	"net/http"

	"github.com/platinummonkey/teamboard/pkg/httputil"
	"github.com/platinummonkey/teamboard/pkg/tasks"
)

// createTask handles POST /tasks/{teamId}/{memberId}/{projectId}
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	teamID, ok := httputil.ParsePathInt64OrError(w, r, "teamId")
	if !ok {
		return
	}
	memberID, ok := httputil.ParsePathInt64OrError(w, r, "memberId")
	if !ok {
		return
	}
	projectID, ok := httputil.ParsePathInt64OrError(w, r, "projectId")
	if !ok {
		return
	}

	var req tasks.CreateTaskRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	task, err := s.deps.Tasks.Create(r.Context(), teamID, memberID, projectID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteCreated(w, task)
}

// listTasks handles GET /tasks
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Tasks.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, list)
}

// getTask handles GET /tasks/{id}
func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	task, err := s.deps.Tasks.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, task)
}

// updateTask handles PUT /tasks/{id}
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req tasks.UpdateTaskRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	task, err := s.deps.Tasks.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, task)
}

// deleteTask handles DELETE /tasks/{id}
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.deps.Tasks.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}
