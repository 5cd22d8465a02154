package api

import (
	"net/http"

	"github.com/platinummonkey/teamboard/pkg/auth"
)

// Route is one entry of the route table: what to match, who may call it and
// what handles it.
type Route struct {
	Method        string
	Path          string
	RequiresAuth  bool
	RequiredRoles []auth.Role
	RateLimited   bool
	Handler       http.HandlerFunc
}

var (
	superAdminOnly = []auth.Role{auth.RoleSuperAdmin}
	adminsOnly     = []auth.Role{auth.RoleSuperAdmin, auth.RoleAdmin}
	adminOnly      = []auth.Role{auth.RoleAdmin}
	adminOrUser    = []auth.Role{auth.RoleAdmin, auth.RoleUser}
)

// Routes returns the route table
func (s *Server) Routes() []Route {
	return []Route{
		// accounts
		{Method: http.MethodPost, Path: "/auth/login", RateLimited: true, Handler: s.login},
		{Method: http.MethodPost, Path: "/auth/signup", RateLimited: true, Handler: s.signup},
		{Method: http.MethodGet, Path: "/auth/user", RequiresAuth: true, RequiredRoles: adminsOnly, Handler: s.listUsers},
		{Method: http.MethodGet, Path: "/auth/user/by-nip/{nip}", RequiresAuth: true, Handler: s.getUser},
		{Method: http.MethodPut, Path: "/auth/update-password/{nip}", RequiresAuth: true, Handler: s.updatePassword},
		{Method: http.MethodPut, Path: "/auth/update-user/{nip}", RequiresAuth: true, Handler: s.updateUser},

		// avatars
		{Method: http.MethodGet, Path: "/auth/avatar/{nip}", RequiresAuth: true, Handler: s.getAvatar},
		{Method: http.MethodPost, Path: "/auth/avatar/{nip}", RequiresAuth: true, Handler: s.uploadAvatar},
		{Method: http.MethodPut, Path: "/auth/avatar/{nip}", RequiresAuth: true, Handler: s.replaceAvatar},
		{Method: http.MethodDelete, Path: "/auth/avatar/{nip}", RequiresAuth: true, Handler: s.deleteAvatar},

		// teams
		{Method: http.MethodPost, Path: "/teams", RequiresAuth: true, RequiredRoles: adminsOnly, Handler: s.createTeam},
		{Method: http.MethodGet, Path: "/teams", RequiresAuth: true, Handler: s.listTeams},
		{Method: http.MethodGet, Path: "/teams/{id:[0-9]+}", RequiresAuth: true, Handler: s.getTeam},
		{Method: http.MethodPut, Path: "/teams/{id:[0-9]+}", RequiresAuth: true, RequiredRoles: adminsOnly, Handler: s.updateTeam},
		{Method: http.MethodDelete, Path: "/teams/{id:[0-9]+}", RequiresAuth: true, RequiredRoles: adminsOnly, Handler: s.deleteTeam},
		{Method: http.MethodGet, Path: "/teams/{id:[0-9]+}/members", RequiresAuth: true, Handler: s.listMembers},
		{Method: http.MethodPost, Path: "/teams/{id:[0-9]+}/members", RequiresAuth: true, RequiredRoles: adminsOnly, Handler: s.addMember},
		{Method: http.MethodDelete, Path: "/teams/{id:[0-9]+}/members/{nip}", RequiresAuth: true, RequiredRoles: adminsOnly, Handler: s.removeMember},

		// projects
		{Method: http.MethodPost, Path: "/projects/{teamId:[0-9]+}/projects", RequiresAuth: true, RequiredRoles: adminsOnly, Handler: s.createProject},
		{Method: http.MethodGet, Path: "/projects/AllProject", RequiresAuth: true, RequiredRoles: superAdminOnly, Handler: s.listProjects},
		{Method: http.MethodGet, Path: "/projects/by-team/{teamId:[0-9]+}", Handler: s.listProjectsByTeam},
		{Method: http.MethodPut, Path: "/projects/{id:[0-9]+}", RequiresAuth: true, Handler: s.updateProject},
		{Method: http.MethodDelete, Path: "/projects/{id:[0-9]+}", RequiresAuth: true, RequiredRoles: adminsOnly, Handler: s.deleteProject},

		// tasks
		{Method: http.MethodPost, Path: "/tasks/{teamId:[0-9]+}/{memberId:[0-9]+}/{projectId:[0-9]+}", RequiresAuth: true, RequiredRoles: adminOrUser, Handler: s.createTask},
		{Method: http.MethodGet, Path: "/tasks", RequiresAuth: true, RequiredRoles: superAdminOnly, Handler: s.listTasks},
		{Method: http.MethodGet, Path: "/tasks/{id:[0-9]+}", RequiresAuth: true, RequiredRoles: adminOrUser, Handler: s.getTask},
		{Method: http.MethodPut, Path: "/tasks/{id:[0-9]+}", RequiresAuth: true, RequiredRoles: adminOrUser, Handler: s.updateTask},
		{Method: http.MethodDelete, Path: "/tasks/{id:[0-9]+}", RequiresAuth: true, RequiredRoles: adminOnly, Handler: s.deleteTask},
	}
}
