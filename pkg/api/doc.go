// Package api is the HTTP surface of teamboard.
//
// # Routes
//
// Every endpoint is a Route record in the table returned by Server.Routes. A
// record names its method and path, whether a bearer token is required and which
// roles may call it:
//
//	{Method: http.MethodGet, Path: "/tasks", RequiresAuth: true,
//		RequiredRoles: []auth.Role{auth.RoleSuperAdmin}, Handler: s.listTasks}
//
// NewServer mounts each record behind, in order, request metrics, the optional
// per-IP rate limiter, token verification and the role gate. Roles are matched
// exactly; Super Admin does not imply Admin.
//
// # Errors
//
// Service errors are mapped to statuses in one place (writeServiceError):
// throttled logins are 429, bad credentials and tokens 401, validation failures
// 400 with per-field details, conflicts 409 and missing records 404. Anything
// else is logged and answered with a generic 500.
//
// # Usage
//
//	srv, err := api.NewServer(api.Deps{
//		Auth:     authService,
//		Avatars:  avatarService,
//		Teams:    teams.NewPostgresService(db),
//		Projects: projects.NewPostgresService(db),
//		Tasks:    tasks.NewPostgresService(db),
//		Metrics:  metrics,
//		Logger:   logger,
//	})
//	http.ListenAndServe(":8080", srv)
package api
