// Package httputil provides helpers for JSON responses, request parsing and the
// middleware shared by every teamboard route.
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, user)
//	httputil.WriteCreated(w, team)
//	httputil.WriteNotFound(w, "team not found")
//	httputil.WriteDetailedError(w, http.StatusBadRequest, "validation failed", details)
//	httputil.WriteInternalError(w) // always {"error":"internal server error"}
//
// # Request Parsing
//
//	var req auth.LoginRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return
//	}
//	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
//
// Parse failures wrap ErrBadRequest.
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(6<<20),
//	)(router)
package httputil
