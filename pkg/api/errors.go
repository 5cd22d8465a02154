package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/avatars"
	"github.com/platinummonkey/teamboard/pkg/httputil"
	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/storage"
	"github.com/platinummonkey/teamboard/pkg/validation"
)

// writeServiceError maps a service error to its status. Unclassified errors are
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors

	switch {
	case errors.Is(err, auth.ErrThrottled):
		httputil.WriteTooManyRequests(w, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		httputil.WriteUnauthorized(w, err.Error())
	case errors.As(err, &verrs):
		httputil.WriteDetailedError(w, http.StatusBadRequest, "validation failed", verrs)
	case errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, auth.ErrIncorrectPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, avatars.ErrInvalidUpload),
		errors.Is(err, httputil.ErrBadRequest):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, storage.ErrConflict):
		httputil.WriteConflict(w, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteNotFound(w, err.Error())
	default:
		ctx := r.Context()
		observability.UpdateLoggerWithTraceContext(ctx, observability.FromContext(ctx)).
			WithError(err).
			WithFields(map[string]interface{}{"method": r.Method, "path": r.URL.Path}).
			Error("request failed")
		httputil.WriteInternalError(w)
	}
}
