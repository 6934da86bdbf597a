package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"wikidesk/internal/domain"
	"wikidesk/internal/httputil"
)

// handleServiceError maps domain errors to HTTP responses. Any error
// implementing domain.HTTPError chooses its own status; everything else is a
// 500 with the detail withheld from the client.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		httputil.RespondErrorWithExtras(w, conflictErr.StatusCode(), conflictErr.Message, map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"path":          conflictErr.Path,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	// Sentinel-wrapped errors from the repository layer carry no status of
	// their own; map them the same way the typed errors would be.
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrCycle), errors.Is(err, domain.ErrNotEmpty):
		httputil.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	logger.Error("unhandled service error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}
