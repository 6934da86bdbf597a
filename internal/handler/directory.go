package handler

import (
	"log/slog"
	"net/http"

	"wikidesk/internal/domain/models"
	"wikidesk/internal/domain/services"
	"wikidesk/internal/httputil"
)

// DirectoryHandler exposes directory tree operations over HTTP.
type DirectoryHandler struct {
	service services.DirectoryService
	logger  *slog.Logger
}

func NewDirectoryHandler(service services.DirectoryService, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /api/directories
func (h *DirectoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDirectoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dir, err := h.service.CreateDirectory(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, dir)
}

// Get handles GET /api/directories/{id}
func (h *DirectoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dir, err := h.service.GetDirectory(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, dir)
}

// List handles GET /api/directories. The parent_id query parameter scopes the
// listing to one directory; absent means root level.
func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	parentID, err := httputil.QueryInt64(r, "parent_id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := models.ListOptions{
		Name:       r.URL.Query().Get("name"),
		PathPrefix: r.URL.Query().Get("path_prefix"),
		Limit:      limit,
		Offset:     offset,
	}

	contents, err := h.service.ListChildren(r.Context(), parentID, opts)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// Update handles PATCH /api/directories/{id}
func (h *DirectoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.UpdateDirectoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dir, err := h.service.UpdateDirectory(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, dir)
}

// Delete handles DELETE /api/directories/{id}. Refuses non-empty directories;
// clients check /delete-status first or fall back to /force.
func (h *DirectoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteDirectory(r.Context(), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteStatus handles GET /api/directories/{id}/delete-status
func (h *DirectoryHandler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.service.CheckDeleteStatus(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// ForceDelete handles DELETE /api/directories/{id}/force
func (h *DirectoryHandler) ForceDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ForceDeleteDirectory(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Move handles POST /api/directories/{id}/move
func (h *DirectoryHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.MoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.MoveDirectoryWithChildren(r.Context(), id, req.TargetParentID, req.SortOrder)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// BatchMove handles POST /api/directories/batch-move. Items run independently;
// the response always carries both successful and failed entries.
func (h *DirectoryHandler) BatchMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Moves []services.MoveRequest `json:"moves"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Moves) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "moves must not be empty")
		return
	}

	result, err := h.service.BatchMoveDirectories(r.Context(), req.Moves)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Copy handles POST /api/directories/{id}/copy
func (h *DirectoryHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.CopyRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.CopyDirectoryStructure(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// PathInfo handles GET /api/directories/{id}/path-info
func (h *DirectoryHandler) PathInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.service.GetDirectoryPathInfo(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, info)
}

// Validate handles POST /api/directories/validate. It never mutates; the
// result reports whether the described operation would succeed right now.
func (h *DirectoryHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Operation      services.Operation `json:"operation"`
		ID             *int64             `json:"id"`
		TargetParentID *int64             `json:"target_parent_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ValidateDirectoryOperation(r.Context(), req.Operation, req.ID, req.TargetParentID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Reorder handles POST /api/directories/reorder
func (h *DirectoryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID   *int64  `json:"parent_id"`
		OrderedIDs []int64 `json:"ordered_ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ReorderSiblings(r.Context(), req.ParentID, req.OrderedIDs); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/directories/stats
func (h *DirectoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}
