package handler

import (
	"log/slog"
	"net/http"

	"wikidesk/internal/domain/models"
	"wikidesk/internal/domain/services"
	"wikidesk/internal/httputil"
)

// TreeHandler serves the assembled directory tree.
type TreeHandler struct {
	service services.TreeService
	logger  *slog.Logger
}

func NewTreeHandler(service services.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		service: service,
		logger:  logger,
	}
}

// GetTree handles GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.GetTree(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if tree == nil {
		tree = []*models.TreeNode{}
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
