package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikidesk/internal/domain"
	"wikidesk/internal/domain/models"
	"wikidesk/internal/domain/services"
)

// stubDirectoryService lets each test plug in just the methods it needs;
// anything else panics loudly instead of passing silently.
type stubDirectoryService struct {
	createFn func(ctx context.Context, req *services.CreateDirectoryRequest) (*models.Directory, error)
	getFn    func(ctx context.Context, id int64) (*models.Directory, error)
	deleteFn func(ctx context.Context, id int64) error
	moveFn   func(ctx context.Context, sourceID int64, targetParentID *int64, sortOrder *int) (*models.MoveResult, error)
}

func (s *stubDirectoryService) CreateDirectory(ctx context.Context, req *services.CreateDirectoryRequest) (*models.Directory, error) {
	return s.createFn(ctx, req)
}

func (s *stubDirectoryService) GetDirectory(ctx context.Context, id int64) (*models.Directory, error) {
	return s.getFn(ctx, id)
}

func (s *stubDirectoryService) DeleteDirectory(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubDirectoryService) MoveDirectoryWithChildren(ctx context.Context, sourceID int64, targetParentID *int64, sortOrder *int) (*models.MoveResult, error) {
	return s.moveFn(ctx, sourceID, targetParentID, sortOrder)
}

func (s *stubDirectoryService) ListChildren(context.Context, *int64, models.ListOptions) (*services.DirectoryContents, error) {
	panic("not stubbed")
}
func (s *stubDirectoryService) UpdateDirectory(context.Context, int64, *services.UpdateDirectoryRequest) (*models.Directory, error) {
	panic("not stubbed")
}
func (s *stubDirectoryService) CheckDeleteStatus(context.Context, int64) (*models.DeleteStatus, error) {
	panic("not stubbed")
}
func (s *stubDirectoryService) ForceDeleteDirectory(context.Context, int64) (*models.ForceDeleteResult, error) {
	panic("not stubbed")
}
func (s *stubDirectoryService) BatchMoveDirectories(context.Context, []services.MoveRequest) (*models.BatchMoveResult, error) {
	panic("not stubbed")
}
func (s *stubDirectoryService) CopyDirectoryStructure(context.Context, int64, *services.CopyRequest) (*models.CopyResult, error) {
	panic("not stubbed")
}
func (s *stubDirectoryService) GetDirectoryPathInfo(context.Context, int64) (*models.PathInfo, error) {
	panic("not stubbed")
}
func (s *stubDirectoryService) ValidateDirectoryOperation(context.Context, services.Operation, *int64, *int64) (*models.ValidationResult, error) {
	panic("not stubbed")
}
func (s *stubDirectoryService) ReorderSiblings(context.Context, *int64, []int64) error {
	panic("not stubbed")
}
func (s *stubDirectoryService) GetStats(context.Context) (*models.DirectoryStats, error) {
	panic("not stubbed")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMux(svc services.DirectoryService) *http.ServeMux {
	h := NewDirectoryHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/directories", h.Create)
	mux.HandleFunc("GET /api/directories/{id}", h.Get)
	mux.HandleFunc("DELETE /api/directories/{id}", h.Delete)
	mux.HandleFunc("POST /api/directories/{id}/move", h.Move)
	return mux
}

func TestCreateDirectoryHandler(t *testing.T) {
	svc := &stubDirectoryService{
		createFn: func(ctx context.Context, req *services.CreateDirectoryRequest) (*models.Directory, error) {
			assert.Equal(t, "Docs", req.Name)
			return &models.Directory{ID: 1, Name: "Docs", Path: "/Docs"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/directories", strings.NewReader(`{"name":"Docs"}`))
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got models.Directory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "/Docs", got.Path)
}

func TestCreateDirectoryHandlerBadJSON(t *testing.T) {
	svc := &stubDirectoryService{}

	req := httptest.NewRequest(http.MethodPost, "/api/directories", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestGetDirectoryHandlerInvalidID(t *testing.T) {
	svc := &stubDirectoryService{}

	req := httptest.NewRequest(http.MethodGet, "/api/directories/abc", nil)
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDirectoryHandlerNotFound(t *testing.T) {
	svc := &stubDirectoryService{
		getFn: func(ctx context.Context, id int64) (*models.Directory, error) {
			return nil, &domain.NotFoundError{Message: "directory 42 not found"}
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/directories/42", nil)
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "directory 42 not found", problem["detail"])
}

func TestGetDirectoryHandlerSentinelNotFound(t *testing.T) {
	// The postgres layer wraps missing rows around the bare sentinel; that
	// must still surface as a 404, not a 500.
	svc := &stubDirectoryService{
		getFn: func(ctx context.Context, id int64) (*models.Directory, error) {
			return nil, fmt.Errorf("directory %d: %w", id, domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/directories/42", nil)
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDirectoryHandlerSentinelValidation(t *testing.T) {
	svc := &stubDirectoryService{
		deleteFn: func(ctx context.Context, id int64) error {
			return fmt.Errorf("directory %d is not a child of the given parent: %w", id, domain.ErrValidation)
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/directories/7", nil)
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMoveDirectoryHandlerConflictExtras(t *testing.T) {
	svc := &stubDirectoryService{
		moveFn: func(ctx context.Context, sourceID int64, targetParentID *int64, sortOrder *int) (*models.MoveResult, error) {
			return nil, &domain.ConflictError{
				Message:      `a directory already exists at path "/Docs/API"`,
				ResourceType: "directory",
				Path:         "/Docs/API",
			}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/directories/7/move", strings.NewReader(`{"target_parent_id":1}`))
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/Docs/API", problem["path"])
	assert.Equal(t, "directory", problem["resource_type"])
}

func TestDeleteDirectoryHandlerNotEmpty(t *testing.T) {
	svc := &stubDirectoryService{
		deleteFn: func(ctx context.Context, id int64) error {
			return &domain.NotEmptyError{Message: "该目录包含 2 个子目录"}
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/directories/7", nil)
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteDirectoryHandlerNoContent(t *testing.T) {
	svc := &stubDirectoryService{
		deleteFn: func(ctx context.Context, id int64) error { return nil },
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/directories/7", nil)
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
