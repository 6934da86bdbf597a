package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"wikidesk/internal/domain"
	"wikidesk/internal/domain/models"
	"wikidesk/internal/domain/repositories"
	"wikidesk/internal/domain/services"
	"wikidesk/internal/pathcodec"
)

type directoryService struct {
	dirRepo   repositories.DirectoryRepository
	docRepo   repositories.DocumentRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(
	dirRepo repositories.DirectoryRepository,
	docRepo repositories.DocumentRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.DirectoryService {
	return &directoryService{
		dirRepo:   dirRepo,
		docRepo:   docRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// CreateDirectory validates the name, computes the materialized path from the
// parent and inserts the row. The conflict pre-check and the insert run in
// one transaction; the unique index on path is the authoritative guard, so a
// constraint violation at commit time surfaces as the same ConflictError.
func (s *directoryService) CreateDirectory(ctx context.Context, req *services.CreateDirectoryRequest) (*models.Directory, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	name := pathcodec.SanitizeName(req.Name)

	var parentPath string
	if req.ParentID != nil {
		parent, err := s.dirRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		parentPath = parent.Path
	}

	dir := &models.Directory{
		Name:        name,
		Description: req.Description,
		ParentID:    req.ParentID,
		Path:        pathcodec.BuildPath(parentPath, name),
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		exists, err := s.dirRepo.PathExists(txCtx, dir.Path, 0)
		if err != nil {
			return err
		}
		if exists {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a directory already exists at path %q", dir.Path),
				ResourceType: "directory",
				Path:         dir.Path,
			}
		}

		if req.SortOrder != nil {
			dir.SortOrder = *req.SortOrder
		} else {
			next, err := s.dirRepo.NextSortOrder(txCtx, req.ParentID)
			if err != nil {
				return err
			}
			dir.SortOrder = next
		}

		return s.dirRepo.Create(txCtx, dir)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("directory created",
		"id", dir.ID,
		"name", dir.Name,
		"path", dir.Path,
		"parent_id", dir.ParentID,
	)

	return dir, nil
}

// GetDirectory retrieves one directory
func (s *directoryService) GetDirectory(ctx context.Context, id int64) (*models.Directory, error) {
	return s.dirRepo.GetByID(ctx, id)
}

// ListChildren lists child directories and documents of parentID
func (s *directoryService) ListChildren(ctx context.Context, parentID *int64, opts models.ListOptions) (*services.DirectoryContents, error) {
	var dir *models.Directory
	if parentID != nil {
		loaded, err := s.dirRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		dir = loaded
	}

	children, err := s.dirRepo.ListByParent(ctx, parentID, opts)
	if err != nil {
		return nil, err
	}

	docs, err := s.docRepo.ListByDirectory(ctx, parentID)
	if err != nil {
		return nil, err
	}

	return &services.DirectoryContents{
		Directory:   dir,
		Directories: children,
		Documents:   docs,
	}, nil
}

// UpdateDirectory renames or re-describes a directory. A rename recomputes
// the materialized path and rewrites every descendant path in the same
// transaction, keeping the path invariant intact.
func (s *directoryService) UpdateDirectory(ctx context.Context, id int64, req *services.UpdateDirectoryRequest) (*models.Directory, error) {
	if err := validateUpdateRequest(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	dir, err := s.dirRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := models.DirectoryPatch{
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}

	var pathUpdates []models.PathUpdate
	if req.Name != nil {
		name := pathcodec.SanitizeName(*req.Name)
		if name != dir.Name {
			newPath := pathcodec.BuildPath(pathcodec.ParentPath(dir.Path), name)

			exists, err := s.dirRepo.PathExists(ctx, newPath, dir.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, &domain.ConflictError{
					Message:      fmt.Sprintf("a directory already exists at path %q", newPath),
					ResourceType: "directory",
					Path:         newPath,
				}
			}

			descendants, err := s.dirRepo.GetDescendants(ctx, dir.ID)
			if err != nil {
				return nil, err
			}
			for _, desc := range descendants {
				pathUpdates = append(pathUpdates, models.PathUpdate{
					ID:      desc.ID,
					NewPath: strings.Replace(desc.Path, dir.Path, newPath, 1),
				})
			}

			patch.Name = &name
			patch.Path = &newPath
		}
	}

	var updated *models.Directory
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		updated, err = s.dirRepo.Update(txCtx, id, patch)
		if err != nil {
			return err
		}
		return s.dirRepo.UpdatePaths(txCtx, pathUpdates)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("directory updated",
		"id", updated.ID,
		"name", updated.Name,
		"path", updated.Path,
		"descendants_rewritten", len(pathUpdates),
	)

	return updated, nil
}

// DeleteDirectory removes an empty directory. Directories with children or
// documents are rejected with NotEmptyError; use ForceDeleteDirectory for a
// cascading delete.
func (s *directoryService) DeleteDirectory(ctx context.Context, id int64) error {
	status, err := s.CheckDeleteStatus(ctx, id)
	if err != nil {
		return err
	}
	if !status.CanDelete {
		return &domain.NotEmptyError{
			Message: strings.Join(status.Warnings, "；"),
		}
	}

	deleted, err := s.dirRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return &domain.NotFoundError{Message: fmt.Sprintf("directory %d not found", id)}
	}

	s.logger.Info("directory deleted", "id", id)
	return nil
}

// CheckDeleteStatus reports whether a plain delete would succeed. Descendant
// documents are reported but only block deletion indirectly, through the
// children check.
func (s *directoryService) CheckDeleteStatus(ctx context.Context, id int64) (*models.DeleteStatus, error) {
	dir, err := s.dirRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	children, err := s.dirRepo.ListByParent(ctx, &dir.ID, models.ListOptions{})
	if err != nil {
		return nil, err
	}

	docCount, err := s.docRepo.CountByDirectory(ctx, dir.ID)
	if err != nil {
		return nil, err
	}

	descendants, err := s.dirRepo.GetDescendants(ctx, dir.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(descendants)+1)
	ids = append(ids, dir.ID)
	for _, desc := range descendants {
		ids = append(ids, desc.ID)
	}

	counts, err := s.docRepo.CountByDirectories(ctx, ids)
	if err != nil {
		return nil, err
	}
	totalDocs := 0
	for _, c := range counts {
		totalDocs += c
	}

	status := &models.DeleteStatus{
		CanDelete:          len(children) == 0 && docCount == 0,
		HasChildren:        len(children) > 0,
		HasDocuments:       docCount > 0,
		ChildrenCount:      len(children),
		DocumentCount:      docCount,
		TotalDocumentCount: totalDocs,
		Warnings:           []string{},
	}

	if status.ChildrenCount > 0 {
		status.Warnings = append(status.Warnings, fmt.Sprintf("该目录包含 %d 个子目录", status.ChildrenCount))
	}
	if status.DocumentCount > 0 {
		status.Warnings = append(status.Warnings, fmt.Sprintf("该目录包含 %d 个文档", status.DocumentCount))
	}
	if descendantDocs := totalDocs - docCount; descendantDocs > 0 {
		status.Warnings = append(status.Warnings, fmt.Sprintf("其子目录共包含 %d 个文档", descendantDocs))
	}

	return status, nil
}

// ForceDeleteDirectory removes the whole subtree and every document inside
// it. Rows are processed deepest level first so no child ever outlives its
// parent's deletion pass. Irreversible.
func (s *directoryService) ForceDeleteDirectory(ctx context.Context, id int64) (*models.ForceDeleteResult, error) {
	dir, err := s.dirRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	descendants, err := s.dirRepo.GetDescendants(ctx, dir.ID)
	if err != nil {
		return nil, err
	}

	doomed := append(descendants, *dir)
	sort.SliceStable(doomed, func(i, j int) bool {
		return pathcodec.Level(doomed[i].Path) > pathcodec.Level(doomed[j].Path)
	})

	result := &models.ForceDeleteResult{
		DeletedDirectoryIDs: []int64{},
		DeletedDocumentIDs:  []int64{},
		Warnings:            []string{},
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, d := range doomed {
			docIDs, err := s.docRepo.DeleteByDirectory(txCtx, d.ID)
			if err != nil {
				return err
			}
			result.DeletedDocumentIDs = append(result.DeletedDocumentIDs, docIDs...)

			if _, err := s.dirRepo.Delete(txCtx, d.ID); err != nil {
				return err
			}
			result.DeletedDirectoryIDs = append(result.DeletedDirectoryIDs, d.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Warnings = append(result.Warnings,
		fmt.Sprintf("已永久删除 %d 个目录和 %d 个文档", len(result.DeletedDirectoryIDs), len(result.DeletedDocumentIDs)),
		"删除操作不可恢复",
	)

	s.logger.Info("directory force deleted",
		"id", id,
		"directories", len(result.DeletedDirectoryIDs),
		"documents", len(result.DeletedDocumentIDs),
	)

	return result, nil
}

// MoveDirectoryWithChildren re-parents a subtree. Descendants are loaded
// before the mutation; their new paths are the old ones with the source's
// old path prefix replaced once, rewritten in the same transaction as the
// source row.
func (s *directoryService) MoveDirectoryWithChildren(ctx context.Context, sourceID int64, targetParentID *int64, sortOrder *int) (*models.MoveResult, error) {
	source, err := s.dirRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	var targetPath string
	if targetParentID != nil {
		if *targetParentID == source.ID {
			return nil, &domain.CycleError{Message: "cannot move a directory under itself"}
		}
		target, err := s.dirRepo.GetByID(ctx, *targetParentID)
		if err != nil {
			return nil, err
		}
		if pathcodec.IsDescendantPath(target.Path, source.Path) {
			return nil, &domain.CycleError{Message: "cannot move a directory into its own subtree"}
		}
		targetPath = target.Path
	}

	newPath := pathcodec.BuildPath(targetPath, source.Name)

	exists, err := s.dirRepo.PathExists(ctx, newPath, source.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a directory already exists at path %q", newPath),
			ResourceType: "directory",
			Path:         newPath,
		}
	}

	// Snapshot the subtree before any path changes.
	descendants, err := s.dirRepo.GetDescendants(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	var moved *models.Directory
	affected := make([]models.PathChange, 0, len(descendants))

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var newSortOrder int
		if sortOrder != nil {
			newSortOrder = *sortOrder
		} else {
			next, err := s.dirRepo.NextSortOrder(txCtx, targetParentID)
			if err != nil {
				return err
			}
			newSortOrder = next
		}

		moved, err = s.dirRepo.Update(txCtx, source.ID, models.DirectoryPatch{
			Path:      &newPath,
			SortOrder: &newSortOrder,
			ParentID:  &models.ParentRef{ID: targetParentID},
		})
		if err != nil {
			return err
		}

		updates := make([]models.PathUpdate, 0, len(descendants))
		for _, desc := range descendants {
			// Prefix replace applied once at the matched prefix; safe
			// because paths are unique and the descendant set was selected
			// by that exact prefix.
			rewritten := strings.Replace(desc.Path, source.Path, newPath, 1)
			updates = append(updates, models.PathUpdate{ID: desc.ID, NewPath: rewritten})
			affected = append(affected, models.PathChange{
				ID:      desc.ID,
				OldPath: desc.Path,
				NewPath: rewritten,
			})
		}

		return s.dirRepo.UpdatePaths(txCtx, updates)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("directory moved",
		"id", source.ID,
		"old_path", source.Path,
		"new_path", moved.Path,
		"descendants", len(affected),
	)

	return &models.MoveResult{MovedDirectory: moved, AffectedPaths: affected}, nil
}

// BatchMoveDirectories executes each move independently. A failing entry is
// recorded in FailedMoves and never aborts or rolls back the rest; the batch
// itself always returns successfully. This partial-success behavior is a
// documented contract, not a missing transaction.
func (s *directoryService) BatchMoveDirectories(ctx context.Context, moves []services.MoveRequest) (*models.BatchMoveResult, error) {
	result := &models.BatchMoveResult{
		SuccessfulMoves: []models.MoveResult{},
		FailedMoves:     []models.FailedMove{},
	}

	for _, move := range moves {
		moved, err := s.MoveDirectoryWithChildren(ctx, move.SourceID, move.TargetParentID, move.SortOrder)
		if err != nil {
			result.FailedMoves = append(result.FailedMoves, models.FailedMove{
				SourceID: move.SourceID,
				Error:    err.Error(),
			})
			continue
		}
		result.SuccessfulMoves = append(result.SuccessfulMoves, *moved)
	}

	s.logger.Info("batch move finished",
		"requested", len(moves),
		"succeeded", len(result.SuccessfulMoves),
		"failed", len(result.FailedMoves),
	)

	return result, nil
}

// CopyDirectoryStructure duplicates the directory skeleton under a new
// parent. Descendants are walked in path order so every copy's parent
// already exists; documents are never copied.
func (s *directoryService) CopyDirectoryStructure(ctx context.Context, sourceID int64, req *services.CopyRequest) (*models.CopyResult, error) {
	source, err := s.dirRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	var targetPath string
	if req.TargetParentID != nil {
		target, err := s.dirRepo.GetByID(ctx, *req.TargetParentID)
		if err != nil {
			return nil, err
		}
		targetPath = target.Path
	}

	name := req.NewName
	if name == "" {
		name = source.Name + "_copy"
	}
	if err := pathcodec.ValidateName(name); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	name = pathcodec.SanitizeName(name)

	newRootPath := pathcodec.BuildPath(targetPath, name)

	exists, err := s.dirRepo.PathExists(ctx, newRootPath, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a directory already exists at path %q", newRootPath),
			ResourceType: "directory",
			Path:         newRootPath,
		}
	}

	descendants, err := s.dirRepo.GetDescendants(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	copied := &models.Directory{
		Name:        name,
		Description: source.Description,
		ParentID:    req.TargetParentID,
		Path:        newRootPath,
	}
	children := make([]*models.Directory, 0, len(descendants))

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		next, err := s.dirRepo.NextSortOrder(txCtx, req.TargetParentID)
		if err != nil {
			return err
		}
		copied.SortOrder = next

		if err := s.dirRepo.Create(txCtx, copied); err != nil {
			return err
		}

		// Each copy's parent is resolved by looking up the already-created
		// directory at the corresponding rewritten path.
		byPath := map[string]*models.Directory{newRootPath: copied}

		for _, desc := range descendants {
			newDescPath := strings.Replace(desc.Path, source.Path, newRootPath, 1)
			parent, ok := byPath[pathcodec.ParentPath(newDescPath)]
			if !ok {
				return fmt.Errorf("copy: missing parent for %q", newDescPath)
			}

			child := &models.Directory{
				Name:        desc.Name,
				Description: desc.Description,
				ParentID:    &parent.ID,
				Path:        newDescPath,
				SortOrder:   desc.SortOrder,
			}
			if err := s.dirRepo.Create(txCtx, child); err != nil {
				return err
			}

			byPath[newDescPath] = child
			children = append(children, child)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("directory structure copied",
		"source_id", source.ID,
		"copy_id", copied.ID,
		"path", copied.Path,
		"children", len(children),
	)

	return &models.CopyResult{CopiedDirectory: copied, CopiedChildren: children}, nil
}

// GetDirectoryPathInfo returns the directory with its ancestor chain, direct
// children and breadcrumb trail. The breadcrumb always starts with the
// synthetic root entry (id 0, name "root", path "/"), which is not a stored
// row.
func (s *directoryService) GetDirectoryPathInfo(ctx context.Context, id int64) (*models.PathInfo, error) {
	dir, err := s.dirRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ancestors, err := s.dirRepo.GetAncestors(ctx, dir.ID)
	if err != nil {
		return nil, err
	}

	children, err := s.dirRepo.ListByParent(ctx, &dir.ID, models.ListOptions{})
	if err != nil {
		return nil, err
	}

	breadcrumb := make([]models.BreadcrumbEntry, 0, len(ancestors)+2)
	breadcrumb = append(breadcrumb, models.BreadcrumbEntry{ID: 0, Name: "root", Path: "/"})
	for _, a := range ancestors {
		breadcrumb = append(breadcrumb, models.BreadcrumbEntry{ID: a.ID, Name: a.Name, Path: a.Path})
	}
	breadcrumb = append(breadcrumb, models.BreadcrumbEntry{ID: dir.ID, Name: dir.Name, Path: dir.Path})

	return &models.PathInfo{
		Directory:  dir,
		Ancestors:  ancestors,
		Children:   children,
		Breadcrumb: breadcrumb,
	}, nil
}

// ValidateDirectoryOperation is a side-effect-free pre-flight check reusing
// the same rules as the mutating operations, for UI validation before
// committing.
func (s *directoryService) ValidateDirectoryOperation(ctx context.Context, op services.Operation, id *int64, targetParentID *int64) (*models.ValidationResult, error) {
	result := &models.ValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}
	fail := func(msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, msg)
	}

	switch op {
	case services.OpCreate:
		if targetParentID != nil {
			exists, err := s.dirRepo.Exists(ctx, *targetParentID)
			if err != nil {
				return nil, err
			}
			if !exists {
				fail(fmt.Sprintf("parent directory %d does not exist", *targetParentID))
			}
		}

	case services.OpMove, services.OpCopy:
		if id == nil {
			fail("source directory id is required")
			return result, nil
		}
		source, err := s.dirRepo.GetByID(ctx, *id)
		if err != nil {
			if isNotFound(err) {
				fail(fmt.Sprintf("directory %d does not exist", *id))
				return result, nil
			}
			return nil, err
		}

		var targetPath string
		if targetParentID != nil {
			if op == services.OpMove && *targetParentID == source.ID {
				fail("cannot move a directory under itself")
				return result, nil
			}
			target, err := s.dirRepo.GetByID(ctx, *targetParentID)
			if err != nil {
				if isNotFound(err) {
					fail(fmt.Sprintf("target directory %d does not exist", *targetParentID))
					return result, nil
				}
				return nil, err
			}
			targetPath = target.Path
			if op == services.OpMove && pathcodec.IsDescendantPath(target.Path, source.Path) {
				fail("cannot move a directory into its own subtree")
				return result, nil
			}

			if op == services.OpMove {
				newPath := pathcodec.BuildPath(target.Path, source.Name)
				exists, err := s.dirRepo.PathExists(ctx, newPath, source.ID)
				if err != nil {
					return nil, err
				}
				if exists {
					fail(fmt.Sprintf("a directory already exists at path %q", newPath))
				}
			}
		}

		if op == services.OpCopy {
			copyPath := pathcodec.BuildPath(targetPath, source.Name+"_copy")
			exists, err := s.dirRepo.PathExists(ctx, copyPath, 0)
			if err != nil {
				return nil, err
			}
			if exists {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("default copy name is taken; a new name is required (%q exists)", copyPath))
			}
		}

	case services.OpDelete:
		if id == nil {
			fail("directory id is required")
			return result, nil
		}
		status, err := s.CheckDeleteStatus(ctx, *id)
		if err != nil {
			if isNotFound(err) {
				fail(fmt.Sprintf("directory %d does not exist", *id))
				return result, nil
			}
			return nil, err
		}
		if status.ChildrenCount > 0 {
			fail(fmt.Sprintf("该目录包含 %d 个子目录", status.ChildrenCount))
		}
		if status.DocumentCount > 0 {
			fail(fmt.Sprintf("该目录包含 %d 个文档", status.DocumentCount))
		}
		if descendantDocs := status.TotalDocumentCount - status.DocumentCount; descendantDocs > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("其子目录共包含 %d 个文档", descendantDocs))
		}

	default:
		fail(fmt.Sprintf("unknown operation %q", op))
	}

	return result, nil
}

// ReorderSiblings persists a total sibling order under one parent.
func (s *directoryService) ReorderSiblings(ctx context.Context, parentID *int64, orderedIDs []int64) error {
	if parentID != nil {
		exists, err := s.dirRepo.Exists(ctx, *parentID)
		if err != nil {
			return err
		}
		if !exists {
			return &domain.NotFoundError{Message: fmt.Sprintf("directory %d not found", *parentID)}
		}
	}

	if err := s.dirRepo.ReorderSiblings(ctx, parentID, orderedIDs); err != nil {
		return err
	}

	s.logger.Info("siblings reordered", "parent_id", parentID, "count", len(orderedIDs))
	return nil
}

// GetStats returns table-wide aggregates
func (s *directoryService) GetStats(ctx context.Context) (*models.DirectoryStats, error) {
	return s.dirRepo.GetStats(ctx)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
