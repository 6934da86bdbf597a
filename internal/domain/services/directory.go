package services

import (
	"context"

	"wikidesk/internal/domain/models"
)

// CreateDirectoryRequest carries the fields for creating a directory.
type CreateDirectoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id"`
	SortOrder   *int   `json:"sort_order"`
}

// UpdateDirectoryRequest carries a partial update (rename, description,
// sort order). Moving between parents goes through the dedicated move
// operation so cycle and cascade handling stay in one place.
type UpdateDirectoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

// MoveRequest is one entry of a (batch) subtree move.
type MoveRequest struct {
	SourceID       int64  `json:"source_id"`
	TargetParentID *int64 `json:"target_parent_id"` // nil = move to root level
	SortOrder      *int   `json:"sort_order"`
}

// CopyRequest describes a structural copy of a subtree.
type CopyRequest struct {
	TargetParentID *int64 `json:"target_parent_id"` // nil = copy to root level
	NewName        string `json:"new_name"`         // empty = "<source name>_copy"
}

// Operation names an action checked by ValidateDirectoryOperation.
type Operation string

const (
	OpCreate Operation = "create"
	OpMove   Operation = "move"
	OpCopy   Operation = "copy"
	OpDelete Operation = "delete"
)

// DirectoryContents is a directory listing with its documents, for browsing
// views.
type DirectoryContents struct {
	Directory   *models.Directory  `json:"directory"` // nil when listing root level
	Directories []models.Directory `json:"directories"`
	Documents   []models.Document  `json:"documents"`
}

// DirectoryService owns the cross-cutting tree invariants: path consistency,
// cycle freedom, path uniqueness and delete gating.
type DirectoryService interface {
	// CreateDirectory validates the name, computes the materialized path and
	// inserts the row, rejecting path collisions
	CreateDirectory(ctx context.Context, req *CreateDirectoryRequest) (*models.Directory, error)

	// GetDirectory retrieves one directory
	GetDirectory(ctx context.Context, id int64) (*models.Directory, error)

	// ListChildren lists child directories and documents of parentID
	// (nil = root level)
	ListChildren(ctx context.Context, parentID *int64, opts models.ListOptions) (*DirectoryContents, error)

	// UpdateDirectory renames or re-describes a directory; a rename cascades
	// the path rewrite to every descendant
	UpdateDirectory(ctx context.Context, id int64, req *UpdateDirectoryRequest) (*models.Directory, error)

	// DeleteDirectory removes an empty directory, failing with NotEmptyError
	// when children or documents remain
	DeleteDirectory(ctx context.Context, id int64) error

	// CheckDeleteStatus reports whether a plain delete would succeed
	CheckDeleteStatus(ctx context.Context, id int64) (*models.DeleteStatus, error)

	// ForceDeleteDirectory removes the whole subtree and its documents,
	// deepest level first
	ForceDeleteDirectory(ctx context.Context, id int64) (*models.ForceDeleteResult, error)

	// MoveDirectoryWithChildren re-parents a subtree, rewriting every
	// descendant path in one transaction
	MoveDirectoryWithChildren(ctx context.Context, sourceID int64, targetParentID *int64, sortOrder *int) (*models.MoveResult, error)

	// BatchMoveDirectories runs moves independently; a failing entry is
	// recorded and never aborts the rest
	BatchMoveDirectories(ctx context.Context, moves []MoveRequest) (*models.BatchMoveResult, error)

	// CopyDirectoryStructure duplicates the directory skeleton under a new
	// parent; documents are never copied
	CopyDirectoryStructure(ctx context.Context, sourceID int64, req *CopyRequest) (*models.CopyResult, error)

	// GetDirectoryPathInfo returns ancestors, children and the breadcrumb
	// trail (with the synthetic root entry)
	GetDirectoryPathInfo(ctx context.Context, id int64) (*models.PathInfo, error)

	// ValidateDirectoryOperation is a side-effect-free pre-flight check using
	// the same rules as the mutating operations
	ValidateDirectoryOperation(ctx context.Context, op Operation, id *int64, targetParentID *int64) (*models.ValidationResult, error)

	// ReorderSiblings persists a total sibling order
	ReorderSiblings(ctx context.Context, parentID *int64, orderedIDs []int64) error

	// GetStats returns table-wide aggregates
	GetStats(ctx context.Context) (*models.DirectoryStats, error)
}

// TreeService assembles read-only tree views.
type TreeService interface {
	// GetTree builds the whole forest with per-node and cumulative document
	// counts
	GetTree(ctx context.Context) ([]*models.TreeNode, error)
}
