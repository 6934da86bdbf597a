package repositories

import (
	"context"

	"wikidesk/internal/domain/models"
)

// DirectoryRepository defines data access operations for directories.
//
// Multi-row writes (UpdatePaths, ReorderSiblings) run inside an explicit
// transaction and roll back fully on any failure. Single-row writes rely on
// row-level atomicity. All methods join a transaction already present in the
// context (see TransactionManager).
type DirectoryRepository interface {
	// Create inserts the directory and fills in the generated id and
	// timestamps. The caller computes name, path and sort_order.
	Create(ctx context.Context, dir *models.Directory) error

	// GetByID retrieves a directory by id
	GetByID(ctx context.Context, id int64) (*models.Directory, error)

	// GetByPath retrieves a directory by exact materialized path
	GetByPath(ctx context.Context, path string) (*models.Directory, error)

	// ListByParent lists direct children of parentID (nil = root level),
	// ordered by sort_order ascending
	ListByParent(ctx context.Context, parentID *int64, opts models.ListOptions) ([]models.Directory, error)

	// ListAll retrieves every directory as a flat list
	ListAll(ctx context.Context) ([]models.Directory, error)

	// PathExists reports whether a row other than excludeID occupies path.
	// excludeID 0 means no exclusion.
	PathExists(ctx context.Context, path string, excludeID int64) (bool, error)

	// GetDescendants returns all rows under the directory's subtree, ordered
	// by path so ancestors precede their descendants
	GetDescendants(ctx context.Context, id int64) ([]models.Directory, error)

	// GetDocumentCount counts documents directly inside one directory
	GetDocumentCount(ctx context.Context, id int64) (int, error)

	// GetDocumentCounts counts documents per directory in one grouped query.
	// Empty input short-circuits without a query.
	GetDocumentCounts(ctx context.Context, ids []int64) (map[int64]int, error)

	// Update applies a partial update plus updated_at and returns the row.
	// An empty patch is a read-through.
	Update(ctx context.Context, id int64, patch models.DirectoryPatch) (*models.Directory, error)

	// Delete removes one row, reporting whether anything was removed
	Delete(ctx context.Context, id int64) (bool, error)

	// UpdatePaths rewrites paths in one transaction; empty input is a no-op
	// that opens no transaction
	UpdatePaths(ctx context.Context, updates []models.PathUpdate) error

	// NextSortOrder returns 1+max(sort_order) among siblings, or 0 if none
	NextSortOrder(ctx context.Context, parentID *int64) (int, error)

	// ReorderSiblings assigns sort_order = index for each id, transactionally
	ReorderSiblings(ctx context.Context, parentID *int64, orderedIDs []int64) error

	// Exists reports whether the id is present
	Exists(ctx context.Context, id int64) (bool, error)

	// GetAncestors returns the ancestor chain ordered root -> parent
	GetAncestors(ctx context.Context, id int64) ([]models.Directory, error)

	// GetStats returns table-wide aggregates
	GetStats(ctx context.Context) (*models.DirectoryStats, error)
}
