package repositories

import (
	"context"

	"wikidesk/internal/domain/models"
)

// DocumentRepository is the directory engine's view of the document
// subsystem: counts for delete gating and tree views, cascading deletion for
// force-delete. Content and versioning are owned elsewhere.
type DocumentRepository interface {
	// CountByDirectory counts documents directly inside one directory
	CountByDirectory(ctx context.Context, directoryID int64) (int, error)

	// CountByDirectories counts documents per directory in one grouped query.
	// Empty input short-circuits without a query.
	CountByDirectories(ctx context.Context, directoryIDs []int64) (map[int64]int, error)

	// DeleteByDirectory removes every document in the directory and returns
	// the deleted document ids
	DeleteByDirectory(ctx context.Context, directoryID int64) ([]int64, error)

	// ListByDirectory lists document metadata in a directory (nil = root level)
	ListByDirectory(ctx context.Context, directoryID *int64) ([]models.Document, error)
}
