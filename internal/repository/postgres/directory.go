package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"wikidesk/internal/domain"
	"wikidesk/internal/domain/models"
	"wikidesk/internal/domain/repositories"
)

// directoryColumns is the scan order used by every directory query.
const directoryColumns = "id, name, description, parent_id, path, sort_order, created_at, updated_at"

// PostgresDirectoryRepository implements the DirectoryRepository interface
// over a single directories table with a materialized path column.
type PostgresDirectoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(config *RepositoryConfig) repositories.DirectoryRepository {
	return &PostgresDirectoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanDirectory(row pgx.Row, dir *models.Directory) error {
	return row.Scan(
		&dir.ID,
		&dir.Name,
		&dir.Description,
		&dir.ParentID,
		&dir.Path,
		&dir.SortOrder,
		&dir.CreatedAt,
		&dir.UpdatedAt,
	)
}

func collectDirectories(rows pgx.Rows) ([]models.Directory, error) {
	defer rows.Close()

	var dirs []models.Directory
	for rows.Next() {
		var dir models.Directory
		if err := scanDirectory(rows, &dir); err != nil {
			return nil, fmt.Errorf("scan directory: %w", err)
		}
		dirs = append(dirs, dir)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate directories: %w", err)
	}

	return dirs, nil
}

// escapeLike escapes LIKE metacharacters so a path containing % or _ is
// matched literally in prefix queries.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Create inserts the directory and reads back the persisted row. The
// re-fetch is a defensive consistency check: a vanished row right after
// insert surfaces as NotFound instead of silently returning stale data.
func (r *PostgresDirectoryRepository) Create(ctx context.Context, dir *models.Directory) error {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, parent_id, path, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.tables.Directories)

	err := db.QueryRow(ctx, query,
		dir.Name,
		dir.Description,
		dir.ParentID,
		dir.Path,
		dir.SortOrder,
	).Scan(&dir.ID)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a directory already exists at path %q", dir.Path),
				ResourceType: "directory",
				Path:         dir.Path,
			}
		}
		return fmt.Errorf("create directory: %w", err)
	}

	persisted, err := r.GetByID(ctx, dir.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("directory %d vanished after insert: %w", dir.ID, domain.ErrNotFound)
		}
		return err
	}
	*dir = *persisted

	return nil
}

// GetByID retrieves a directory by id
func (r *PostgresDirectoryRepository) GetByID(ctx context.Context, id int64) (*models.Directory, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, directoryColumns, r.tables.Directories)

	var dir models.Directory
	if err := scanDirectory(db.QueryRow(ctx, query, id), &dir); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("directory %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get directory: %w", err)
	}

	return &dir, nil
}

// GetByPath retrieves a directory by exact materialized path
func (r *PostgresDirectoryRepository) GetByPath(ctx context.Context, path string) (*models.Directory, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE path = $1`, directoryColumns, r.tables.Directories)

	var dir models.Directory
	if err := scanDirectory(db.QueryRow(ctx, query, path), &dir); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("directory at path %q: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get directory by path: %w", err)
	}

	return &dir, nil
}

// ListByParent lists direct children ordered by sort_order ascending.
func (r *PostgresDirectoryRepository) ListByParent(ctx context.Context, parentID *int64, opts models.ListOptions) ([]models.Directory, error) {
	db := GetExecutor(ctx, r.pool)

	var sb strings.Builder
	var args []interface{}

	fmt.Fprintf(&sb, `SELECT %s FROM %s WHERE `, directoryColumns, r.tables.Directories)
	if parentID == nil {
		sb.WriteString("parent_id IS NULL")
	} else {
		args = append(args, *parentID)
		fmt.Fprintf(&sb, "parent_id = $%d", len(args))
	}

	if opts.Name != "" {
		args = append(args, "%"+escapeLike(opts.Name)+"%")
		fmt.Fprintf(&sb, " AND name ILIKE $%d", len(args))
	}
	if opts.PathPrefix != "" {
		args = append(args, escapeLike(opts.PathPrefix)+"%")
		fmt.Fprintf(&sb, " AND path LIKE $%d", len(args))
	}

	sb.WriteString(" ORDER BY sort_order ASC, id ASC")

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list directories: %w", err)
	}

	return collectDirectories(rows)
}

// ListAll retrieves every directory, ordered by path so ancestors precede
// their descendants.
func (r *PostgresDirectoryRepository) ListAll(ctx context.Context) ([]models.Directory, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY path ASC`, directoryColumns, r.tables.Directories)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all directories: %w", err)
	}

	return collectDirectories(rows)
}

// PathExists reports whether a row other than excludeID occupies path.
func (r *PostgresDirectoryRepository) PathExists(ctx context.Context, path string, excludeID int64) (bool, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE path = $1 AND ($2 = 0 OR id <> $2))
	`, r.tables.Directories)

	var exists bool
	if err := db.QueryRow(ctx, query, path, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check path exists: %w", err)
	}

	return exists, nil
}

// GetDescendants returns every row under the directory's subtree via a
// prefix match on the materialized path, ordered by path. Lexicographic path
// order guarantees ancestors come before their descendants, which is what
// the cascading rewrites rely on.
func (r *PostgresDirectoryRepository) GetDescendants(ctx context.Context, id int64) ([]models.Directory, error) {
	dir, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE path LIKE $1 ORDER BY path ASC
	`, directoryColumns, r.tables.Directories)

	rows, err := db.Query(ctx, query, escapeLike(dir.Path)+"/%")
	if err != nil {
		return nil, fmt.Errorf("get descendants: %w", err)
	}

	return collectDirectories(rows)
}

// GetDocumentCount counts documents directly inside one directory
func (r *PostgresDirectoryRepository) GetDocumentCount(ctx context.Context, id int64) (int, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE directory_id = $1`, r.tables.Documents)

	var count int
	if err := db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return count, nil
}

// GetDocumentCounts counts documents per directory in one grouped query.
func (r *PostgresDirectoryRepository) GetDocumentCounts(ctx context.Context, ids []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT directory_id, COUNT(*)
		FROM %s
		WHERE directory_id = ANY($1)
		GROUP BY directory_id
	`, r.tables.Documents)

	rows, err := db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("count documents grouped: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dirID int64
		var count int
		if err := rows.Scan(&dirID, &count); err != nil {
			return nil, fmt.Errorf("scan document count: %w", err)
		}
		counts[dirID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document counts: %w", err)
	}

	return counts, nil
}

// Update applies a partial update plus updated_at and returns the row. An
// empty patch is a read-through that still returns the current row.
func (r *PostgresDirectoryRepository) Update(ctx context.Context, id int64, patch models.DirectoryPatch) (*models.Directory, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	db := GetExecutor(ctx, r.pool)

	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Path != nil {
		add("path", *patch.Path)
	}
	if patch.SortOrder != nil {
		add("sort_order", *patch.SortOrder)
	}
	if patch.ParentID != nil {
		add("parent_id", patch.ParentID.ID)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE %s SET %s WHERE id = $%d
		RETURNING %s
	`, r.tables.Directories, strings.Join(sets, ", "), len(args), directoryColumns)

	var dir models.Directory
	if err := scanDirectory(db.QueryRow(ctx, query, args...), &dir); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("directory %d: %w", id, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return nil, &domain.ConflictError{
				Message:      "a directory already exists at the target path",
				ResourceType: "directory",
			}
		}
		return nil, fmt.Errorf("update directory: %w", err)
	}

	return &dir, nil
}

// Delete removes one row, reporting whether anything was removed.
func (r *PostgresDirectoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Directories)

	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete directory: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// UpdatePaths rewrites paths in one transaction. Empty input is a no-op that
// opens no transaction; any failure rolls back every rewrite and rethrows.
func (r *PostgresDirectoryRepository) UpdatePaths(ctx context.Context, updates []models.PathUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	// Join an enclosing transaction when present, otherwise open one here.
	if tx := repositories.GetTx(ctx); tx != nil {
		return r.updatePaths(ctx, tx, updates)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.updatePaths(ctx, tx, updates); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit path updates: %w", err)
	}

	return nil
}

func (r *PostgresDirectoryRepository) updatePaths(ctx context.Context, db repositories.DBTX, updates []models.PathUpdate) error {
	query := fmt.Sprintf(`UPDATE %s SET path = $1, updated_at = now() WHERE id = $2`, r.tables.Directories)

	for _, u := range updates {
		if _, err := db.Exec(ctx, query, u.NewPath, u.ID); err != nil {
			if IsPgDuplicateError(err) {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("a directory already exists at path %q", u.NewPath),
					ResourceType: "directory",
					Path:         u.NewPath,
				}
			}
			return fmt.Errorf("update path for directory %d: %w", u.ID, err)
		}
	}

	return nil
}

// NextSortOrder returns 1+max(sort_order) among siblings, or 0 if none.
func (r *PostgresDirectoryRepository) NextSortOrder(ctx context.Context, parentID *int64) (int, error) {
	db := GetExecutor(ctx, r.pool)

	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT COALESCE(MAX(sort_order) + 1, 0) FROM %s WHERE parent_id IS NULL
		`, r.tables.Directories)
	} else {
		query = fmt.Sprintf(`
			SELECT COALESCE(MAX(sort_order) + 1, 0) FROM %s WHERE parent_id = $1
		`, r.tables.Directories)
		args = append(args, *parentID)
	}

	var next int
	if err := db.QueryRow(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}

	return next, nil
}

// ReorderSiblings assigns sort_order = index for each id in the given order,
// inside one transaction.
func (r *PostgresDirectoryRepository) ReorderSiblings(ctx context.Context, parentID *int64, orderedIDs []int64) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	if tx := repositories.GetTx(ctx); tx != nil {
		return r.reorderSiblings(ctx, tx, parentID, orderedIDs)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.reorderSiblings(ctx, tx, parentID, orderedIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}

	return nil
}

func (r *PostgresDirectoryRepository) reorderSiblings(ctx context.Context, db repositories.DBTX, parentID *int64, orderedIDs []int64) error {
	// The parent_id condition keeps a stray id from another sibling group
	// from being silently renumbered.
	var query string
	if parentID == nil {
		query = fmt.Sprintf(`
			UPDATE %s SET sort_order = $1, updated_at = now()
			WHERE id = $2 AND parent_id IS NULL
		`, r.tables.Directories)
	} else {
		query = fmt.Sprintf(`
			UPDATE %s SET sort_order = $1, updated_at = now()
			WHERE id = $2 AND parent_id = $3
		`, r.tables.Directories)
	}

	for i, id := range orderedIDs {
		args := []interface{}{i, id}
		if parentID != nil {
			args = append(args, *parentID)
		}
		result, err := db.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("reorder directory %d: %w", id, err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("directory %d is not a child of the given parent: %w", id, domain.ErrValidation)
		}
	}

	return nil
}

// Exists reports whether the id is present.
func (r *PostgresDirectoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, r.tables.Directories)

	var exists bool
	if err := db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check directory exists: %w", err)
	}

	return exists, nil
}

// GetAncestors returns the ancestor chain ordered root -> parent using a
// recursive CTE over parent_id.
func (r *PostgresDirectoryRepository) GetAncestors(ctx context.Context, id int64) ([]models.Directory, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		WITH RECURSIVE ancestors AS (
			SELECT d.*, 1 AS height
			FROM %s d
			WHERE d.id = (SELECT parent_id FROM %s WHERE id = $1)
			UNION ALL
			SELECT d.*, a.height + 1
			FROM %s d
			JOIN ancestors a ON d.id = a.parent_id
		)
		SELECT %s FROM ancestors ORDER BY height DESC
	`, r.tables.Directories, r.tables.Directories, r.tables.Directories, directoryColumns)

	rows, err := db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get ancestors: %w", err)
	}

	return collectDirectories(rows)
}

// GetStats returns table-wide aggregates combined from four queries.
func (r *PostgresDirectoryRepository) GetStats(ctx context.Context) (*models.DirectoryStats, error) {
	db := GetExecutor(ctx, r.pool)

	stats := &models.DirectoryStats{}

	total := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Directories)
	if err := db.QueryRow(ctx, total).Scan(&stats.TotalDirectories); err != nil {
		return nil, fmt.Errorf("count directories: %w", err)
	}

	roots := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id IS NULL`, r.tables.Directories)
	if err := db.QueryRow(ctx, roots).Scan(&stats.RootDirectories); err != nil {
		return nil, fmt.Errorf("count root directories: %w", err)
	}

	// Depth falls out of the materialized path: one level per separator.
	depth := fmt.Sprintf(`
		SELECT COALESCE(MAX(length(path) - length(replace(path, '/', ''))), 0) FROM %s
	`, r.tables.Directories)
	if err := db.QueryRow(ctx, depth).Scan(&stats.MaxDepth); err != nil {
		return nil, fmt.Errorf("max depth: %w", err)
	}

	docs := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Documents)
	if err := db.QueryRow(ctx, docs).Scan(&stats.TotalDocuments); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	return stats, nil
}
