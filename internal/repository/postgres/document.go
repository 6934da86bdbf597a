package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"wikidesk/internal/domain/models"
	"wikidesk/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface.
// Only the directory engine's view of documents lives here: counts, metadata
// listings and cascading deletion.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// CountByDirectory counts documents directly inside one directory
func (r *PostgresDocumentRepository) CountByDirectory(ctx context.Context, directoryID int64) (int, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE directory_id = $1`, r.tables.Documents)

	var count int
	if err := db.QueryRow(ctx, query, directoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return count, nil
}

// CountByDirectories counts documents per directory in one grouped query.
func (r *PostgresDocumentRepository) CountByDirectories(ctx context.Context, directoryIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(directoryIDs))
	if len(directoryIDs) == 0 {
		return counts, nil
	}

	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT directory_id, COUNT(*)
		FROM %s
		WHERE directory_id = ANY($1)
		GROUP BY directory_id
	`, r.tables.Documents)

	rows, err := db.Query(ctx, query, directoryIDs)
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

// DeleteByDirectory removes every document in the directory and returns the
// deleted ids.
func (r *PostgresDocumentRepository) DeleteByDirectory(ctx context.Context, directoryID int64) ([]int64, error) {
	db := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`DELETE FROM %s WHERE directory_id = $1 RETURNING id`, r.tables.Documents)

	rows, err := db.Query(ctx, query, directoryID)
	if err != nil {
		return nil, fmt.Errorf("delete documents: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted document id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted documents: %w", err)
	}

	return ids, nil
}

// ListByDirectory lists document metadata in a directory (nil = root level)
func (r *PostgresDocumentRepository) ListByDirectory(ctx context.Context, directoryID *int64) ([]models.Document, error) {
	db := GetExecutor(ctx, r.pool)

	var query string
	var args []interface{}

	if directoryID == nil {
		query = fmt.Sprintf(`
			SELECT id, directory_id, title, word_count, created_at, updated_at
			FROM %s WHERE directory_id IS NULL ORDER BY title ASC
		`, r.tables.Documents)
	} else {
		query = fmt.Sprintf(`
			SELECT id, directory_id, title, word_count, created_at, updated_at
			FROM %s WHERE directory_id = $1 ORDER BY title ASC
		`, r.tables.Documents)
		args = append(args, *directoryID)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.DirectoryID,
			&doc.Title,
			&doc.WordCount,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}
