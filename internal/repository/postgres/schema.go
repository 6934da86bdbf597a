package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the directory and document tables when they do not
// exist yet. The unique index on path is the authoritative guard against
// concurrent conflicting moves (pre-checks in the service layer are advisory;
// the constraint decides at commit time).
//
// Documents deliberately carry no foreign key to directories: deletion policy
// is manual and owned by the service layer.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          BIGSERIAL PRIMARY KEY,
				name        VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				parent_id   BIGINT,
				path        TEXT NOT NULL,
				sort_order  INT NOT NULL DEFAULT 0,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Directories),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_path_key ON %s (path)`,
			tables.Directories, tables.Directories),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_id_idx ON %s (parent_id)`,
			tables.Directories, tables.Directories),
		// text_pattern_ops makes the descendant prefix LIKE use the index
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_path_prefix_idx ON %s (path text_pattern_ops)`,
			tables.Directories, tables.Directories),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id           BIGSERIAL PRIMARY KEY,
				directory_id BIGINT,
				title        VARCHAR(255) NOT NULL,
				word_count   INT NOT NULL DEFAULT 0,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_directory_id_idx ON %s (directory_id)`,
			tables.Documents, tables.Documents),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
