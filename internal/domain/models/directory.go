package models

import "time"

// Directory is a node in the wiki directory tree. Path is the materialized
// path from the root ("/Docs/API"); it always equals the sanitized-name chain
// from root to this node and is unique across the whole table.
type Directory struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	ParentID    *int64    `json:"parent_id" db:"parent_id"` // NULL = root level
	Path        string    `json:"path" db:"path"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// PathUpdate is one entry of a batch path rewrite.
type PathUpdate struct {
	ID      int64
	NewPath string
}

// ParentRef wraps a nullable parent id so a patch can distinguish
// "leave parent unchanged" (nil *ParentRef) from "set parent to NULL".
type ParentRef struct {
	ID *int64
}

// DirectoryPatch carries the fields of a partial update. Nil fields are left
// untouched; an empty patch is a read-through that still returns the row.
type DirectoryPatch struct {
	Name        *string
	Description *string
	Path        *string
	SortOrder   *int
	ParentID    *ParentRef
}

// IsEmpty reports whether the patch changes nothing.
func (p DirectoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Path == nil &&
		p.SortOrder == nil && p.ParentID == nil
}

// ListOptions filters and pages a sibling listing.
type ListOptions struct {
	Name       string // substring match on name
	PathPrefix string // prefix match on path
	Limit      int
	Offset     int
}

// DirectoryStats aggregates table-wide numbers for the admin dashboard.
type DirectoryStats struct {
	TotalDirectories int64 `json:"total_directories"`
	RootDirectories  int64 `json:"root_directories"`
	MaxDepth         int   `json:"max_depth"`
	TotalDocuments   int64 `json:"total_documents"`
}
