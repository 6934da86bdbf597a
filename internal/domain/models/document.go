package models

import "time"

// Document is the metadata view of a wiki document. Content, versioning and
// search live in their own subsystem; the directory engine only references
// documents by directory_id (no cascading foreign key - deletion is manual).
type Document struct {
	ID          int64     `json:"id" db:"id"`
	DirectoryID *int64    `json:"directory_id" db:"directory_id"` // NULL = root level
	Title       string    `json:"title" db:"title"`
	WordCount   int       `json:"word_count" db:"word_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
