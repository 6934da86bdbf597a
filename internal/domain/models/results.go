package models

// DeleteStatus is the pre-flight report for deleting a directory. CanDelete
// is true only when the directory has no direct children and no direct
// documents; descendant documents are reported but only block through the
// children check.
type DeleteStatus struct {
	CanDelete          bool     `json:"can_delete"`
	HasChildren        bool     `json:"has_children"`
	HasDocuments       bool     `json:"has_documents"`
	ChildrenCount      int      `json:"children_count"`
	DocumentCount      int      `json:"document_count"`
	TotalDocumentCount int      `json:"total_document_count"`
	Warnings           []string `json:"warnings"`
}

// ForceDeleteResult reports what a cascading delete removed.
type ForceDeleteResult struct {
	DeletedDirectoryIDs []int64  `json:"deleted_directory_ids"`
	DeletedDocumentIDs  []int64  `json:"deleted_document_ids"`
	Warnings            []string `json:"warnings"`
}

// PathChange records one descendant's path rewrite during a move. Entries may
// show unchanged values when the move did not alter the source path; that
// reflects the batch operation, not an error.
type PathChange struct {
	ID      int64  `json:"id"`
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// MoveResult is the outcome of a subtree move.
type MoveResult struct {
	MovedDirectory *Directory   `json:"moved_directory"`
	AffectedPaths  []PathChange `json:"affected_paths"`
}

// FailedMove records one batch-move entry that failed. The batch keeps going;
// one failing move never rolls back unrelated moves.
type FailedMove struct {
	SourceID int64  `json:"source_id"`
	Error    string `json:"error"`
}

// BatchMoveResult aggregates per-item outcomes of a batch move.
type BatchMoveResult struct {
	SuccessfulMoves []MoveResult `json:"successful_moves"`
	FailedMoves     []FailedMove `json:"failed_moves"`
}

// CopyResult is the outcome of a structural copy. Documents are never copied,
// only the directory skeleton.
type CopyResult struct {
	CopiedDirectory *Directory   `json:"copied_directory"`
	CopiedChildren  []*Directory `json:"copied_children"`
}

// PathInfo bundles a directory with its ancestor chain, direct children and
// breadcrumb trail for navigation views.
type PathInfo struct {
	Directory  *Directory        `json:"directory"`
	Ancestors  []Directory       `json:"ancestors"`
	Children   []Directory       `json:"children"`
	Breadcrumb []BreadcrumbEntry `json:"breadcrumb"`
}

// ValidationResult is the outcome of a side-effect-free operation pre-check.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
