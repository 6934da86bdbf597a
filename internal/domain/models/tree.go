package models

// TreeNode is a directory with its children nested, as rendered by the tree
// view. TotalDocumentCount is the node's own count plus all descendants'.
type TreeNode struct {
	Directory
	DocumentCount      int         `json:"document_count"`
	TotalDocumentCount int         `json:"total_document_count"`
	Children           []*TreeNode `json:"children"`
}

// BreadcrumbEntry is one hop of a breadcrumb trail. The first entry is always
// the synthetic root (id 0, name "root", path "/") which is not a stored row.
type BreadcrumbEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}
