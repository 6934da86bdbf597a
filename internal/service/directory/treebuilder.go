package directory

import (
	"sort"

	"wikidesk/internal/domain/models"
)

// BuildTree assembles a forest from a flat row set. Nodes whose parent is
// missing from the input are treated as roots, so a partial listing still
// renders. Cumulative document counts are computed bottom-up and every
// sibling list is sorted by sort_order ascending.
//
// The forest is rebuilt from scratch on every call; nothing here holds
// references back into persistent state.
func BuildTree(dirs []models.Directory, documentCounts map[int64]int) []*models.TreeNode {
	nodes := make(map[int64]*models.TreeNode, len(dirs))

	// First pass: create all nodes
	for _, dir := range dirs {
		nodes[dir.ID] = &models.TreeNode{
			Directory:     dir,
			DocumentCount: documentCounts[dir.ID],
			Children:      []*models.TreeNode{},
		}
	}

	// Second pass: connect children to parents; orphans become roots
	var roots []*models.TreeNode
	for _, dir := range dirs {
		node := nodes[dir.ID]
		if dir.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*dir.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	// Third pass: cumulative counts and recursive sibling ordering
	for _, root := range roots {
		accumulateCounts(root)
	}
	sortSiblings(roots)

	return roots
}

// accumulateCounts fills TotalDocumentCount with the node's own count plus
// all descendants', returning the subtree total.
func accumulateCounts(node *models.TreeNode) int {
	total := node.DocumentCount
	for _, child := range node.Children {
		total += accumulateCounts(child)
	}
	node.TotalDocumentCount = total
	return total
}

// sortSiblings orders every sibling list by sort_order ascending (id breaks
// ties), recursively.
func sortSiblings(nodes []*models.TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
	for _, node := range nodes {
		sortSiblings(node.Children)
	}
}

// FlattenTree returns the forest in pre-order: each node before its
// children, siblings in tree order.
func FlattenTree(nodes []*models.TreeNode) []*models.TreeNode {
	var flat []*models.TreeNode
	for _, node := range nodes {
		flat = append(flat, node)
		flat = append(flat, FlattenTree(node.Children)...)
	}
	return flat
}

// FindNodeInTree returns the first node matching the predicate in
// depth-first order, or nil.
func FindNodeInTree(nodes []*models.TreeNode, predicate func(*models.TreeNode) bool) *models.TreeNode {
	for _, node := range nodes {
		if predicate(node) {
			return node
		}
		if found := FindNodeInTree(node.Children, predicate); found != nil {
			return found
		}
	}
	return nil
}
