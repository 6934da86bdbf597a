package directory

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"wikidesk/internal/domain/models"
)

func dir(id int64, parentID *int64, name, path string, sortOrder int) models.Directory {
	return models.Directory{
		ID:        id,
		Name:      name,
		ParentID:  parentID,
		Path:      path,
		SortOrder: sortOrder,
	}
}

func idp(id int64) *int64 { return &id }

func TestBuildTree(t *testing.T) {
	dirs := []models.Directory{
		dir(1, nil, "Docs", "/Docs", 0),
		dir(2, idp(1), "API", "/Docs/API", 1),
		dir(3, idp(1), "Guides", "/Docs/Guides", 0),
		dir(4, idp(2), "v1", "/Docs/API/v1", 0),
		dir(5, nil, "Archive", "/Archive", 1),
	}
	counts := map[int64]int{1: 1, 2: 2, 4: 3, 5: 1}

	got := BuildTree(dirs, counts)

	want := []*models.TreeNode{
		{
			Directory:          dirs[0],
			DocumentCount:      1,
			TotalDocumentCount: 6,
			Children: []*models.TreeNode{
				{
					Directory:          dirs[2],
					DocumentCount:      0,
					TotalDocumentCount: 0,
					Children:           []*models.TreeNode{},
				},
				{
					Directory:          dirs[1],
					DocumentCount:      2,
					TotalDocumentCount: 5,
					Children: []*models.TreeNode{
						{
							Directory:          dirs[3],
							DocumentCount:      3,
							TotalDocumentCount: 3,
							Children:           []*models.TreeNode{},
						},
					},
				},
			},
		},
		{
			Directory:          dirs[4],
			DocumentCount:      1,
			TotalDocumentCount: 1,
			Children:           []*models.TreeNode{},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildTree() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	got := BuildTree(nil, nil)
	if len(got) != 0 {
		t.Errorf("BuildTree(nil) = %d roots, want 0", len(got))
	}
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	// Parent 99 is not part of the input; its child must surface as a root
	// instead of disappearing.
	dirs := []models.Directory{
		dir(1, nil, "Docs", "/Docs", 0),
		dir(2, idp(99), "Orphan", "/Lost/Orphan", 5),
	}

	got := BuildTree(dirs, nil)

	if len(got) != 2 {
		t.Fatalf("BuildTree() = %d roots, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("root ids = [%d %d], want [1 2]", got[0].ID, got[1].ID)
	}
}

func TestBuildTreeSortOrderTieBreaksOnID(t *testing.T) {
	dirs := []models.Directory{
		dir(3, nil, "C", "/C", 1),
		dir(1, nil, "A", "/A", 1),
		dir(2, nil, "B", "/B", 0),
	}

	got := BuildTree(dirs, nil)

	var ids []int64
	for _, n := range got {
		ids = append(ids, n.ID)
	}
	want := []int64{2, 1, 3}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("root order mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenTreePreOrder(t *testing.T) {
	dirs := []models.Directory{
		dir(1, nil, "Docs", "/Docs", 0),
		dir(2, idp(1), "API", "/Docs/API", 0),
		dir(3, idp(2), "v1", "/Docs/API/v1", 0),
		dir(4, idp(1), "Guides", "/Docs/Guides", 1),
		dir(5, nil, "Archive", "/Archive", 1),
	}

	flat := FlattenTree(BuildTree(dirs, nil))

	var paths []string
	for _, n := range flat {
		paths = append(paths, n.Path)
	}
	want := []string{"/Docs", "/Docs/API", "/Docs/API/v1", "/Docs/Guides", "/Archive"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("FlattenTree() order mismatch (-want +got):\n%s", diff)
	}
}

func TestFindNodeInTree(t *testing.T) {
	dirs := []models.Directory{
		dir(1, nil, "Docs", "/Docs", 0),
		dir(2, idp(1), "API", "/Docs/API", 0),
		dir(3, idp(2), "v1", "/Docs/API/v1", 0),
	}
	tree := BuildTree(dirs, nil)

	found := FindNodeInTree(tree, func(n *models.TreeNode) bool { return n.Name == "v1" })
	if found == nil || found.ID != 3 {
		t.Fatalf("FindNodeInTree(v1) = %v, want node 3", found)
	}

	missing := FindNodeInTree(tree, func(n *models.TreeNode) bool { return n.Name == "v2" })
	if missing != nil {
		t.Errorf("FindNodeInTree(v2) = %v, want nil", missing)
	}
}
