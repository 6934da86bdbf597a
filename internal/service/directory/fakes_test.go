package directory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"wikidesk/internal/domain"
	"wikidesk/internal/domain/models"
	"wikidesk/internal/domain/repositories"
	"wikidesk/internal/domain/services"
)

// fakeRepo is an in-memory stand-in for both the directory and document
// repositories. It enforces the same path-uniqueness and parent-membership
// rules as the postgres implementation so service tests exercise real error
// paths.
type fakeRepo struct {
	mu        sync.Mutex
	nextDirID int64
	nextDocID int64
	dirs      map[int64]*models.Directory
	docs      map[int64]*models.Document

	// deleteOrder records directory ids in Delete call order, for asserting
	// deepest-first cascades.
	deleteOrder []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		dirs: make(map[int64]*models.Directory),
		docs: make(map[int64]*models.Document),
	}
}

func copyDir(d *models.Directory) *models.Directory {
	c := *d
	if d.ParentID != nil {
		pid := *d.ParentID
		c.ParentID = &pid
	}
	return &c
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// addDoc seeds a document without going through a service.
func (f *fakeRepo) addDoc(directoryID *int64, title string) *models.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextDocID++
	doc := &models.Document{
		ID:          f.nextDocID,
		DirectoryID: directoryID,
		Title:       title,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.docs[doc.ID] = doc
	return doc
}

// DirectoryRepository

func (f *fakeRepo) Create(ctx context.Context, dir *models.Directory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.dirs {
		if d.Path == dir.Path {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a directory already exists at path %q", dir.Path),
				ResourceType: "directory",
				Path:         dir.Path,
			}
		}
	}
	f.nextDirID++
	dir.ID = f.nextDirID
	dir.CreatedAt = time.Now()
	dir.UpdatedAt = dir.CreatedAt
	f.dirs[dir.ID] = copyDir(dir)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*models.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dirs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("directory %d not found", id)}
	}
	return copyDir(d), nil
}

func (f *fakeRepo) GetByPath(ctx context.Context, path string) (*models.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.dirs {
		if d.Path == path {
			return copyDir(d), nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("directory %q not found", path)}
}

func (f *fakeRepo) ListByParent(ctx context.Context, parentID *int64, opts models.ListOptions) ([]models.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Directory
	for _, d := range f.dirs {
		if !sameParent(d.ParentID, parentID) {
			continue
		}
		if opts.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(opts.Name)) {
			continue
		}
		if opts.PathPrefix != "" && !strings.HasPrefix(d.Path, opts.PathPrefix) {
			continue
		}
		out = append(out, *copyDir(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]models.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Directory
	for _, d := range f.dirs {
		out = append(out, *copyDir(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *fakeRepo) PathExists(ctx context.Context, path string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.dirs {
		if d.Path == path && d.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) GetDescendants(ctx context.Context, id int64) ([]models.Directory, error) {
	base, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimRight(base.Path, "/") + "/"
	var out []models.Directory
	for _, d := range f.dirs {
		if strings.HasPrefix(d.Path, prefix) {
			out = append(out, *copyDir(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *fakeRepo) GetDocumentCount(ctx context.Context, id int64) (int, error) {
	return f.CountByDirectory(ctx, id)
}

func (f *fakeRepo) GetDocumentCounts(ctx context.Context, ids []int64) (map[int64]int, error) {
	return f.CountByDirectories(ctx, ids)
}

func (f *fakeRepo) Update(ctx context.Context, id int64, patch models.DirectoryPatch) (*models.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dirs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("directory %d not found", id)}
	}
	if patch.IsEmpty() {
		return copyDir(d), nil
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Path != nil {
		d.Path = *patch.Path
	}
	if patch.SortOrder != nil {
		d.SortOrder = *patch.SortOrder
	}
	if patch.ParentID != nil {
		d.ParentID = patch.ParentID.ID
	}
	d.UpdatedAt = time.Now()
	return copyDir(d), nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.dirs[id]; !ok {
		return false, nil
	}
	delete(f.dirs, id)
	f.deleteOrder = append(f.deleteOrder, id)
	return true, nil
}

func (f *fakeRepo) UpdatePaths(ctx context.Context, updates []models.PathUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range updates {
		d, ok := f.dirs[u.ID]
		if !ok {
			return fmt.Errorf("update paths: directory %d not found", u.ID)
		}
		d.Path = u.NewPath
		d.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeRepo) NextSortOrder(ctx context.Context, parentID *int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := 0
	for _, d := range f.dirs {
		if sameParent(d.ParentID, parentID) && d.SortOrder+1 > next {
			next = d.SortOrder + 1
		}
	}
	return next, nil
}

func (f *fakeRepo) ReorderSiblings(ctx context.Context, parentID *int64, orderedIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx, id := range orderedIDs {
		d, ok := f.dirs[id]
		if !ok || !sameParent(d.ParentID, parentID) {
			return fmt.Errorf("directory %d is not a child of the given parent: %w", id, domain.ErrValidation)
		}
		d.SortOrder = idx
		d.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeRepo) Exists(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.dirs[id]
	return ok, nil
}

func (f *fakeRepo) GetAncestors(ctx context.Context, id int64) ([]models.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dirs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("directory %d not found", id)}
	}
	var chain []models.Directory
	for d.ParentID != nil {
		parent, ok := f.dirs[*d.ParentID]
		if !ok {
			break
		}
		chain = append(chain, *copyDir(parent))
		d = parent
	}
	// Walked child -> root; callers expect root -> parent.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (f *fakeRepo) GetStats(ctx context.Context) (*models.DirectoryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.DirectoryStats{
		TotalDirectories: int64(len(f.dirs)),
		TotalDocuments:   int64(len(f.docs)),
	}
	for _, d := range f.dirs {
		if d.ParentID == nil {
			stats.RootDirectories++
		}
		depth := strings.Count(d.Path, "/")
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
	}
	return stats, nil
}

// DocumentRepository

func (f *fakeRepo) CountByDirectory(ctx context.Context, directoryID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, doc := range f.docs {
		if doc.DirectoryID != nil && *doc.DirectoryID == directoryID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CountByDirectories(ctx context.Context, directoryIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, id := range directoryIDs {
		c, err := f.CountByDirectory(ctx, id)
		if err != nil {
			return nil, err
		}
		if c > 0 {
			counts[id] = c
		}
	}
	return counts, nil
}

func (f *fakeRepo) DeleteByDirectory(ctx context.Context, directoryID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, doc := range f.docs {
		if doc.DirectoryID != nil && *doc.DirectoryID == directoryID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		delete(f.docs, id)
	}
	return ids, nil
}

func (f *fakeRepo) ListByDirectory(ctx context.Context, directoryID *int64) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Document
	for _, doc := range f.docs {
		if sameParent(doc.DirectoryID, directoryID) {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeTxManager runs the function directly; the fake repo has no real
// transactions to join.
type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	return fn(ctx)
}

func newTestService() (services.DirectoryService, *fakeRepo, *fakeTxManager) {
	repo := newFakeRepo()
	tx := &fakeTxManager{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDirectoryService(repo, repo, tx, logger), repo, tx
}
