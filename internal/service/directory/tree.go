package directory

import (
	"context"
	"log/slog"

	"wikidesk/internal/domain/models"
	"wikidesk/internal/domain/repositories"
	"wikidesk/internal/domain/services"
)

// treeService implements the TreeService interface
type treeService struct {
	dirRepo repositories.DirectoryRepository
	docRepo repositories.DocumentRepository
	logger  *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	dirRepo repositories.DirectoryRepository,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		dirRepo: dirRepo,
		docRepo: docRepo,
		logger:  logger,
	}
}

// GetTree builds the whole forest with per-node and cumulative document
// counts.
func (s *treeService) GetTree(ctx context.Context) ([]*models.TreeNode, error) {
	dirs, err := s.dirRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(dirs))
	for _, dir := range dirs {
		ids = append(ids, dir.ID)
	}

	counts, err := s.docRepo.CountByDirectories(ctx, ids)
	if err != nil {
		return nil, err
	}

	tree := BuildTree(dirs, counts)

	s.logger.Info("directory tree built",
		"directory_count", len(dirs),
		"root_count", len(tree),
	)

	return tree, nil
}
