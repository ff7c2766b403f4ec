package interfaces

import (
	"context"

	"github.com/gitscribe/gitscribe/pkg/domain/model"
)

// GitClient defines read-only queries against a git working tree
type GitClient interface {
	// DiffSummary returns per-file insertion/deletion statistics of the working tree
	DiffSummary(ctx context.Context, rootDir string) (*model.DiffSummary, error)

	// DiffFile returns the unified diff of a single file relative to rootDir
	DiffFile(ctx context.Context, rootDir, file string) (string, error)
}
