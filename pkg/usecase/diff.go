package usecase

import (
	"context"
	"slices"

	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultExcludedFiles are never reported by CollectDiffs
var DefaultExcludedFiles = []string{"dist", "bun.lock"}

type diffUseCase struct {
	gitClient interfaces.GitClient
	excludes  []string
}

// DiffOption is a functional option for the diff use case
type DiffOption func(*diffUseCase)

// WithExcludedFiles adds paths to the exclusion set. The defaults always stay excluded.
func WithExcludedFiles(files ...string) DiffOption {
	return func(uc *diffUseCase) {
		for _, f := range files {
			if f != "" && !slices.Contains(uc.excludes, f) {
				uc.excludes = append(uc.excludes, f)
			}
		}
	}
}

// NewDiff creates a new instance of DiffUseCase
func NewDiff(gitClient interfaces.GitClient, opts ...DiffOption) interfaces.DiffUseCase {
	uc := &diffUseCase{
		gitClient: gitClient,
		excludes:  slices.Clone(DefaultExcludedFiles),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CollectDiffs returns one FileDiff per changed file in summary order, skipping excluded paths
func (uc *diffUseCase) CollectDiffs(ctx context.Context, req *model.DiffRequest) ([]model.FileDiff, error) {
	logger := ctxlog.From(ctx)

	summary, err := uc.gitClient.DiffSummary(ctx, req.RootDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get diff summary", goerr.V("root_dir", req.RootDir))
	}

	diffs := []model.FileDiff{}
	for _, file := range summary.Files {
		if slices.Contains(uc.excludes, file.File) {
			logger.Debug("Skipping excluded file", "file", file.File)
			continue
		}

		diff, err := uc.gitClient.DiffFile(ctx, req.RootDir, file.File)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get file diff",
				goerr.V("root_dir", req.RootDir),
				goerr.V("file", file.File),
			)
		}
		diffs = append(diffs, model.FileDiff{File: file.File, Diff: diff})
	}

	logger.Info("Collected file changes",
		"root_dir", req.RootDir,
		"changed", len(summary.Files),
		"reported", len(diffs),
	)

	return diffs, nil
}

// AnalyzeCommit summarizes the working tree diff for conventional commit authoring
func (uc *diffUseCase) AnalyzeCommit(ctx context.Context, req *model.DiffRequest) (*model.CommitAnalysis, error) {
	logger := ctxlog.From(ctx)

	summary, err := uc.gitClient.DiffSummary(ctx, req.RootDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get diff summary", goerr.V("root_dir", req.RootDir))
	}

	analysis := model.NewCommitAnalysis(summary)
	if !analysis.HasChanges() {
		logger.Info("No changes detected", "root_dir", req.RootDir)
		return analysis, nil
	}

	logger.Info("Analyzed changes for commit message",
		"root_dir", req.RootDir,
		"files_changed", analysis.Changes.FilesChanged,
		"insertions", analysis.Changes.Insertions,
		"deletions", analysis.Changes.Deletions,
	)

	return analysis, nil
}
