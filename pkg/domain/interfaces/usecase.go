package interfaces

import (
	"context"

	"github.com/gitscribe/gitscribe/pkg/domain/model"
)

// DiffUseCase defines diff collection and commit analysis
type DiffUseCase interface {
	// CollectDiffs returns the unified diff of every changed, non-excluded file
	CollectDiffs(ctx context.Context, req *model.DiffRequest) ([]model.FileDiff, error)

	// AnalyzeCommit summarizes the diff and tags it with commit type heuristics
	AnalyzeCommit(ctx context.Context, req *model.DiffRequest) (*model.CommitAnalysis, error)
}

// MarkdownUseCase defines markdown file generation
type MarkdownUseCase interface {
	// WriteMarkdown writes the file. Write failures are reported in the result.
	WriteMarkdown(ctx context.Context, req *model.MarkdownWriteRequest) *model.MarkdownWriteResult
}

// AgentUseCase defines a streaming agent run
type AgentUseCase interface {
	// Run executes the task and streams model text to the configured writer
	Run(ctx context.Context, task *model.AgentTask) (*model.Transcript, error)
}
