package tool

import (
	"context"

	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/m-mizutani/gollem"
)

// CommitToolName is the name the model uses to request commit analysis
const CommitToolName = "generate_commit_message"

// CommitTool exposes commit heuristics to the model
type CommitTool struct {
	diffUC interfaces.DiffUseCase
}

// NewCommit creates a new CommitTool
func NewCommit(diffUC interfaces.DiffUseCase) *CommitTool {
	return &CommitTool{diffUC: diffUC}
}

func (t *CommitTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        CommitToolName,
		Description: "Analyzes git changes and returns statistics and hints for a conventional commit message",
		Parameters: map[string]*gollem.Parameter{
			"root_dir": {
				Type:        gollem.TypeString,
				Description: "The root directory to analyze for the commit message",
				Required:    true,
			},
		},
	}
}

func (t *CommitTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	rootDir, err := requiredString(args, "root_dir")
	if err != nil {
		return nil, err
	}

	analysis, err := t.diffUC.AnalyzeCommit(ctx, &model.DiffRequest{RootDir: rootDir})
	if err != nil {
		return nil, err
	}

	if !analysis.HasChanges() {
		return map[string]any{
			"message": analysis.Message,
		}, nil
	}

	return map[string]any{
		"changes":     analysis.Changes,
		"suggestions": analysis.Suggestions,
	}, nil
}
