package tool

import (
	"context"

	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/m-mizutani/gollem"
)

// ChangesToolName is the name the model uses to request file diffs
const ChangesToolName = "get_file_changes_in_directory"

// ChangesTool exposes diff collection to the model
type ChangesTool struct {
	diffUC interfaces.DiffUseCase
}

// NewChanges creates a new ChangesTool
func NewChanges(diffUC interfaces.DiffUseCase) *ChangesTool {
	return &ChangesTool{diffUC: diffUC}
}

func (t *ChangesTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        ChangesToolName,
		Description: "Gets the code changes made in the given directory as one unified diff per changed file",
		Parameters: map[string]*gollem.Parameter{
			"root_dir": {
				Type:        gollem.TypeString,
				Description: "The root directory of the git working tree",
				Required:    true,
			},
		},
	}
}

func (t *ChangesTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	rootDir, err := requiredString(args, "root_dir")
	if err != nil {
		return nil, err
	}

	diffs, err := t.diffUC.CollectDiffs(ctx, &model.DiffRequest{RootDir: rootDir})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"diffs": diffs,
	}, nil
}
