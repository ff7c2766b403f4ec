package tool

import (
	"context"

	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/m-mizutani/gollem"
)

// MarkdownToolName is the name the model uses to write a markdown file
const MarkdownToolName = "generate_markdown_file"

// MarkdownTool exposes the markdown writer to the model
type MarkdownTool struct {
	markdownUC interfaces.MarkdownUseCase
}

// NewMarkdown creates a new MarkdownTool
func NewMarkdown(markdownUC interfaces.MarkdownUseCase) *MarkdownTool {
	return &MarkdownTool{markdownUC: markdownUC}
}

func (t *MarkdownTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        MarkdownToolName,
		Description: "Creates a markdown file with the specified content at the given path, overwriting any existing file",
		Parameters: map[string]*gollem.Parameter{
			"file_path": {
				Type:        gollem.TypeString,
				Description: "The path where the markdown file should be created",
				Required:    true,
			},
			"content": {
				Type:        gollem.TypeString,
				Description: "The content to write to the markdown file",
				Required:    true,
			},
			"title": {
				Type:        gollem.TypeString,
				Description: "Optional title, written as a level-1 heading above the content",
			},
		},
	}
}

func (t *MarkdownTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	filePath, err := requiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	content, err := requiredString(args, "content")
	if err != nil {
		return nil, err
	}
	title, err := optionalString(args, "title")
	if err != nil {
		return nil, err
	}

	result := t.markdownUC.WriteMarkdown(ctx, &model.MarkdownWriteRequest{
		FilePath: filePath,
		Content:  content,
		Title:    title,
	})

	if !result.Success {
		return map[string]any{
			"success":   false,
			"error":     result.Error,
			"file_path": result.FilePath,
		}, nil
	}

	return map[string]any{
		"success":        true,
		"file_path":      result.FilePath,
		"message":        result.Message,
		"content_length": result.ContentLength,
	}, nil
}
