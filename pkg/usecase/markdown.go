package usecase

import (
	"context"
	"fmt"

	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/spf13/afero"
)

type markdownUseCase struct {
	fs afero.Fs
}

// NewMarkdown creates a new instance of MarkdownUseCase writing through fs
func NewMarkdown(fs afero.Fs) interfaces.MarkdownUseCase {
	return &markdownUseCase{
		fs: fs,
	}
}

// WriteMarkdown creates or overwrites req.FilePath with the rendered markdown
func (uc *markdownUseCase) WriteMarkdown(ctx context.Context, req *model.MarkdownWriteRequest) *model.MarkdownWriteResult {
	logger := ctxlog.From(ctx)

	if req.FilePath == "" {
		return &model.MarkdownWriteResult{
			Success: false,
			Error:   "file path is empty",
		}
	}

	text := req.Render()
	if err := afero.WriteFile(uc.fs, req.FilePath, []byte(text), 0644); err != nil {
		logger.Warn("Failed to write markdown file", "file_path", req.FilePath, "error", err)
		return &model.MarkdownWriteResult{
			Success:  false,
			FilePath: req.FilePath,
			Error:    err.Error(),
		}
	}

	logger.Info("Wrote markdown file", "file_path", req.FilePath, "bytes", len(text))

	return &model.MarkdownWriteResult{
		Success:       true,
		FilePath:      req.FilePath,
		Message:       fmt.Sprintf("Markdown file created successfully at %s", req.FilePath),
		ContentLength: len(text),
	}
}
