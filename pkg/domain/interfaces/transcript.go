package interfaces

import (
	"context"

	"github.com/gitscribe/gitscribe/pkg/domain/model"
)

// TranscriptStore persists agent run transcripts
type TranscriptStore interface {
	Save(ctx context.Context, transcript *model.Transcript) error
}
