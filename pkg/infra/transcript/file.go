package transcript

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
)

// FileStore writes each transcript as an indented JSON file under a directory
type FileStore struct {
	fs  afero.Fs
	dir string
}

var _ interfaces.TranscriptStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

// Save writes the transcript, creating the directory when needed
func (s *FileStore) Save(ctx context.Context, t *model.Transcript) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create transcript directory", goerr.V("dir", s.dir))
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal transcript", goerr.V("run_id", t.RunID))
	}

	path := filepath.Join(s.dir, t.ObjectName())
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write transcript", goerr.V("path", path))
	}

	ctxlog.From(ctx).Debug("Saved transcript", "path", path)
	return nil
}
