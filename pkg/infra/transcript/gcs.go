package transcript

import (
	"context"
	"encoding/json"
	"path"

	"cloud.google.com/go/storage"
	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// GCSStore uploads transcripts as JSON objects to a Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.TranscriptStore = (*GCSStore)(nil)

// NewGCSStore creates a GCSStore. Objects are named <prefix>/<transcript object name>.
func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Save uploads the transcript
func (s *GCSStore) Save(ctx context.Context, t *model.Transcript) error {
	name := ObjectPath(s.prefix, t)

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(t); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to encode transcript",
			goerr.V("bucket", s.bucket),
			goerr.V("object", name),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to upload transcript",
			goerr.V("bucket", s.bucket),
			goerr.V("object", name),
		)
	}

	ctxlog.From(ctx).Debug("Uploaded transcript", "bucket", s.bucket, "object", name)
	return nil
}

// ObjectPath joins prefix and the transcript object name using slash separators
func ObjectPath(prefix string, t *model.Transcript) string {
	if prefix == "" {
		return t.ObjectName()
	}
	return path.Join(prefix, t.ObjectName())
}
