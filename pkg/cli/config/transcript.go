package config

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/infra/transcript"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Transcript holds configuration of where agent run transcripts are stored
type Transcript struct {
	Dir             string
	Bucket          string
	Prefix          string
	CredentialsFile string
}

// Flags returns CLI flags for transcript storage
func (c *Transcript) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "transcript-dir",
			Usage:       "Directory to save agent run transcripts as JSON",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("GITSCRIBE_TRANSCRIPT_DIR"),
		},
		&cli.StringFlag{
			Name:        "transcript-bucket",
			Usage:       "Cloud Storage bucket to upload agent run transcripts to",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("GITSCRIBE_TRANSCRIPT_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "transcript-prefix",
			Usage:       "Object name prefix in the transcript bucket",
			Value:       "transcripts",
			Destination: &c.Prefix,
			Sources:     cli.EnvVars("GITSCRIBE_TRANSCRIPT_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "transcript-credentials",
			Usage:       "Service account key file for the transcript bucket (default: ADC)",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("GITSCRIBE_TRANSCRIPT_CREDENTIALS"),
		},
	}
}

// NewStore returns the configured store, or nil when transcripts are disabled.
// The returned function releases the store's resources.
func (c *Transcript) NewStore(ctx context.Context, fs afero.Fs) (interfaces.TranscriptStore, func(), error) {
	nop := func() {}

	switch {
	case c.Dir != "" && c.Bucket != "":
		return nil, nop, goerr.New("transcript-dir and transcript-bucket are mutually exclusive")

	case c.Dir != "":
		return transcript.NewFileStore(fs, c.Dir), nop, nil

	case c.Bucket != "":
		var opts []option.ClientOption
		if c.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, nop, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", c.Bucket))
		}
		closer := func() {
			_ = client.Close()
		}
		return transcript.NewGCSStore(client, c.Bucket, c.Prefix), closer, nil
	}

	return nil, nop, nil
}
