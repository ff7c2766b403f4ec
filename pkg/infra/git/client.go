package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	gogit "github.com/go-git/go-git/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotRepository is returned when the directory is not inside a git working tree
var ErrNotRepository = errors.New("not a git repository")

type config struct {
	gitPath string
}

// Option is a functional option for Client configuration
type Option func(*config)

// WithGitPath sets the git executable used for diff queries
func WithGitPath(path string) Option {
	return func(c *config) {
		c.gitPath = path
	}
}

// Client answers diff queries for a working tree. The repository root is
// resolved with go-git and the diff itself comes from the git executable.
type Client struct {
	gitPath string
}

var _ interfaces.GitClient = (*Client)(nil)

// New creates a new git Client
func New(opts ...Option) *Client {
	cfg := &config{
		gitPath: "git",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		gitPath: cfg.gitPath,
	}
}

// DiffSummary runs `git diff --numstat` without colour or external diff drivers at the repository root containing rootDir
func (c *Client) DiffSummary(ctx context.Context, rootDir string) (*model.DiffSummary, error) {
	root, err := resolveRoot(rootDir)
	if err != nil {
		return nil, err
	}

	out, err := c.output(ctx, root, "diff", "--no-color", "--no-ext-diff", "--numstat", "-z")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get diff summary", goerr.V("root", root))
	}

	summary, err := parseNumstat(out)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse diff summary", goerr.V("root", root))
	}

	ctxlog.From(ctx).Debug("Collected diff summary",
		"root", root,
		"files", len(summary.Files),
		"insertions", summary.Insertions,
		"deletions", summary.Deletions,
	)

	return summary, nil
}

// DiffFile runs `git diff -- <file>` at the repository root containing rootDir
func (c *Client) DiffFile(ctx context.Context, rootDir, file string) (string, error) {
	root, err := resolveRoot(rootDir)
	if err != nil {
		return "", err
	}

	out, err := c.output(ctx, root, "diff", "--no-color", "--no-ext-diff", "--", file)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get file diff", goerr.V("root", root), goerr.V("file", file))
	}
	return out, nil
}

func (c *Client) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.gitPath, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", goerr.Wrap(err, "git command failed",
			goerr.V("args", args),
			goerr.V("stderr", strings.TrimSpace(stderr.String())),
		)
	}
	return string(out), nil
}

// resolveRoot returns the top-level directory of the working tree containing dir
func resolveRoot(dir string) (string, error) {
	if dir == "" {
		return "", goerr.Wrap(ErrNotRepository, "empty directory")
	}

	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", goerr.Wrap(ErrNotRepository, "repository not found", goerr.V("dir", dir))
		}
		return "", goerr.Wrap(err, "failed to open repository", goerr.V("dir", dir))
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", goerr.Wrap(err, "failed to open worktree", goerr.V("dir", dir))
	}

	return wt.Filesystem.Root(), nil
}

// parseNumstat parses NUL terminated `git diff --numstat -z` output.
// Renamed entries carry an empty path followed by source and destination records.
func parseNumstat(out string) (*model.DiffSummary, error) {
	summary := &model.DiffSummary{}
	records := strings.Split(out, "\x00")

	for i := 0; i < len(records); i++ {
		rec := strings.TrimPrefix(records[i], "\n")
		if rec == "" {
			continue
		}

		fields := strings.SplitN(rec, "\t", 3)
		if len(fields) != 3 {
			return nil, goerr.New("malformed numstat record", goerr.V("record", rec))
		}

		path := fields[2]
		if path == "" {
			if i+2 >= len(records) {
				return nil, goerr.New("truncated rename record", goerr.V("record", rec))
			}
			path = records[i+2]
			i += 2
		}

		stat := model.DiffFileStat{File: path}
		if fields[0] == "-" && fields[1] == "-" {
			stat.Binary = true
		} else {
			ins, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, goerr.Wrap(err, "invalid insertion count", goerr.V("record", rec))
			}
			del, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, goerr.Wrap(err, "invalid deletion count", goerr.V("record", rec))
			}
			stat.Insertions = ins
			stat.Deletions = del
		}

		summary.Insertions += stat.Insertions
		summary.Deletions += stat.Deletions
		summary.Files = append(summary.Files, stat)
	}

	return summary, nil
}
