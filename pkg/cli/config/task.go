package config

import (
	"bytes"
	_ "embed"
	"os"
	"strings"
	"text/template"

	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/gitscribe/gitscribe/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

//go:embed prompts/review.md
var reviewPrompt string

//go:embed prompts/commit.md
var commitPrompt string

//go:embed prompts/docs.md
var docsPrompt string

// DefaultDir is the target directory when neither flag nor config file sets one
const DefaultDir = "."

// Task holds agent task configuration from flags
type Task struct {
	Dir              string
	MaxSteps         int
	ConfigFile       string
	SystemPromptFile string
	Prompt           string
}

// Flags returns CLI flags shared by every agent command
func (c *Task) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dir",
			Aliases:     []string{"d"},
			Usage:       "Target git working tree (default: .)",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("GITSCRIBE_DIR"),
		},
		&cli.IntFlag{
			Name:        "max-steps",
			Usage:       "Maximum model steps per agent (default: 10)",
			Destination: &c.MaxSteps,
			Sources:     cli.EnvVars("GITSCRIBE_MAX_STEPS"),
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML configuration file",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("GITSCRIBE_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "system-prompt-file",
			Usage:       "File replacing the built-in system prompt",
			Destination: &c.SystemPromptFile,
			Sources:     cli.EnvVars("GITSCRIBE_SYSTEM_PROMPT_FILE"),
		},
	}
}

// PromptFlag returns the --prompt flag of single agent commands
func (c *Task) PromptFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "prompt",
		Aliases:     []string{"p"},
		Usage:       "Task prompt template, {{ .Dir }} expands to the target directory",
		Destination: &c.Prompt,
	}
}

type promptSection struct {
	Prompt string `toml:"prompt"`
}

// taskFile is the layout of the TOML configuration file
type taskFile struct {
	Dir          string        `toml:"dir"`
	MaxSteps     int           `toml:"max_steps"`
	SystemPrompt string        `toml:"system_prompt"`
	Exclude      []string      `toml:"exclude"`
	Review       promptSection `toml:"review"`
	Commit       promptSection `toml:"commit"`
	Docs         promptSection `toml:"docs"`
}

// TaskSettings is the merged result of flags, config file and defaults
type TaskSettings struct {
	Dir          string
	MaxSteps     int
	SystemPrompt string
	Exclude      []string
	Prompts      map[types.AgentKind]string
}

// Load merges the config file into the flag values. Non-zero flags win.
func (c *Task) Load() (*TaskSettings, error) {
	var file taskFile
	if c.ConfigFile != "" {
		raw, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", c.ConfigFile))
		}
		if err := toml.Unmarshal(raw, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.ConfigFile))
		}
	}

	settings := &TaskSettings{
		Dir:          firstNonEmpty(c.Dir, file.Dir, DefaultDir),
		MaxSteps:     model.DefaultMaxSteps,
		SystemPrompt: file.SystemPrompt,
		Exclude:      file.Exclude,
		Prompts: map[types.AgentKind]string{
			types.AgentReview: firstNonEmpty(c.Prompt, file.Review.Prompt, reviewPrompt),
			types.AgentCommit: firstNonEmpty(c.Prompt, file.Commit.Prompt, commitPrompt),
			types.AgentDocs:   firstNonEmpty(c.Prompt, file.Docs.Prompt, docsPrompt),
		},
	}

	switch {
	case c.MaxSteps < 0:
		return nil, goerr.New("max-steps must be positive", goerr.V("max_steps", c.MaxSteps))
	case c.MaxSteps > 0:
		settings.MaxSteps = c.MaxSteps
	case file.MaxSteps < 0:
		return nil, goerr.New("max_steps must be positive", goerr.V("max_steps", file.MaxSteps))
	case file.MaxSteps > 0:
		settings.MaxSteps = file.MaxSteps
	}

	if c.SystemPromptFile != "" {
		raw, err := os.ReadFile(c.SystemPromptFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read system prompt file", goerr.V("path", c.SystemPromptFile))
		}
		settings.SystemPrompt = string(raw)
	}

	return settings, nil
}

// Tasks renders the prompt of each requested agent
func (s *TaskSettings) Tasks(kinds ...types.AgentKind) ([]*model.AgentTask, error) {
	tasks := make([]*model.AgentTask, 0, len(kinds))
	for _, kind := range kinds {
		if err := kind.Validate(); err != nil {
			return nil, err
		}

		prompt, err := renderPrompt(s.Prompts[kind], s.Dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to render prompt", goerr.V("kind", kind))
		}

		tasks = append(tasks, &model.AgentTask{
			Kind:     kind,
			Prompt:   prompt,
			MaxSteps: s.MaxSteps,
		})
	}
	return tasks, nil
}

func renderPrompt(text, dir string) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse prompt template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{"Dir": dir}); err != nil {
		return "", goerr.Wrap(err, "failed to execute prompt template")
	}
	return strings.TrimSpace(buf.String()), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
