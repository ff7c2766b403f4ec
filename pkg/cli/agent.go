package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gitscribe/gitscribe/pkg/cli/config"
	"github.com/gitscribe/gitscribe/pkg/controller/tool"
	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/gitscribe/gitscribe/pkg/domain/types"
	"github.com/gitscribe/gitscribe/pkg/infra/git"
	"github.com/gitscribe/gitscribe/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

type agentConfig struct {
	llm        config.LLM
	task       config.Task
	transcript config.Transcript
}

func (c *agentConfig) flags() []cli.Flag {
	flags := append(c.llm.Flags(), c.task.Flags()...)
	return append(flags, c.transcript.Flags()...)
}

func cmdRun() *cli.Command {
	var cfg agentConfig

	return &cli.Command{
		Name:  "run",
		Usage: "Run the review, commit and docs agents one after another",
		Flags: cfg.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return runAgents(ctx, &cfg, types.AgentKinds()...)
		},
	}
}

func cmdAgent(kind types.AgentKind, usage string) *cli.Command {
	var cfg agentConfig

	return &cli.Command{
		Name:  kind.String(),
		Usage: usage,
		Flags: append(cfg.flags(), cfg.task.PromptFlag()),
		Action: func(ctx context.Context, c *cli.Command) error {
			return runAgents(ctx, &cfg, kind)
		},
	}
}

func runAgents(ctx context.Context, cfg *agentConfig, kinds ...types.AgentKind) error {
	logger := ctxlog.From(ctx)

	settings, err := cfg.task.Load()
	if err != nil {
		return goerr.Wrap(err, "failed to load task configuration")
	}

	tasks, err := settings.Tasks(kinds...)
	if err != nil {
		return err
	}

	llmClient, err := cfg.llm.NewClient(ctx)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	store, closeStore, err := cfg.transcript.NewStore(ctx, fs)
	if err != nil {
		return err
	}
	defer closeStore()

	logger.Info("Starting agents",
		"llm", cfg.llm,
		"dir", settings.Dir,
		"max_steps", settings.MaxSteps,
		"agents", kinds,
	)

	diffUC := usecase.NewDiff(git.New(), usecase.WithExcludedFiles(settings.Exclude...))
	markdownUC := usecase.NewMarkdown(fs)
	registry := tool.New(diffUC, markdownUC)

	agentUC := usecase.NewAgent(llmClient, registry,
		usecase.WithOutput(os.Stdout),
		usecase.WithSystemPrompt(settings.SystemPrompt),
		usecase.WithTranscriptStore(store),
	)

	return executeTasks(ctx, agentUC, tasks, os.Stdout)
}

var bannerColor = color.New(color.FgCyan, color.Bold)

// executeTasks runs tasks strictly in order; each run drains its stream before the next starts
func executeTasks(ctx context.Context, agentUC interfaces.AgentUseCase, tasks []*model.AgentTask, w io.Writer) error {
	for _, task := range tasks {
		if _, err := bannerColor.Fprintf(w, "==> %s agent\n", task.Kind); err != nil {
			return goerr.Wrap(err, "failed to write banner")
		}

		if _, err := agentUC.Run(ctx, task); err != nil {
			return goerr.Wrap(err, "agent run failed", goerr.V("agent", task.Kind))
		}

		if _, err := fmt.Fprint(w, "\n\n"); err != nil {
			return goerr.Wrap(err, "failed to write output")
		}
	}
	return nil
}
