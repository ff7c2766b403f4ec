package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"

	DefaultGeminiModel = "gemini-2.5-flash"
)

// LLM holds model provider configuration
type LLM struct {
	Provider string
	Model    string

	GeminiProjectID string
	GeminiLocation  string

	OpenAIAPIKey string `masq:"secret"`
	ClaudeAPIKey string `masq:"secret"`
}

// Flags returns CLI flags for LLM configuration
func (c *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider (gemini, openai, claude)",
			Value:       ProviderGemini,
			Destination: &c.Provider,
			Sources:     cli.EnvVars("GITSCRIBE_LLM_PROVIDER"),
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Model identifier (default: gemini-2.5-flash for gemini, provider default otherwise)",
			Destination: &c.Model,
			Sources:     cli.EnvVars("GITSCRIBE_LLM_MODEL"),
		},
		&cli.StringFlag{
			Name:        "gemini-project-id",
			Usage:       "Google Cloud Project ID for Gemini on Vertex AI",
			Destination: &c.GeminiProjectID,
			Sources:     cli.EnvVars("GITSCRIBE_GEMINI_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Vertex AI location/region",
			Value:       "us-central1",
			Destination: &c.GeminiLocation,
			Sources:     cli.EnvVars("GITSCRIBE_GEMINI_LOCATION"),
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Destination: &c.OpenAIAPIKey,
			Sources:     cli.EnvVars("GITSCRIBE_OPENAI_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Destination: &c.ClaudeAPIKey,
			Sources:     cli.EnvVars("GITSCRIBE_CLAUDE_API_KEY"),
		},
	}
}

// Validate checks that the selected provider has its required settings
func (c *LLM) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiProjectID == "" {
			return goerr.New("gemini-project-id is required for gemini provider")
		}
		if c.GeminiLocation == "" {
			return goerr.New("gemini-location is required for gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return goerr.New("openai-api-key is required for openai provider")
		}
	case ProviderClaude:
		if c.ClaudeAPIKey == "" {
			return goerr.New("claude-api-key is required for claude provider")
		}
	default:
		return goerr.New("unknown LLM provider", goerr.V("provider", c.Provider))
	}
	return nil
}

// ModelName returns the configured model, applying the provider default for gemini
func (c *LLM) ModelName() string {
	if c.Model == "" && c.Provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return c.Model
}

// NewClient builds the gollem client for the selected provider
func (c *LLM) NewClient(ctx context.Context) (gollem.LLMClient, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	model := c.ModelName()

	switch c.Provider {
	case ProviderGemini:
		client, err := gemini.New(ctx, c.GeminiProjectID, c.GeminiLocation, gemini.WithModel(model))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create gemini client",
				goerr.V("project_id", c.GeminiProjectID),
				goerr.V("location", c.GeminiLocation),
			)
		}
		return client, nil

	case ProviderOpenAI:
		var opts []openai.Option
		if model != "" {
			opts = append(opts, openai.WithModel(model))
		}
		client, err := openai.New(ctx, c.OpenAIAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create openai client")
		}
		return client, nil

	case ProviderClaude:
		var opts []claude.Option
		if model != "" {
			opts = append(opts, claude.WithModel(model))
		}
		client, err := claude.New(ctx, c.ClaudeAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create claude client")
		}
		return client, nil
	}

	return nil, goerr.New("unknown LLM provider", goerr.V("provider", c.Provider))
}
