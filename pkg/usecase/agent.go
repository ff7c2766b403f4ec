package usecase

import (
	"context"
	_ "embed"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/gitscribe/gitscribe/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

//go:embed prompts/system.md
var DefaultSystemPrompt string

type agentUseCase struct {
	llmClient    gollem.LLMClient
	tools        interfaces.ToolSet
	output       io.Writer
	systemPrompt string
	store        interfaces.TranscriptStore
}

// AgentOption is a functional option for the agent use case
type AgentOption func(*agentUseCase)

// WithOutput sets the writer receiving streamed model text
func WithOutput(w io.Writer) AgentOption {
	return func(uc *agentUseCase) {
		uc.output = w
	}
}

// WithSystemPrompt replaces the embedded system prompt
func WithSystemPrompt(prompt string) AgentOption {
	return func(uc *agentUseCase) {
		if prompt != "" {
			uc.systemPrompt = prompt
		}
	}
}

// WithTranscriptStore saves a transcript after every run
func WithTranscriptStore(store interfaces.TranscriptStore) AgentOption {
	return func(uc *agentUseCase) {
		uc.store = store
	}
}

// NewAgent creates a new instance of AgentUseCase
func NewAgent(llmClient gollem.LLMClient, tools interfaces.ToolSet, opts ...AgentOption) interfaces.AgentUseCase {
	uc := &agentUseCase{
		llmClient:    llmClient,
		tools:        tools,
		output:       io.Discard,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run executes the task as a tool-calling session. Model text is written to
// the output as each chunk arrives. The run ends when the model stops calling
// tools or after the task's step limit.
func (uc *agentUseCase) Run(ctx context.Context, task *model.AgentTask) (*model.Transcript, error) {
	if err := task.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid agent task")
	}

	transcript := &model.Transcript{
		RunID:     types.NewRunID(),
		Agent:     task.Kind,
		Prompt:    task.Prompt,
		StartedAt: time.Now(),
	}

	logger := ctxlog.From(ctx).With("run_id", transcript.RunID, "agent", task.Kind)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting agent run", "max_steps", task.StepLimit())

	runErr := uc.run(ctx, task, transcript)
	transcript.FinishedAt = time.Now()
	if runErr != nil {
		transcript.StopReason = model.StopError
		transcript.Error = runErr.Error()
	}

	logger.Info("Agent run finished",
		"stop_reason", transcript.StopReason,
		"steps", transcript.Steps,
		"tool_calls", len(transcript.ToolCalls),
		"duration_ms", transcript.FinishedAt.Sub(transcript.StartedAt).Milliseconds(),
	)

	if uc.store != nil {
		if err := uc.store.Save(ctx, transcript); err != nil {
			logger.Warn("Failed to save transcript", "error", err)
		}
	}

	return transcript, runErr
}

func (uc *agentUseCase) run(ctx context.Context, task *model.AgentTask, transcript *model.Transcript) error {
	logger := ctxlog.From(ctx)

	tools, err := uc.tools.ToolsFor(task.Kind)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve tools")
	}
	toolMap := make(map[string]gollem.Tool, len(tools))
	for _, t := range tools {
		toolMap[t.Spec().Name] = t
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(uc.systemPrompt),
		gollem.WithSessionTools(tools...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create LLM session")
	}

	var output strings.Builder
	w := io.MultiWriter(uc.output, &output)
	defer func() {
		transcript.Output = output.String()
	}()

	input := []gollem.Input{gollem.Text(task.Prompt)}
	limit := task.StepLimit()

	for step := 1; step <= limit; step++ {
		transcript.Steps = step

		calls, err := streamStep(ctx, session, input, w)
		if err != nil {
			return goerr.Wrap(err, "failed to generate content", goerr.V("step", step))
		}

		if len(calls) == 0 {
			transcript.StopReason = model.StopCompleted
			return nil
		}

		if step == limit {
			logger.Warn("Step limit reached, dropping pending tool calls",
				"max_steps", limit,
				"pending_calls", len(calls),
			)
			transcript.StopReason = model.StopStepLimit
			return nil
		}

		input, err = uc.callTools(ctx, step, calls, toolMap, transcript)
		if err != nil {
			return err
		}
	}

	return nil
}

// streamStep sends one model step and forwards text chunks to w as they arrive
func streamStep(ctx context.Context, session gollem.Session, input []gollem.Input, w io.Writer) ([]*gollem.FunctionCall, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := session.Stream(ctx, input)
	if err != nil {
		return nil, err
	}

	var calls []*gollem.FunctionCall
	for resp := range stream {
		if resp.Error != nil {
			cancel()
			drain(stream)
			return nil, resp.Error
		}
		for _, text := range resp.Texts {
			if _, err := io.WriteString(w, text); err != nil {
				cancel()
				drain(stream)
				return nil, goerr.Wrap(err, "failed to write model output")
			}
		}
		calls = append(calls, resp.FunctionCalls...)
	}

	return calls, nil
}

// drain consumes the rest of a stream so its producer can exit
func drain(stream <-chan *gollem.Response) {
	for range stream {
	}
}

// callTools runs the requested tools in order. Validation failures and unknown
// tool names go back to the model; any other tool error aborts the run.
func (uc *agentUseCase) callTools(ctx context.Context, step int, calls []*gollem.FunctionCall, toolMap map[string]gollem.Tool, transcript *model.Transcript) ([]gollem.Input, error) {
	logger := ctxlog.From(ctx)

	responses := make([]gollem.Input, 0, len(calls))
	for _, call := range calls {
		record := model.ToolCallRecord{
			Step: step,
			Name: call.Name,
			Args: call.Arguments,
		}

		t, ok := toolMap[call.Name]
		if !ok {
			err := goerr.New("tool is not available to this agent", goerr.V("tool", call.Name))
			logger.Warn("Model requested unknown tool", "tool", call.Name)
			record.Error = err.Error()
			transcript.ToolCalls = append(transcript.ToolCalls, record)
			responses = append(responses, gollem.FunctionResponse{
				ID:    call.ID,
				Name:  call.Name,
				Error: err,
			})
			continue
		}

		logger.Debug("Calling tool", "tool", call.Name, "args", call.Arguments)
		result, err := t.Run(ctx, call.Arguments)
		if err != nil {
			record.Error = err.Error()
			transcript.ToolCalls = append(transcript.ToolCalls, record)

			if !errors.Is(err, types.ErrInvalidArgument) {
				return nil, goerr.Wrap(err, "tool execution failed",
					goerr.V("tool", call.Name),
					goerr.V("step", step),
				)
			}

			logger.Warn("Tool rejected arguments", "tool", call.Name, "error", err)
			responses = append(responses, gollem.FunctionResponse{
				ID:    call.ID,
				Name:  call.Name,
				Error: err,
			})
			continue
		}

		transcript.ToolCalls = append(transcript.ToolCalls, record)
		responses = append(responses, gollem.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
			Data: result,
		})
	}

	return responses, nil
}
