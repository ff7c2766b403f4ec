package model

import (
	"time"

	"github.com/gitscribe/gitscribe/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxSteps bounds the number of model steps of one agent run
const DefaultMaxSteps = 10

// AgentTask is a single agent invocation
type AgentTask struct {
	Kind     types.AgentKind
	Prompt   string
	MaxSteps int
}

// Validate checks the task before a session is opened
func (t *AgentTask) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if t.Prompt == "" {
		return goerr.New("prompt is required", goerr.V("kind", t.Kind))
	}
	if t.MaxSteps < 0 {
		return goerr.New("max steps must not be negative", goerr.V("max_steps", t.MaxSteps))
	}
	return nil
}

// StepLimit returns MaxSteps, falling back to DefaultMaxSteps when unset
func (t *AgentTask) StepLimit() int {
	if t.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return t.MaxSteps
}

// StopReason describes why an agent run ended
type StopReason string

const (
	StopCompleted StopReason = "completed"
	StopStepLimit StopReason = "step_limit"
	StopError     StopReason = "error"
)

// ToolCallRecord is one tool invocation requested by the model
type ToolCallRecord struct {
	Step  int            `json:"step"`
	Name  string         `json:"name"`
	Args  map[string]any `json:"args,omitempty"`
	Error string         `json:"error,omitempty"`
}

// Transcript records what happened during one agent run
type Transcript struct {
	RunID      types.RunID      `json:"run_id"`
	Agent      types.AgentKind  `json:"agent"`
	Prompt     string           `json:"prompt"`
	Output     string           `json:"output"`
	Steps      int              `json:"steps"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
	StopReason StopReason       `json:"stop_reason"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// ObjectName returns the file or object name a transcript is stored under
func (t *Transcript) ObjectName() string {
	return t.StartedAt.UTC().Format("20060102T150405Z") + "_" + string(t.Agent) + "_" + string(t.RunID) + ".json"
}
