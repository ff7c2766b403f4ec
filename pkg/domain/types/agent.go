package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// AgentKind identifies one of the fixed agent bindings
type AgentKind string

const (
	AgentReview AgentKind = "review"
	AgentCommit AgentKind = "commit"
	AgentDocs   AgentKind = "docs"
)

// AgentKinds returns all agents in the order the run command executes them
func AgentKinds() []AgentKind {
	return []AgentKind{AgentReview, AgentCommit, AgentDocs}
}

// Validate checks that the kind is a known agent
func (k AgentKind) Validate() error {
	switch k {
	case AgentReview, AgentCommit, AgentDocs:
		return nil
	default:
		return goerr.New("unknown agent kind", goerr.V("kind", k))
	}
}

func (k AgentKind) String() string {
	return string(k)
}

// RunID identifies a single agent run in logs and transcripts
type RunID string

// NewRunID generates a new random RunID
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

func (id RunID) String() string {
	return string(id)
}
