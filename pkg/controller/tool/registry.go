package tool

import (
	"github.com/gitscribe/gitscribe/pkg/domain/interfaces"
	"github.com/gitscribe/gitscribe/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// AgentTools binds each agent to the tool names it may call
var AgentTools = map[types.AgentKind][]string{
	types.AgentReview: {ChangesToolName},
	types.AgentCommit: {CommitToolName},
	types.AgentDocs:   {MarkdownToolName},
}

// Registry maps tool names to implementations
type Registry struct {
	tools map[string]gollem.Tool
}

var _ interfaces.ToolSet = (*Registry)(nil)

// NewRegistry registers the given tools. A later tool replaces an earlier one with the same name.
func NewRegistry(tools ...gollem.Tool) *Registry {
	r := &Registry{tools: make(map[string]gollem.Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Spec().Name] = t
	}
	return r
}

// New builds the registry of all tools backed by the given use cases
func New(diffUC interfaces.DiffUseCase, markdownUC interfaces.MarkdownUseCase) *Registry {
	return NewRegistry(
		NewChanges(diffUC),
		NewCommit(diffUC),
		NewMarkdown(markdownUC),
	)
}

// Get returns the tool registered under name
func (r *Registry) Get(name string) (gollem.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Subset returns the named tools in the given order
func (r *Registry) Subset(names ...string) ([]gollem.Tool, error) {
	tools := make([]gollem.Tool, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, goerr.New("tool is not registered", goerr.V("tool", name))
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// ToolsFor returns the tool subset bound to the agent
func (r *Registry) ToolsFor(kind types.AgentKind) ([]gollem.Tool, error) {
	names, ok := AgentTools[kind]
	if !ok {
		return nil, goerr.New("agent has no tool binding", goerr.V("kind", kind))
	}
	return r.Subset(names...)
}
