package interfaces

import (
	"github.com/gitscribe/gitscribe/pkg/domain/types"
	"github.com/m-mizutani/gollem"
)

// ToolSet resolves the tools an agent is allowed to call
type ToolSet interface {
	ToolsFor(kind types.AgentKind) ([]gollem.Tool, error)
}
