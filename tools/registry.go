package tools

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

// ToolExecutor is the function signature for executing a tool
type ToolExecutor func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Registry manages the registration of AI tools.
//
// Auto-run tools carry their executor inline. Confirmation-required tools
// register a descriptor only; their execution function lives in a separate
// lookup table and is invoked by the host once the user has approved.
type Registry struct {
	tools         []ai.Tool
	executors     map[string]ToolExecutor
	confirmations map[string]ToolExecutor
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools:         make([]ai.Tool, 0),
		executors:     make(map[string]ToolExecutor),
		confirmations: make(map[string]ToolExecutor),
	}
}

// Register adds an auto-run tool to the registry with its executor
func (r *Registry) Register(tool ai.Tool, executor ToolExecutor) {
	r.tools = append(r.tools, tool)
	r.executors[tool.Definition().Name] = executor
}

// RegisterWithConfirmation adds a tool whose execution is deferred until
// the user confirms. The executor goes into the confirmation table, not
// the auto-run table.
func (r *Registry) RegisterWithConfirmation(tool ai.Tool, executor ToolExecutor) {
	r.tools = append(r.tools, tool)
	r.confirmations[tool.Definition().Name] = executor
}

// GetTools returns all registered tool descriptors
func (r *Registry) GetTools() []ai.Tool {
	return r.tools
}

// NeedsConfirmation reports whether the named tool requires user approval
func (r *Registry) NeedsConfirmation(name string) bool {
	_, ok := r.confirmations[name]
	return ok
}

// ExecuteTool runs an auto-run tool by name
func (r *Registry) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	executor, ok := r.executors[name]
	if !ok {
		if r.NeedsConfirmation(name) {
			return nil, fmt.Errorf("tool %s requires user confirmation", name)
		}
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return executor(ctx, args)
}

// ExecuteConfirmed runs a confirmation-required tool after approval
func (r *Registry) ExecuteConfirmed(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	executor, ok := r.confirmations[name]
	if !ok {
		return nil, fmt.Errorf("no confirmation executor for tool: %s", name)
	}
	return executor(ctx, args)
}
