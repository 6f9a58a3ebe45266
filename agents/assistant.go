package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/genkit"

	"github.com/agentdesk/agentdesk/log"
	"github.com/agentdesk/agentdesk/plugins"
	"github.com/agentdesk/agentdesk/tools"
)

const SystemPromptTemplate = `You are a helpful personal assistant. You have access to the following tools:

%s

Protocol:
1. To call a tool, output ONLY a JSON object in this format: {"tool": "toolName", "input": {...}}
2. Do not add any text before or after the JSON when calling a tool.
3. When you receive a Tool Result, use it to proceed.
4. If you have the final answer, output the text directly (no JSON).

Current Date: %s
User Query: %s`

// Confirmer decides whether a confirmation-required tool may run.
// The CLI wires this to a y/N prompt.
type Confirmer func(ctx context.Context, toolName string, args map[string]interface{}) bool

// FlowRunner defines the interface for running a flow
type FlowRunner interface {
	Run(ctx context.Context, input string) (string, error)
}

// Assistant drives the chat-completion loop over the tool registry
type Assistant struct {
	flow     FlowRunner
	llm      plugins.LLMClient
	registry *tools.Registry
	confirm  Confirmer
	maxSteps int
}

// NewAssistant creates the assistant and defines its Genkit flow.
// A nil gk skips flow definition; Chat then runs the loop directly.
func NewAssistant(gk *genkit.Genkit, registry *tools.Registry, llm plugins.LLMClient, confirm Confirmer) *Assistant {
	a := &Assistant{
		llm:      llm,
		registry: registry,
		confirm:  confirm,
		maxSteps: 25,
	}

	if gk != nil {
		a.flow = genkit.DefineFlow(gk, "assistantFlow", a.run)
	}

	return a
}

// Chat answers a user query, executing tools as the model requests them
func (a *Assistant) Chat(ctx context.Context, query string) (string, error) {
	if a.flow != nil {
		return a.flow.Run(ctx, query)
	}
	return a.run(ctx, query)
}

// HandleTrigger feeds a fired scheduled task back into the loop
func (a *Assistant) HandleTrigger(ctx context.Context, taskID, payload string) (string, error) {
	return a.Chat(ctx, fmt.Sprintf("Scheduled task %s has triggered. Carry it out: %s", taskID, payload))
}

func (a *Assistant) run(ctx context.Context, input string) (string, error) {
	log.Debugf(ctx, "Starting assistant loop with input: %q", input)

	// Auto-generate tool definitions for the system prompt
	var toolDefsBuilder strings.Builder
	for _, t := range a.registry.GetTools() {
		def := t.Definition()
		schemaBytes, _ := json.Marshal(def.InputSchema)
		fmt.Fprintf(
			&toolDefsBuilder,
			"Tool: %s\nDescription: %s\nInput Schema: %s\n\n",
			def.Name,
			def.Description,
			string(schemaBytes),
		)
	}

	history := fmt.Sprintf(
		SystemPromptTemplate,
		toolDefsBuilder.String(),
		time.Now().Format(time.RFC3339),
		input,
	)

	for i := 0; i < a.maxSteps; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		resp, err := a.llm.GenerateContent(ctx, history)
		if err != nil {
			return "", fmt.Errorf("llm generation failed: %w", err)
		}
		log.Debugf(ctx, "Step %d LLM response: %q", i+1, resp)

		toolCall, ok := parseToolCall(resp)
		if !ok {
			// Not a tool call, so this is the final answer
			return resp, nil
		}

		// Keep the model's own request in history so it remembers asking
		history += fmt.Sprintf("\nModel Response: %s\n", resp)

		var toolRes interface{}
		var toolErr error

		if a.registry.NeedsConfirmation(toolCall.Tool) {
			if a.confirm == nil || !a.confirm(ctx, toolCall.Tool, toolCall.Input) {
				log.Infof(ctx, "Tool %s declined by user", toolCall.Tool)
				history += fmt.Sprintf("\nTool '%s' was declined by the user. Do not retry it.\n", toolCall.Tool)
				continue
			}
			toolRes, toolErr = a.registry.ExecuteConfirmed(ctx, toolCall.Tool, toolCall.Input)
		} else {
			toolRes, toolErr = a.registry.ExecuteTool(ctx, toolCall.Tool, toolCall.Input)
		}

		if toolErr != nil {
			log.Errorf(ctx, "Tool %s failed: %v", toolCall.Tool, toolErr)
			history += fmt.Sprintf("\nTool '%s' Error: %v\n", toolCall.Tool, toolErr)
		} else {
			history += fmt.Sprintf("\nTool '%s' Output: %v\n", toolCall.Tool, toolRes)
		}
	}

	return "", fmt.Errorf("max steps exceeded")
}

// toolCall is the JSON shape the model uses to request a tool
type toolCall struct {
	Tool  string                 `json:"tool"`
	Input map[string]interface{} `json:"input"`
}

// parseToolCall scans the response for a tool-call JSON object. The first
// '{' and last '}' bound the candidate to tolerate markdown fences or
// preamble text.
func parseToolCall(resp string) (toolCall, bool) {
	var call toolCall

	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start == -1 || end == -1 || end <= start {
		return call, false
	}

	if err := json.Unmarshal([]byte(resp[start:end+1]), &call); err != nil {
		return call, false
	}
	// Guard against random JSON in answer text
	if call.Tool == "" {
		return call, false
	}
	return call, true
}
