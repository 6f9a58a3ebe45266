// Package plugins defines the provider interfaces consumed by the
// assistant loop.
package plugins

import "context"

// LLMClient defines the interface for LLM interaction
type LLMClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
