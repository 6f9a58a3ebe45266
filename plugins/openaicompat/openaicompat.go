// Package openaicompat provides a Genkit plugin for any OpenAI-compatible
// chat completion endpoint.
package openaicompat

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/openai/openai-go/option"
)

const provider = "openaicompat"

// OpenAICompat is a plugin that talks to an OpenAI-compatible API.
type OpenAICompat struct {
	// APIKey is the API key for the endpoint.
	APIKey string
	// BaseURL is the base URL of the endpoint, e.g. https://api.openai.com/v1/
	BaseURL string
	// DefaultModel is registered on Init so callers can resolve it by name.
	DefaultModel string

	openAICompatible *compat_oai.OpenAICompatible
}

// Name implements genkit.Plugin.
func (o *OpenAICompat) Name() string {
	return provider
}

// Init implements genkit.Plugin.
func (o *OpenAICompat) Init(ctx context.Context) []api.Action {
	if o.APIKey == "" {
		panic("openaicompat plugin initialization failed: APIKey is required")
	}

	if o.openAICompatible == nil {
		o.openAICompatible = &compat_oai.OpenAICompatible{}
	}

	opts := []option.RequestOption{option.WithAPIKey(o.APIKey)}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	o.openAICompatible.Opts = opts
	o.openAICompatible.Provider = provider

	actions := o.openAICompatible.Init(ctx)

	if o.DefaultModel != "" {
		actions = append(actions, o.DefineModel(o.DefaultModel, ai.ModelOptions{
			Label:    "OpenAI-compatible " + o.DefaultModel,
			Supports: &compat_oai.Multimodal,
		}).(api.Action))
	}

	return actions
}

// Model returns a model by name.
func (o *OpenAICompat) Model(g *genkit.Genkit, name string) ai.Model {
	return o.openAICompatible.Model(g, api.NewName(provider, name))
}

// DefineModel defines a model with the given ID and options.
func (o *OpenAICompat) DefineModel(id string, opts ai.ModelOptions) ai.Model {
	return o.openAICompatible.DefineModel(provider, id, opts)
}

// ListActions returns a list of actions provided by this plugin.
func (o *OpenAICompat) ListActions(ctx context.Context) []api.ActionDesc {
	return o.openAICompatible.ListActions(ctx)
}

// ResolveAction resolves an action by type and name.
func (o *OpenAICompat) ResolveAction(atype api.ActionType, name string) api.Action {
	return o.openAICompatible.ResolveAction(atype, name)
}
