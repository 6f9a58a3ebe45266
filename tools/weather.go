package tools

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WeatherInput defines the input for the weather tool
type WeatherInput struct {
	City string `json:"city" description:"Name of the city to get the weather for"`
}

// WeatherTool reports the weather for a city. It requires user
// confirmation: the descriptor is registered without an auto-run executor
// and the actual execution lives in the registry's confirmation table.
type WeatherTool struct{}

// NewWeatherTool creates the weather tool and registers it as
// confirmation-required
func NewWeatherTool(gk *genkit.Genkit, registry *Registry) *WeatherTool {
	t := &WeatherTool{}
	if gk == nil || registry == nil {
		return t
	}

	registry.RegisterWithConfirmation(genkit.DefineTool[*WeatherInput, string](
		gk,
		"getWeatherInformation",
		"Show the weather in a given city to the user. Requires explicit user confirmation before running.",
		func(ctx *ai.ToolContext, input *WeatherInput) (string, error) {
			// Never executed directly; the host runs Confirm after approval
			return "", fmt.Errorf("getWeatherInformation requires user confirmation")
		},
	), t.Confirm)

	return t
}

// Confirm is the confirmation executor, invoked only after user approval
func (t *WeatherTool) Confirm(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	city, ok := args["city"].(string)
	if !ok || city == "" {
		return nil, fmt.Errorf("argument 'city' is required and must be a string")
	}
	return t.Execute(ctx, &WeatherInput{City: city})
}

// Execute returns the weather report for the city
func (t *WeatherTool) Execute(ctx context.Context, input *WeatherInput) (string, error) {
	if input == nil || input.City == "" {
		return "", fmt.Errorf("city is required")
	}
	city := cases.Title(language.English).String(input.City)
	return fmt.Sprintf("The weather in %s is sunny", city), nil
}
