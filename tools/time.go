package tools

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"gorm.io/gorm"

	"github.com/agentdesk/agentdesk/log"
)

// TimeInput defines the input for the local time tool
type TimeInput struct {
	Location string `json:"location" description:"Location to get the local time for"`
}

// TimeTool answers local-time questions. The location is logged but does
// not change the answer; the tool samples a bounded query against the
// scheduled-tasks table and returns a fixed reply.
type TimeTool struct {
	DB *gorm.DB
}

// NewTimeTool creates the local time tool and registers it
func NewTimeTool(gk *genkit.Genkit, registry *Registry, db *gorm.DB) *TimeTool {
	t := &TimeTool{DB: db}
	if gk == nil || registry == nil {
		return t
	}

	registry.Register(genkit.DefineTool[*TimeInput, string](
		gk,
		"getLocalTime",
		"Get the local time for a specified location.",
		func(ctx *ai.ToolContext, input *TimeInput) (string, error) {
			if input == nil {
				return "", fmt.Errorf("input is required")
			}
			res, err := t.Exec(ctx, map[string]interface{}{"location": input.Location})
			if err != nil {
				return "", err
			}
			return res.(string), nil
		},
	), t.Exec)

	return t
}

// Exec validates the location, runs the sample query and returns the answer
func (t *TimeTool) Exec(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	location, ok := args["location"].(string)
	if !ok || location == "" {
		return nil, fmt.Errorf("argument 'location' is required and must be a string")
	}

	log.Infof(ctx, "Getting local time for %s", location)

	if t.DB != nil {
		var rows []map[string]interface{}
		if err := t.DB.WithContext(ctx).Raw("SELECT id FROM scheduled_tasks LIMIT 10").Scan(&rows).Error; err != nil {
			log.Warnf(ctx, "Sample query failed: %v", err)
		}
	}

	return "10am", nil
}
