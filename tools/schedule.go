package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/agentdesk/agentdesk/log"
	"github.com/agentdesk/agentdesk/scheduler"
)

// ScheduleInput is the tagged schedule specification plus the task payload.
// Type selects which of date, delayInSeconds or cron applies.
type ScheduleInput struct {
	Type           string `json:"type" description:"One of: no-schedule, scheduled, delayed, cron"`
	Date           string `json:"date,omitempty" description:"For type=scheduled: RFC3339 date, or a JS expression with 'now' in milliseconds"`
	DelayInSeconds int    `json:"delayInSeconds,omitempty" description:"For type=delayed: delay in seconds"`
	Cron           string `json:"cron,omitempty" description:"For type=cron: standard 5-field cron expression"`
	Description    string `json:"description" description:"What the task should do when it runs"`
}

// CancelInput defines the input for the cancel tool
type CancelInput struct {
	TaskID string `json:"taskId" description:"ID of the scheduled task to cancel"`
}

// ListInput is the (empty) input for the listing tool
type ListInput struct{}

// ScheduleTools exposes schedule/list/cancel operations over the scheduler.
// Scheduler failures are folded into descriptive strings returned as tool
// output; they never surface as structured errors.
type ScheduleTools struct {
	Scheduler TaskScheduler
}

// NewScheduleTools creates the scheduling tools and registers them
func NewScheduleTools(gk *genkit.Genkit, registry *Registry, sched TaskScheduler) *ScheduleTools {
	t := &ScheduleTools{Scheduler: sched}
	if gk == nil || registry == nil {
		return t
	}

	registry.Register(genkit.DefineTool[*ScheduleInput, string](
		gk,
		"scheduleTask",
		"Schedule a task to be executed at a later time. Type is one of no-schedule, scheduled (date), delayed (delayInSeconds) or cron (cron expression).",
		func(ctx *ai.ToolContext, input *ScheduleInput) (string, error) {
			if input == nil {
				return "", fmt.Errorf("input is required")
			}
			res, err := t.ScheduleTask(ctx, map[string]interface{}{
				"type":           input.Type,
				"date":           input.Date,
				"delayInSeconds": input.DelayInSeconds,
				"cron":           input.Cron,
				"description":    input.Description,
			})
			if err != nil {
				return "", err
			}
			return res.(string), nil
		},
	), t.ScheduleTask)

	registry.Register(genkit.DefineTool[*ListInput, string](
		gk,
		"getScheduledTasks",
		"List all tasks that have been scheduled.",
		func(ctx *ai.ToolContext, input *ListInput) (string, error) {
			res, err := t.ListTasks(ctx, nil)
			if err != nil {
				return "", err
			}
			return res.(string), nil
		},
	), t.ListTasks)

	registry.Register(genkit.DefineTool[*CancelInput, string](
		gk,
		"cancelScheduledTask",
		"Cancel a scheduled task by its ID.",
		func(ctx *ai.ToolContext, input *CancelInput) (string, error) {
			if input == nil {
				return "", fmt.Errorf("input is required")
			}
			res, err := t.CancelTask(ctx, map[string]interface{}{"taskId": input.TaskID})
			if err != nil {
				return "", err
			}
			return res.(string), nil
		},
	), t.CancelTask)

	return t
}

// ScheduleTask delegates to the scheduler. The no-schedule kind short
// circuits with a fixed reply; scheduler failures become error strings.
func (t *ScheduleTools) ScheduleTask(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	kind, ok := args["type"].(string)
	if !ok || kind == "" {
		return nil, fmt.Errorf("argument 'type' is required and must be a string")
	}

	if kind == string(scheduler.KindNone) {
		return "Not a valid schedule input", nil
	}

	description, _ := args["description"].(string)

	spec := scheduler.Spec{Kind: scheduler.Kind(kind)}
	switch spec.Kind {
	case scheduler.KindScheduled:
		spec.Date, _ = args["date"].(string)
	case scheduler.KindDelayed:
		delay, _ := intArg(args["delayInSeconds"])
		spec.DelaySeconds = delay
	case scheduler.KindCron:
		spec.Cron, _ = args["cron"].(string)
	default:
		return nil, fmt.Errorf("unknown schedule type %q", kind)
	}

	task, err := t.Scheduler.Schedule(ctx, spec, description)
	if err != nil {
		log.Errorf(ctx, "Failed to schedule task: %v", err)
		return fmt.Sprintf("Error scheduling task: %v", err), nil
	}

	return fmt.Sprintf("Task scheduled for type %q: %s (id: %s)", kind, description, task.ID), nil
}

// ListTasks returns a human-readable listing of all scheduled tasks
func (t *ScheduleTools) ListTasks(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	tasks, err := t.Scheduler.List(ctx)
	if err != nil {
		log.Errorf(ctx, "Failed to list tasks: %v", err)
		return fmt.Sprintf("Error listing tasks: %v", err), nil
	}

	if len(tasks) == 0 {
		return "No scheduled tasks found.", nil
	}

	var b strings.Builder
	for _, task := range tasks {
		fmt.Fprintf(&b, "- %s [%s] next run %s: %s\n",
			task.ID, task.Kind, task.NextRun.Format(time.RFC3339), task.Payload)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// CancelTask cancels a scheduled task by ID. An empty schedule gets the
// same fixed reply as the listing tool.
func (t *ScheduleTools) CancelTask(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	taskID, ok := args["taskId"].(string)
	if !ok || taskID == "" {
		return nil, fmt.Errorf("argument 'taskId' is required and must be a string")
	}

	if tasks, err := t.Scheduler.List(ctx); err == nil && len(tasks) == 0 {
		return "No scheduled tasks found.", nil
	}

	if err := t.Scheduler.Cancel(ctx, taskID); err != nil {
		log.Errorf(ctx, "Failed to cancel task %s: %v", taskID, err)
		return fmt.Sprintf("Error canceling task: %v", err), nil
	}

	return fmt.Sprintf("Task %s has been canceled.", taskID), nil
}
