package tools

import (
	"context"

	"github.com/agentdesk/agentdesk/orm"
	"github.com/agentdesk/agentdesk/scheduler"
)

// TaskScheduler defines the scheduler operations the scheduling tools
// delegate to. Satisfied by *scheduler.Service.
type TaskScheduler interface {
	Schedule(ctx context.Context, spec scheduler.Spec, payload string) (*orm.ScheduledTask, error)
	List(ctx context.Context) ([]orm.ScheduledTask, error)
	Cancel(ctx context.Context, id string) error
}
