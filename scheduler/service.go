// Package scheduler runs delayed, dated and cron tasks for the assistant.
// Tasks are persisted through the orm layer and re-registered on start.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	robfigcron "github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/agentdesk/agentdesk/log"
	"github.com/agentdesk/agentdesk/orm"
	"github.com/agentdesk/agentdesk/reqctx"
)

// FireFunc is invoked when a task triggers, with the task's payload.
type FireFunc func(ctx context.Context, taskID, payload string)

// Service wraps a robfig/cron engine with one-shot timers and persistence
type Service struct {
	engine *robfigcron.Cron
	db     *gorm.DB
	fire   FireFunc
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]robfigcron.EntryID
	timers  map[string]*time.Timer
}

// New creates a scheduler backed by the given database handle.
// fire may be nil; triggered tasks are then only logged.
func New(db *gorm.DB, fire FireFunc) *Service {
	return &Service{
		engine:  robfigcron.New(),
		db:      db,
		fire:    fire,
		now:     time.Now,
		entries: make(map[string]robfigcron.EntryID),
		timers:  make(map[string]*time.Timer),
	}
}

// Start reloads persisted tasks, re-registers them and starts the engine.
// Overdue one-shot tasks fire immediately.
func (s *Service) Start(ctx context.Context) error {
	tasks, err := orm.ListTasks(s.db)
	if err != nil {
		return fmt.Errorf("failed to load persisted tasks: %w", err)
	}

	for i := range tasks {
		task := tasks[i]
		if err := s.register(&task); err != nil {
			log.Warnf(ctx, "Dropping unschedulable persisted task %s: %v", task.ID, err)
			_ = orm.DeleteTask(s.db, task.ID)
		}
	}

	s.engine.Start()
	log.Infof(ctx, "Scheduler started with %d task(s)", len(tasks))
	return nil
}

// Stop halts the engine and all pending one-shot timers
func (s *Service) Stop() {
	s.engine.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Schedule validates the spec, persists the task and registers it.
func (s *Service) Schedule(ctx context.Context, spec Spec, payload string) (*orm.ScheduledTask, error) {
	task := &orm.ScheduledTask{
		ID:      uuid.New().String(),
		Kind:    string(spec.Kind),
		Payload: payload,
	}

	switch spec.Kind {
	case KindScheduled:
		when, err := resolveDate(spec.Date, s.now())
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", spec.Date, err)
		}
		if !when.After(s.now()) {
			return nil, fmt.Errorf("scheduled time %s is in the past", when.Format(time.RFC3339))
		}
		task.Spec = when.Format(time.RFC3339)
		task.NextRun = when
	case KindDelayed:
		if spec.DelaySeconds <= 0 {
			return nil, fmt.Errorf("delay must be positive, got %d", spec.DelaySeconds)
		}
		task.Spec = strconv.Itoa(spec.DelaySeconds)
		task.NextRun = s.now().Add(time.Duration(spec.DelaySeconds) * time.Second)
	case KindCron:
		sched, err := robfigcron.ParseStandard(spec.Cron)
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", spec.Cron, err)
		}
		task.Spec = spec.Cron
		task.NextRun = sched.Next(s.now())
	case KindNone:
		return nil, fmt.Errorf("nothing to schedule for kind %q", spec.Kind)
	default:
		return nil, fmt.Errorf("unknown schedule kind %q", spec.Kind)
	}

	if err := orm.CreateTask(s.db, task); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}

	if err := s.register(task); err != nil {
		_ = orm.DeleteTask(s.db, task.ID)
		return nil, err
	}

	log.Infof(ctx, "Scheduled task %s (%s) for %s", task.ID, task.Kind, task.NextRun.Format(time.RFC3339))
	return task, nil
}

// List returns all persisted tasks
func (s *Service) List(ctx context.Context) ([]orm.ScheduledTask, error) {
	return orm.ListTasks(s.db)
}

// Cancel removes a task from the engine and the database
func (s *Service) Cancel(ctx context.Context, id string) error {
	s.unregister(id)

	if err := orm.DeleteTask(s.db, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("task %q not found", id)
		}
		return fmt.Errorf("failed to delete task %q: %w", id, err)
	}

	log.Infof(ctx, "Canceled task %s", id)
	return nil
}

// register wires a persisted task into the engine. Caller need not hold s.mu.
func (s *Service) register(task *orm.ScheduledTask) error {
	if task.Kind == string(KindCron) {
		sched, err := robfigcron.ParseStandard(task.Spec)
		if err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", task.Spec, err)
		}

		id := task.ID
		payload := task.Payload
		entryID := s.engine.Schedule(sched, robfigcron.FuncJob(func() {
			s.trigger(id, payload)
			// Keep the stored next-run time roughly accurate for listings
			s.db.Model(&orm.ScheduledTask{}).Where("id = ?", id).
				Update("next_run", sched.Next(s.now()))
		}))

		s.mu.Lock()
		s.entries[task.ID] = entryID
		s.mu.Unlock()
		return nil
	}

	// One-shot: scheduled and delayed kinds both reduce to a timer.
	delay := task.NextRun.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	id := task.ID
	payload := task.Payload
	timer := time.AfterFunc(delay, func() {
		s.trigger(id, payload)
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		if err := orm.DeleteTask(s.db, id); err != nil {
			log.Warnf(context.Background(), "Failed to remove fired task %s: %v", id, err)
		}
	})

	s.mu.Lock()
	s.timers[task.ID] = timer
	s.mu.Unlock()
	return nil
}

// unregister removes any engine entry or timer for the task
func (s *Service) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[id]; ok {
		s.engine.Remove(entryID)
		delete(s.entries, id)
	}
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Service) trigger(id, payload string) {
	ctx := reqctx.WithRequestID(context.Background(), reqctx.NewRequestID())
	log.Infof(ctx, "Task %s triggered: %s", id, payload)
	if s.fire != nil {
		s.fire(ctx, id, payload)
	}
}
