package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agentdesk/agentdesk/orm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&orm.ScheduledTask{}))
	return db
}

func TestSchedule_Delayed(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	task, err := svc.Schedule(context.Background(), Spec{Kind: KindDelayed, DelaySeconds: 60}, "water the plants")
	assert.NoError(t, err)
	assert.Equal(t, "delayed", task.Kind)
	assert.Equal(t, "60", task.Spec)
	assert.True(t, task.NextRun.After(time.Now()))

	tasks, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, "water the plants", tasks[0].Payload)
}

func TestSchedule_DelayedRejectsNonPositive(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	_, err := svc.Schedule(context.Background(), Spec{Kind: KindDelayed, DelaySeconds: 0}, "x")
	assert.Error(t, err)
}

func TestSchedule_ScheduledWithExpression(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	task, err := svc.Schedule(context.Background(), Spec{
		Kind: KindScheduled,
		Date: "new Date(now + 3600000)",
	}, "hourly checkin")
	assert.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), task.NextRun.Unix(), 5)
}

func TestSchedule_ScheduledRejectsPast(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	_, err := svc.Schedule(context.Background(), Spec{
		Kind: KindScheduled,
		Date: "2020-01-01T00:00:00Z",
	}, "too late")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "in the past")
}

func TestSchedule_Cron(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	task, err := svc.Schedule(context.Background(), Spec{Kind: KindCron, Cron: "*/10 * * * *"}, "sync inbox")
	assert.NoError(t, err)
	assert.Equal(t, "cron", task.Kind)
	assert.Equal(t, "*/10 * * * *", task.Spec)
	assert.True(t, task.NextRun.After(time.Now()))
}

func TestSchedule_InvalidCron(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	_, err := svc.Schedule(context.Background(), Spec{Kind: KindCron, Cron: "not a cron"}, "x")
	assert.Error(t, err)

	// Nothing should have been persisted
	tasks, listErr := svc.List(context.Background())
	assert.NoError(t, listErr)
	assert.Empty(t, tasks)
}

func TestSchedule_NoScheduleKind(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	_, err := svc.Schedule(context.Background(), Spec{Kind: KindNone}, "x")
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	task, err := svc.Schedule(context.Background(), Spec{Kind: KindDelayed, DelaySeconds: 600}, "cancel me")
	assert.NoError(t, err)

	assert.NoError(t, svc.Cancel(context.Background(), task.ID))

	tasks, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCancel_Unknown(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop()

	err := svc.Cancel(context.Background(), "does-not-exist")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStart_FiresOverdueTask(t *testing.T) {
	db := setupTestDB(t)

	// Persist a task whose run time has already passed
	assert.NoError(t, orm.CreateTask(db, &orm.ScheduledTask{
		ID:      "overdue",
		Kind:    string(KindDelayed),
		Spec:    "1",
		Payload: "missed reminder",
		NextRun: time.Now().Add(-time.Minute),
	}))

	fired := make(chan string, 1)
	svc := New(db, func(ctx context.Context, taskID, payload string) {
		fired <- payload
	})
	defer svc.Stop()

	assert.NoError(t, svc.Start(context.Background()))

	select {
	case payload := <-fired:
		assert.Equal(t, "missed reminder", payload)
	case <-time.After(2 * time.Second):
		t.Fatal("overdue task did not fire")
	}
}
