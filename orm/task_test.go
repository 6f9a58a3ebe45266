package orm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCreateAndGetTask(t *testing.T) {
	db := SetupTestDB(t)

	task := &ScheduledTask{
		ID:      "task-1",
		Kind:    "delayed",
		Spec:    "30",
		Payload: "remind me to stretch",
		NextRun: time.Now().Add(30 * time.Second),
	}
	assert.NoError(t, CreateTask(db, task))

	got, err := GetTask(db, "task-1")
	assert.NoError(t, err)
	assert.Equal(t, "delayed", got.Kind)
	assert.Equal(t, "remind me to stretch", got.Payload)
}

func TestGetTask_NotFound(t *testing.T) {
	db := SetupTestDB(t)

	_, err := GetTask(db, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListTasks_OrderedByNextRun(t *testing.T) {
	db := SetupTestDB(t)

	now := time.Now()
	later := &ScheduledTask{ID: "later", Kind: "cron", Spec: "* * * * *", NextRun: now.Add(time.Hour)}
	sooner := &ScheduledTask{ID: "sooner", Kind: "delayed", Spec: "60", NextRun: now.Add(time.Minute)}
	assert.NoError(t, CreateTask(db, later))
	assert.NoError(t, CreateTask(db, sooner))

	tasks, err := ListTasks(db)
	assert.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "sooner", tasks[0].ID)
	assert.Equal(t, "later", tasks[1].ID)
}

func TestDeleteTask(t *testing.T) {
	db := SetupTestDB(t)

	task := &ScheduledTask{ID: "task-del", Kind: "cron", Spec: "*/5 * * * *"}
	assert.NoError(t, CreateTask(db, task))

	assert.NoError(t, DeleteTask(db, "task-del"))

	_, err := GetTask(db, "task-del")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteTask_NotFound(t *testing.T) {
	db := SetupTestDB(t)

	err := DeleteTask(db, "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
