package orm

import (
	"time"

	"gorm.io/gorm"
)

// ScheduledTask stores a persisted schedule entry
type ScheduledTask struct {
	ID        string    `gorm:"primaryKey"`
	Kind      string    // "scheduled", "delayed" or "cron"
	Spec      string    // RFC3339 time, delay in seconds, or cron expression
	Payload   string    // task description fed back to the assistant on trigger
	NextRun   time.Time `gorm:"index"`
	CreatedAt time.Time
}

// CreateTask persists a new scheduled task
func CreateTask(db *gorm.DB, task *ScheduledTask) error {
	return db.Create(task).Error
}

// GetTask retrieves a task by ID
func GetTask(db *gorm.DB, id string) (*ScheduledTask, error) {
	var task ScheduledTask
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns all persisted tasks ordered by next run time
func ListTasks(db *gorm.DB) ([]ScheduledTask, error) {
	var tasks []ScheduledTask
	if err := db.Order("next_run asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteTask removes a task by ID. Deleting an unknown ID is an error.
func DeleteTask(db *gorm.DB, id string) error {
	res := db.Delete(&ScheduledTask{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
