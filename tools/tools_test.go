package tools

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

func TestWeatherTool_Confirm(t *testing.T) {
	wt := &WeatherTool{}

	res, err := wt.Confirm(context.Background(), map[string]interface{}{"city": "london"})
	assert.NoError(t, err)
	assert.Equal(t, "The weather in London is sunny", res)
}

func TestWeatherTool_MissingCity(t *testing.T) {
	wt := &WeatherTool{}

	_, err := wt.Confirm(context.Background(), map[string]interface{}{})
	assert.Error(t, err)

	_, err = wt.Confirm(context.Background(), map[string]interface{}{"city": 42})
	assert.Error(t, err)
}

func TestDatabaseTools_MissingBinding(t *testing.T) {
	dt := &DatabaseTools{}

	_, err := dt.Ping(context.Background(), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database binding")

	_, err = dt.Query(context.Background(), map[string]interface{}{"query": "SELECT 1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database binding")
}

func TestDatabaseTools_Ping(t *testing.T) {
	dt := &DatabaseTools{DB: setupTestDB(t)}

	res, err := dt.Ping(context.Background(), nil)
	assert.NoError(t, err)

	row, ok := res.(map[string]interface{})
	assert.True(t, ok)
	assert.EqualValues(t, 1, row["ok"])
}

func TestDatabaseTools_Query_EmptyResult(t *testing.T) {
	dt := &DatabaseTools{DB: setupTestDB(t)}

	res, err := dt.Query(context.Background(), map[string]interface{}{
		"query": "SELECT * FROM scheduled_tasks",
	})
	assert.NoError(t, err)

	rows, ok := res.([]map[string]interface{})
	assert.True(t, ok)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDatabaseTools_Query_WithLimit(t *testing.T) {
	db := setupTestDB(t)
	for _, id := range []string{"a", "b", "c"} {
		assert.NoError(t, orm.CreateTask(db, &orm.ScheduledTask{
			ID:      id,
			Kind:    "cron",
			Spec:    "* * * * *",
			NextRun: time.Now(),
		}))
	}

	dt := &DatabaseTools{DB: db}
	res, err := dt.Query(context.Background(), map[string]interface{}{
		"query": "SELECT id FROM scheduled_tasks ORDER BY id",
		"limit": float64(2), // JSON numbers decode as float64
	})
	assert.NoError(t, err)

	rows := res.([]map[string]interface{})
	assert.Len(t, rows, 2)
}

func TestDatabaseTools_Query_KeepsExistingLimit(t *testing.T) {
	db := setupTestDB(t)
	for _, id := range []string{"a", "b", "c"} {
		assert.NoError(t, orm.CreateTask(db, &orm.ScheduledTask{
			ID:      id,
			Kind:    "cron",
			Spec:    "* * * * *",
			NextRun: time.Now(),
		}))
	}

	dt := &DatabaseTools{DB: db}

	// A query with its own LIMIT must not get a second clause appended
	res, err := dt.Query(context.Background(), map[string]interface{}{
		"query": "SELECT id FROM scheduled_tasks ORDER BY id LIMIT 1",
		"limit": float64(2),
	})
	assert.NoError(t, err)
	assert.Len(t, res.([]map[string]interface{}), 1)

	res, err = dt.Query(context.Background(), map[string]interface{}{
		"query": "SELECT id FROM scheduled_tasks ORDER BY id LIMIT 1 OFFSET 1;",
		"limit": float64(3),
	})
	assert.NoError(t, err)
	assert.Len(t, res.([]map[string]interface{}), 1)
}

func TestDatabaseTools_Query_MissingQuery(t *testing.T) {
	dt := &DatabaseTools{DB: setupTestDB(t)}

	_, err := dt.Query(context.Background(), map[string]interface{}{})
	assert.Error(t, err)

	_, err = dt.Query(context.Background(), map[string]interface{}{"query": "   "})
	assert.Error(t, err)
}

func TestTimeTool_Exec(t *testing.T) {
	tt := &TimeTool{DB: setupTestDB(t)}

	res, err := tt.Exec(context.Background(), map[string]interface{}{"location": "Tokyo"})
	assert.NoError(t, err)
	assert.Equal(t, "10am", res)
}

func TestTimeTool_NoDatabase(t *testing.T) {
	// The answer does not depend on the sample query succeeding
	tt := &TimeTool{}

	res, err := tt.Exec(context.Background(), map[string]interface{}{"location": "Berlin"})
	assert.NoError(t, err)
	assert.Equal(t, "10am", res)
}

func TestTimeTool_MissingLocation(t *testing.T) {
	tt := &TimeTool{}

	_, err := tt.Exec(context.Background(), map[string]interface{}{})
	assert.Error(t, err)
}
