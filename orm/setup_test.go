package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&ScheduledTask{})
	assert.NoError(t, err)

	// Shared-cache memory DBs leak rows between tests
	db.Where("1 = 1").Delete(&ScheduledTask{})

	return db
}
