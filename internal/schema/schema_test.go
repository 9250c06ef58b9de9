package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/microblog-app/microblog-back/internal/database"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:", 1, false)
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPopulateOnce(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db))

	inserted, err := Populate(db)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = Populate(db)
	require.NoError(t, err)
	assert.False(t, inserted, "a populated database is left alone")

	var users, posts int64
	db.Table("users").Count(&users)
	db.Table("posts").Count(&posts)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(2), posts)
}

func TestDump(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db))
	_, err := Populate(db)
	require.NoError(t, err)

	seen := map[string]int{}
	var firstPost map[string]interface{}
	err = Dump(db, func(table string, row map[string]interface{}) {
		seen[table]++
		if table == "posts" && firstPost == nil {
			firstPost = row
		}
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"users": 2, "posts": 2}, seen)
	assert.Equal(t, "STEM", firstPost["title"])
}

func TestDumpWithoutSchema(t *testing.T) {
	db := openMemory(t)

	err := Dump(db, func(string, map[string]interface{}) {})
	assert.Error(t, err)
}
