package database

import (
	"context"
	"testing"

	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/infrastructure/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_NotConfigured(t *testing.T) {
	db, err := Open(config.DatabaseConfig{})
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql", DSN: "root@/db"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_SQLiteWithSeed(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		DSN:         ":memory:",
		LogLevel:    "silent",
		AutoMigrate: true,
		Seed:        true,
	})
	require.NoError(t, err)
	defer Close(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	s := store.NewGormStore(db)
	rows, err := s.ListRecipes(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "番茄炒蛋", rows[0].Title)
	require.NotNil(t, rows[0].Author)

	steps, err := s.ListSteps(context.Background(), rows[0].ID)
	require.NoError(t, err)
	assert.Len(t, steps, 3)

	// 已有資料時不重複寫入
	require.NoError(t, Seed(db))
	rows, err = s.ListRecipes(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGormLogLevel(t *testing.T) {
	assert.NotEqual(t, gormLogLevel("silent"), gormLogLevel("info"))
	assert.Equal(t, gormLogLevel("warn"), gormLogLevel(""))
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
