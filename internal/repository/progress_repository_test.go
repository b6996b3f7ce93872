package repository

import (
	"astro_edu_backend/internal/model"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.UserTask{}))
	return db
}

func TestProgressRepository_GetAbsentIsNotAnError(t *testing.T) {
	repo := NewProgressRepository(setupRepoDB(t))

	record, err := repo.Get(1, 11)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestProgressRepository_UpsertNeverDuplicates(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewProgressRepository(db)
	now := time.Now()

	first, err := repo.Upsert(1, 11, model.TaskCompleted, &now)
	require.NoError(t, err)
	require.NotNil(t, first.DateCompleted)

	// 重复写同一状态：同一行被覆盖，不追加
	second, err := repo.Upsert(1, 11, model.TaskCompleted, &now)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&model.UserTask{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProgressRepository_DowngradeKeepsDateCompleted(t *testing.T) {
	repo := NewProgressRepository(setupRepoDB(t))
	now := time.Now()

	_, err := repo.Upsert(1, 11, model.TaskCompleted, &now)
	require.NoError(t, err)

	// 降级为 in_progress："曾完成"痕迹保留
	reverted, err := repo.Upsert(1, 11, model.TaskInProgress, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TaskInProgress, reverted.Status)
	assert.NotNil(t, reverted.DateCompleted)
}

func TestProgressRepository_EnsurePendingNeverDowngrades(t *testing.T) {
	repo := NewProgressRepository(setupRepoDB(t))
	now := time.Now()

	record, err := repo.EnsurePending(1, 11)
	require.NoError(t, err)
	assert.Equal(t, model.TaskPending, record.Status)

	_, err = repo.Upsert(1, 11, model.TaskCompleted, &now)
	require.NoError(t, err)

	kept, err := repo.EnsurePending(1, 11)
	require.NoError(t, err)
	assert.Equal(t, model.TaskCompleted, kept.Status)
}

func TestProgressRepository_ListForUserScopedByUser(t *testing.T) {
	repo := NewProgressRepository(setupRepoDB(t))
	now := time.Now()

	_, err := repo.Upsert(1, 11, model.TaskCompleted, &now)
	require.NoError(t, err)
	_, err = repo.Upsert(1, 12, model.TaskInProgress, nil)
	require.NoError(t, err)
	_, err = repo.Upsert(2, 11, model.TaskCompleted, &now)
	require.NoError(t, err)

	records, err := repo.ListForUser(1)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, uint(1), r.UserID)
	}
}
