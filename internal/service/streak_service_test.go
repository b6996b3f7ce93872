package service

import (
	"astro_edu_backend/internal/model"
	"astro_edu_backend/internal/repository"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func day(offset int) time.Time {
	base := time.Date(2026, 8, 20, 15, 30, 0, 0, time.Local)
	return base.AddDate(0, 0, offset)
}

func TestAdvanceStreak(t *testing.T) {
	tests := []struct {
		name        string
		lastActive  time.Time
		current     int
		longest     int
		today       time.Time
		wantChanged bool
		wantCurrent int
		wantLongest int
	}{
		{
			name:       "同一天重复活跃不变",
			lastActive: day(0), current: 3, longest: 5,
			today:       day(0).Add(4 * time.Hour), // 同日不同时刻
			wantChanged: false, wantCurrent: 3, wantLongest: 5,
		},
		{
			name:       "昨天活跃过则加一",
			lastActive: day(-1), current: 3, longest: 5,
			today:       day(0),
			wantChanged: true, wantCurrent: 4, wantLongest: 5,
		},
		{
			name:       "断档两天重置为一",
			lastActive: day(-2), current: 3, longest: 5,
			today:       day(0),
			wantChanged: true, wantCurrent: 1, wantLongest: 5,
		},
		{
			name:       "刷新历史最长",
			lastActive: day(-1), current: 5, longest: 5,
			today:       day(0),
			wantChanged: true, wantCurrent: 6, wantLongest: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &model.StreakRecord{
				UserID:            1,
				CurrentStreakDays: tt.current,
				LongestStreakDays: tt.longest,
				LastActiveDate:    tt.lastActive,
			}
			changed := AdvanceStreak(record, tt.today)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantCurrent, record.CurrentStreakDays)
			assert.Equal(t, tt.wantLongest, record.LongestStreakDays)
			assert.GreaterOrEqual(t, record.LongestStreakDays, record.CurrentStreakDays)
		})
	}
}

func setupStreakService(t *testing.T) *StreakService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.StreakRecord{}))
	return NewStreakService(repository.NewStreakRepository(db))
}

func TestRecordActivity_CreatesAndAdvances(t *testing.T) {
	svc := setupStreakService(t)

	// 首次活跃建档
	record, err := svc.RecordActivity(1, day(0))
	require.NoError(t, err)
	assert.Equal(t, 1, record.CurrentStreakDays)
	assert.Equal(t, 1, record.LongestStreakDays)

	// 同日再次活跃不变
	record, err = svc.RecordActivity(1, day(0).Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, record.CurrentStreakDays)

	// 连续三天
	record, err = svc.RecordActivity(1, day(1))
	require.NoError(t, err)
	record, err = svc.RecordActivity(1, day(2))
	require.NoError(t, err)
	assert.Equal(t, 3, record.CurrentStreakDays)
	assert.Equal(t, 3, record.LongestStreakDays)

	// 断档后重置，但历史最长保留
	record, err = svc.RecordActivity(1, day(5))
	require.NoError(t, err)
	assert.Equal(t, 1, record.CurrentStreakDays)
	assert.Equal(t, 3, record.LongestStreakDays)
}

func TestGetStreak_NeverActive(t *testing.T) {
	svc := setupStreakService(t)

	record, err := svc.GetStreak(42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), record.UserID)
	assert.Equal(t, 0, record.CurrentStreakDays)
	assert.Equal(t, 0, record.LongestStreakDays)
}
