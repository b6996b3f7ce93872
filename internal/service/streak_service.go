package service

import (
	"astro_edu_backend/internal/model"
	"astro_edu_backend/internal/repository"
	"time"
)

// StreakService 连续学习天数统计，每个活跃日最多推进一次
type StreakService struct {
	StreakRepo *repository.StreakRepository
}

func NewStreakService(streakRepo *repository.StreakRepository) *StreakService {
	return &StreakService{StreakRepo: streakRepo}
}

// sameDay 按服务器本地日历日比较
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AdvanceStreak 对已有记录应用一次活跃日更新，返回是否有变化。
// 昨天活跃过则 +1；今天已记录则不变；断档（≥2天）重置为 1。
// 任何更新后都保证 LongestStreakDays >= CurrentStreakDays。
func AdvanceStreak(record *model.StreakRecord, today time.Time) bool {
	if sameDay(record.LastActiveDate, today) {
		return false
	}

	yesterday := today.AddDate(0, 0, -1)
	if sameDay(record.LastActiveDate, yesterday) {
		record.CurrentStreakDays++
	} else {
		record.CurrentStreakDays = 1
	}

	if record.CurrentStreakDays > record.LongestStreakDays {
		record.LongestStreakDays = record.CurrentStreakDays
	}
	record.LastActiveDate = today
	return true
}

// RecordActivity 记录一次学习活跃，必要时创建首条记录
func (s *StreakService) RecordActivity(userID uint, at time.Time) (*model.StreakRecord, error) {
	return s.recordActivityWith(s.StreakRepo, userID, at)
}

func (s *StreakService) recordActivityWith(repo *repository.StreakRepository, userID uint, at time.Time) (*model.StreakRecord, error) {
	record, err := repo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	if record == nil {
		record = &model.StreakRecord{
			UserID:            userID,
			CurrentStreakDays: 1,
			LongestStreakDays: 1,
			LastActiveDate:    at,
		}
		if err := repo.Save(record); err != nil {
			return nil, err
		}
		return record, nil
	}

	if AdvanceStreak(record, at) {
		if err := repo.Save(record); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// GetStreak 查询用户的连续学习记录；从未活跃过的用户返回零值记录
func (s *StreakService) GetStreak(userID uint) (*model.StreakRecord, error) {
	record, err := s.StreakRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &model.StreakRecord{UserID: userID}, nil
	}
	return record, nil
}
