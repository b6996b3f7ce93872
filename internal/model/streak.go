package model

import (
	"time"
)

// StreakRecord 记录用户的连续学习天数，每个活跃日最多更新一次。
// 不变式：LongestStreakDays >= CurrentStreakDays。
// swagger:model StreakRecord
type StreakRecord struct {
	BaseModel
	UserID            uint      `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	CurrentStreakDays int       `gorm:"default:0" json:"currentStreakDays"`
	LongestStreakDays int       `gorm:"default:0" json:"longestStreakDays"`
	LastActiveDate    time.Time `gorm:"not null" json:"lastActiveDate"`
}

func (StreakRecord) TableName() string {
	return "streak_records"
}
