package repository

import (
	"astro_edu_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

type StreakRepository struct {
	DB *gorm.DB
}

// NewStreakRepository 创建连续学习记录仓库实例
func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: db}
}

func (r *StreakRepository) WithTx(tx *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: tx}
}

// FindByUser 查用户的连续学习记录；不存在返回 (nil, nil)
func (r *StreakRepository) FindByUser(userID uint) (*model.StreakRecord, error) {
	var record model.StreakRecord
	err := r.DB.Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &record, nil
}

func (r *StreakRepository) Save(record *model.StreakRecord) error {
	if err := r.DB.Save(record).Error; err != nil {
		return storageErr(err)
	}
	return nil
}
