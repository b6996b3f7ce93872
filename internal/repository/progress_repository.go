package repository

import (
	"astro_edu_backend/internal/model"
	"astro_edu_backend/internal/util"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ProgressRepository 进度存储（Progress Store），(用户, 任务) 进度记录的唯一事实来源。
// 任何 I/O 失败都以 util.ErrStorageUnavailable 包装上抛，调用方不得假设半写成功。
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// WithTx 返回绑定到事务句柄的仓库，完成写入与级联评估共用一个事务
func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
}

// Get 查单条进度记录；不存在返回 (nil, nil)，缺席不是错误
func (r *ProgressRepository) Get(userID, taskID uint) (*model.UserTask, error) {
	var ut model.UserTask
	err := r.DB.Where("user_id = ? AND task_id = ?", userID, taskID).First(&ut).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &ut, nil
}

// Upsert 写入或覆盖进度。同一 (user, task) 至多一条记录，重复写同一状态
// 得到相同的存储结果，绝不产生重复行。转入 completed 时记录完成时间；
// 降级时保留既有 DateCompleted 作为"曾完成"痕迹，关卡解锁靠它保持单调。
func (r *ProgressRepository) Upsert(userID, taskID uint, status model.TaskStatus, completedAt *time.Time) (*model.UserTask, error) {
	var ut model.UserTask
	err := r.DB.Where("user_id = ? AND task_id = ?", userID, taskID).First(&ut).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storageErr(err)
		}
		ut = model.UserTask{
			UserID: userID,
			TaskID: taskID,
		}
	}

	ut.Status = status
	if status == model.TaskCompleted {
		ut.DateCompleted = completedAt
	}

	if err := r.DB.Save(&ut).Error; err != nil {
		return nil, storageErr(err)
	}
	return &ut, nil
}

// EnsurePending 幂等地保证进度记录存在；已有记录时原样返回，绝不降级
func (r *ProgressRepository) EnsurePending(userID, taskID uint) (*model.UserTask, error) {
	existing, err := r.Get(userID, taskID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	ut := model.UserTask{
		UserID: userID,
		TaskID: taskID,
		Status: model.TaskPending,
	}
	if err := r.DB.Create(&ut).Error; err != nil {
		return nil, storageErr(err)
	}
	return &ut, nil
}

// ListForUser 该用户接触过的全部任务进度，无序集合
func (r *ProgressRepository) ListForUser(userID uint) ([]model.UserTask, error) {
	var records []model.UserTask
	err := r.DB.Where("user_id = ?", userID).Find(&records).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return records, nil
}
