package repository

import (
	"astro_edu_backend/internal/model"
	"astro_edu_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// CurriculumRepository 课程内容（路线图/关卡/任务）的只读访问。
// 内容由外部系统维护，本引擎不提供任何写入口。
type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

func (r *CurriculumRepository) ListRoadmaps() ([]model.Roadmap, error) {
	var roadmaps []model.Roadmap
	err := r.DB.Find(&roadmaps).Error
	return roadmaps, err
}

// FindRoadmapByID 加载整张星图：关卡按 OrderNumber 升序，含任务
func (r *CurriculumRepository) FindRoadmapByID(id uint) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.DB.
		Preload("Levels", func(db *gorm.DB) *gorm.DB {
			return db.Order("levels.order_number ASC")
		}).
		Preload("Levels.Tasks").
		First(&roadmap, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRoadmapNotFound
		}
		return nil, err
	}
	return &roadmap, nil
}

func (r *CurriculumRepository) FindTaskByID(id uint) (*model.Task, error) {
	var task model.Task
	err := r.DB.First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *CurriculumRepository) FindLevelByID(id uint) (*model.Level, error) {
	var level model.Level
	err := r.DB.Preload("Tasks").First(&level, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLevelNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindLevelsByRoadmap 返回该路线图的全部关卡（含任务），按解锁顺序排列
func (r *CurriculumRepository) FindLevelsByRoadmap(roadmapID uint) ([]model.Level, error) {
	var levels []model.Level
	err := r.DB.
		Preload("Tasks").
		Where("roadmap_id = ?", roadmapID).
		Order("order_number ASC").
		Find(&levels).Error
	return levels, err
}

func (r *CurriculumRepository) FindTasksByLevel(levelID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := r.DB.Where("level_id = ?", levelID).Order("id ASC").Find(&tasks).Error
	return tasks, err
}

// FindTasksByIDs 批量取任务，用于汇总时联结 XP 奖励
func (r *CurriculumRepository) FindTasksByIDs(ids []uint) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	err := r.DB.Where("id IN ?", ids).Find(&tasks).Error
	return tasks, err
}
