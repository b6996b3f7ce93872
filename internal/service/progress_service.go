package service

import (
	"astro_edu_backend/internal/model"
	"astro_edu_backend/internal/repository"
	"astro_edu_backend/internal/util"
	"astro_edu_backend/pkg/logger"
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService 完成服务：校验并应用单次任务完成，维护幂等与会话配速，
// 触发解锁状态机，并负责进度/路线图汇总。
type ProgressService struct {
	ProgressRepo   *repository.ProgressRepository
	CurriculumRepo *repository.CurriculumRepository
	StreakService  *StreakService
	Budget         SessionBudget
	MaxPerSession  int
	DB             *gorm.DB
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	curriculumRepo *repository.CurriculumRepository,
	streakService *StreakService,
	budget SessionBudget,
	maxPerSession int,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		ProgressRepo:   progressRepo,
		CurriculumRepo: curriculumRepo,
		StreakService:  streakService,
		Budget:         budget,
		MaxPerSession:  maxPerSession,
		DB:             db,
	}
}

// CompletionResult 一次完成请求的结果：权威进度记录加上随之发生的解锁事件
type CompletionResult struct {
	Record       *model.UserTask     `json:"record"`
	UnlockEvents []model.UnlockEvent `json:"unlockEvents,omitempty"`
	RoadmapDone  bool                `json:"roadmapDone"`
	XPAwarded    int                 `json:"xpAwarded"`
	AlreadyDone  bool                `json:"alreadyDone"`
}

// CompleteTask 完成一个任务。
//
// 已完成的任务直接原样返回——重复请求不是错误，不重复发 XP，也不占配额。
// 未完成时先查会话配速额度，额度耗尽返回 util.ErrPacingLimitExceeded；
// 额度允许则在同一事务内写入完成记录、累加 XP、推进连续学习天数，并
// 重新推导所属路线图的解锁状态，写入与级联对调用方是一个整体操作。
func (s *ProgressService) CompleteTask(ctx context.Context, userID, taskID uint, sessionID string) (*CompletionResult, error) {
	task, err := s.CurriculumRepo.FindTaskByID(taskID)
	if err != nil {
		return nil, err
	}

	existing, err := s.ProgressRepo.Get(userID, taskID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == model.TaskCompleted {
		return &CompletionResult{Record: existing, AlreadyDone: true}, nil
	}

	spent, err := s.Budget.Spent(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if spent >= s.MaxPerSession {
		return nil, util.ErrPacingLimitExceeded
	}

	level, err := s.CurriculumRepo.FindLevelByID(task.LevelID)
	if err != nil {
		return nil, err
	}
	levels, err := s.CurriculumRepo.FindLevelsByRoadmap(level.RoadmapID)
	if err != nil {
		return nil, err
	}

	var result CompletionResult
	now := time.Now()

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)

		// 事务内复核，并发的第二个写入者在这里退化为无操作
		current, err := progressRepo.Get(userID, taskID)
		if err != nil {
			return err
		}
		if current != nil && current.Status == model.TaskCompleted {
			result = CompletionResult{Record: current, AlreadyDone: true}
			return nil
		}

		before, err := progressRepo.ListForUser(userID)
		if err != nil {
			return err
		}
		statesBefore := EvaluateRoadmap(levels, before)

		record, err := progressRepo.Upsert(userID, taskID, model.TaskCompleted, &now)
		if err != nil {
			return err
		}

		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		user.XP += task.XPReward
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if _, err := s.StreakService.recordActivityWith(s.StreakService.StreakRepo.WithTx(tx), userID, now); err != nil {
			return err
		}

		after, err := progressRepo.ListForUser(userID)
		if err != nil {
			return err
		}
		statesAfter := EvaluateRoadmap(levels, after)

		result = CompletionResult{
			Record:       record,
			UnlockEvents: DiffStates(statesBefore, statesAfter),
			RoadmapDone:  RoadmapCompleted(statesAfter),
			XPAwarded:    task.XPReward,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyDone {
		return &result, nil
	}

	// 额度在提交之后占用；提交与占用之间进程崩溃会多给一次机会，
	// 这是接受的有界误差，比反过来把额度烧在失败的写入上要好
	if err := s.Budget.Consume(ctx, userID, sessionID); err != nil {
		logger.Log.Warn("failed to consume session pacing budget",
			zap.Uint("userId", userID),
			zap.String("sessionId", sessionID),
			zap.Error(err))
	}

	return &result, nil
}

// RevertTask 撤销已完成的任务，状态回到 in_progress。
// 已发生的解锁不回滚，本会话已消耗的配速额度不返还。
// 撤销从未完成过的任务返回 util.ErrInvalidStateTransition。
func (s *ProgressService) RevertTask(userID, taskID uint) (*model.UserTask, error) {
	task, err := s.CurriculumRepo.FindTaskByID(taskID)
	if err != nil {
		return nil, err
	}

	existing, err := s.ProgressRepo.Get(userID, taskID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Status != model.TaskCompleted {
		return nil, util.ErrInvalidStateTransition
	}

	var record *model.UserTask
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		record, err = s.ProgressRepo.WithTx(tx).Upsert(userID, taskID, model.TaskInProgress, nil)
		if err != nil {
			return err
		}

		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		user.XP -= task.XPReward
		if user.XP < 0 {
			user.XP = 0
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// AssignTask 幂等地保证进度记录存在（状态 pending）。
// 完成并不以显式分配为前提，首次完成会隐式建档。
func (s *ProgressService) AssignTask(userID, taskID uint) (*model.UserTask, error) {
	if _, err := s.CurriculumRepo.FindTaskByID(taskID); err != nil {
		return nil, err
	}
	return s.ProgressRepo.EnsurePending(userID, taskID)
}

// GetTaskProgressSummary 扫描用户全部进度并联结任务 XP 奖励得到汇总。
// total 为用户接触过的任务数；completionPercentage = round(100*completed/total)，
// total 为 0 时定义为 0。
func (s *ProgressService) GetTaskProgressSummary(userID uint) (*model.ProgressSummary, error) {
	records, err := s.ProgressRepo.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.TaskID)
	}
	tasks, err := s.CurriculumRepo.FindTasksByIDs(ids)
	if err != nil {
		return nil, err
	}
	xpByTask := make(map[uint]int, len(tasks))
	for _, t := range tasks {
		xpByTask[t.ID] = t.XPReward
	}

	summary := &model.ProgressSummary{TotalTasks: len(records)}
	for _, r := range records {
		switch r.Status {
		case model.TaskCompleted:
			summary.CompletedTasks++
			summary.TotalXP += xpByTask[r.TaskID]
		case model.TaskInProgress:
			summary.InProgressTasks++
		default:
			summary.PendingTasks++
		}
	}

	if summary.TotalTasks > 0 {
		summary.CompletionPercentage = int(math.Round(100 * float64(summary.CompletedTasks) / float64(summary.TotalTasks)))
	}
	return summary, nil
}

// GetRoadmapProgress 推导整条路线图的逐关状态和整体进度，供前端渲染解锁星图
func (s *ProgressService) GetRoadmapProgress(userID, roadmapID uint) (*model.RoadmapProgress, error) {
	roadmap, err := s.CurriculumRepo.FindRoadmapByID(roadmapID)
	if err != nil {
		return nil, err
	}

	records, err := s.ProgressRepo.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	states := EvaluateRoadmap(roadmap.Levels, records)

	completedLevels := 0
	for _, st := range states {
		if st.Status == model.LevelCompleted {
			completedLevels++
		}
	}

	progress := &model.RoadmapProgress{
		RoadmapID: roadmap.ID,
		Title:     roadmap.Title,
		Levels:    states,
		Completed: RoadmapCompleted(states),
	}
	if len(states) > 0 {
		progress.CompletionPercentage = int(math.Round(100 * float64(completedLevels) / float64(len(states))))
	}
	return progress, nil
}

// GetRoadmapTasks 路线图内全部任务联结用户状态，无记录的任务按 pending 展示
func (s *ProgressService) GetRoadmapTasks(userID, roadmapID uint) ([]model.RoadmapTaskView, error) {
	roadmap, err := s.CurriculumRepo.FindRoadmapByID(roadmapID)
	if err != nil {
		return nil, err
	}

	records, err := s.ProgressRepo.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	byTask := make(map[uint]*model.UserTask, len(records))
	for i := range records {
		byTask[records[i].TaskID] = &records[i]
	}

	views := make([]model.RoadmapTaskView, 0)
	for _, lvl := range roadmap.Levels {
		for _, t := range lvl.Tasks {
			view := model.RoadmapTaskView{
				TaskID:     t.ID,
				Title:      t.Title,
				Type:       t.Type,
				XPReward:   t.XPReward,
				LevelID:    lvl.ID,
				LevelTitle: lvl.Title,
				Status:     model.TaskPending,
			}
			if ut, ok := byTask[t.ID]; ok {
				view.Status = ut.Status
				view.DateCompleted = ut.DateCompleted
			}
			views = append(views, view)
		}
	}
	return views, nil
}
