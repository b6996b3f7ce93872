package model

import (
	"time"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// LevelStatus 关卡派生状态，不单独持久化，始终由任务完成集合重新推导
type LevelStatus string

const (
	LevelLocked    LevelStatus = "locked"
	LevelUnlocked  LevelStatus = "unlocked"
	LevelCompleted LevelStatus = "completed"
)

// UserTask 每个 (用户, 任务) 对至多一条记录，后写覆盖而不是追加。
// DateCompleted 仅在状态为 completed 时非空。
// swagger:model UserTask
type UserTask struct {
	BaseModel
	UserID        uint       `gorm:"index:idx_user_task,unique;type:bigint unsigned;not null" json:"userId"`
	TaskID        uint       `gorm:"index:idx_user_task,unique;type:bigint unsigned;not null" json:"taskId"`
	Status        TaskStatus `gorm:"size:20;default:'pending'" json:"status"`
	DateCompleted *time.Time `json:"dateCompleted,omitempty"`
}

func (UserTask) TableName() string {
	return "user_tasks"
}

// LevelState 某用户视角下单个关卡的状态快照
// swagger:model LevelState
type LevelState struct {
	LevelID     uint        `json:"levelId"`
	OrderNumber int         `json:"orderNumber"`
	Title       string      `json:"title"`
	Status      LevelStatus `json:"status"`
	TotalTasks  int         `json:"totalTasks"`
	DoneTasks   int         `json:"doneTasks"`
}

// UnlockEvent 完成级联产生的解锁/通关事件，随完成响应返回给前端展示
// swagger:model UnlockEvent
type UnlockEvent struct {
	LevelID   uint        `json:"levelId"`
	LevelName string      `json:"levelName"`
	NewStatus LevelStatus `json:"newStatus"`
}

// ProgressSummary 用户任务进度汇总
// swagger:model ProgressSummary
type ProgressSummary struct {
	TotalTasks           int `json:"totalTasks"`
	CompletedTasks       int `json:"completedTasks"`
	InProgressTasks      int `json:"inProgressTasks"`
	PendingTasks         int `json:"pendingTasks"`
	TotalXP              int `json:"totalXp"`
	CompletionPercentage int `json:"completionPercentage"`
}

// RoadmapProgress 渲染解锁星图所需的逐关状态列表
// swagger:model RoadmapProgress
type RoadmapProgress struct {
	RoadmapID            uint         `json:"roadmapId"`
	Title                string       `json:"title"`
	Levels               []LevelState `json:"levels"`
	Completed            bool         `json:"completed"`
	CompletionPercentage int          `json:"completionPercentage"`
}

// RoadmapTaskView 路线图内逐任务的用户状态联结视图，无记录的任务按 pending 展示
// swagger:model RoadmapTaskView
type RoadmapTaskView struct {
	TaskID        uint       `json:"taskId"`
	Title         string     `json:"title"`
	Type          TaskType   `json:"type"`
	XPReward      int        `json:"xpReward"`
	LevelID       uint       `json:"levelId"`
	LevelTitle    string     `json:"levelTitle"`
	Status        TaskStatus `json:"status"`
	DateCompleted *time.Time `json:"dateCompleted,omitempty"`
}
