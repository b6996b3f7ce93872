package service

import (
	"astro_edu_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lvl(id uint, order int, taskIDs ...uint) model.Level {
	l := model.Level{
		BaseModel:   model.BaseModel{ID: id},
		RoadmapID:   1,
		Title:       "level",
		OrderNumber: order,
	}
	for _, tid := range taskIDs {
		l.Tasks = append(l.Tasks, model.Task{
			BaseModel: model.BaseModel{ID: tid},
			LevelID:   id,
		})
	}
	return l
}

func done(userID, taskID uint) model.UserTask {
	now := time.Now()
	return model.UserTask{
		UserID:        userID,
		TaskID:        taskID,
		Status:        model.TaskCompleted,
		DateCompleted: &now,
	}
}

func attempted(userID, taskID uint) model.UserTask {
	return model.UserTask{
		UserID: userID,
		TaskID: taskID,
		Status: model.TaskInProgress,
	}
}

func TestEvaluateRoadmap_FreshUser(t *testing.T) {
	levels := []model.Level{
		lvl(1, 1, 11, 12),
		lvl(2, 2, 21),
		lvl(3, 3, 31),
	}

	states := EvaluateRoadmap(levels, nil)
	require.Len(t, states, 3)

	// 第一关天然解锁，其余锁定
	assert.Equal(t, model.LevelUnlocked, states[0].Status)
	assert.Equal(t, model.LevelLocked, states[1].Status)
	assert.Equal(t, model.LevelLocked, states[2].Status)
}

func TestEvaluateRoadmap_CascadeOnLevelCompletion(t *testing.T) {
	levels := []model.Level{
		lvl(1, 1, 11, 12),
		lvl(2, 2, 21),
		lvl(3, 3, 31),
	}

	// 第一关完成一半：不解锁第二关
	states := EvaluateRoadmap(levels, []model.UserTask{done(1, 11)})
	assert.Equal(t, model.LevelUnlocked, states[0].Status)
	assert.Equal(t, 1, states[0].DoneTasks)
	assert.Equal(t, model.LevelLocked, states[1].Status)

	// 第一关全部完成：第二关解锁，第三关仍锁定
	states = EvaluateRoadmap(levels, []model.UserTask{done(1, 11), done(1, 12)})
	assert.Equal(t, model.LevelCompleted, states[0].Status)
	assert.Equal(t, model.LevelUnlocked, states[1].Status)
	assert.Equal(t, model.LevelLocked, states[2].Status)
}

func TestEvaluateRoadmap_ZeroTaskLevelCascadesThrough(t *testing.T) {
	// 中间的空关卡一旦可达即视为通关，级联穿透它
	levels := []model.Level{
		lvl(1, 1, 11),
		lvl(2, 2), // 无任务
		lvl(3, 3, 31),
	}

	states := EvaluateRoadmap(levels, []model.UserTask{done(1, 11)})
	assert.Equal(t, model.LevelCompleted, states[0].Status)
	assert.Equal(t, model.LevelCompleted, states[1].Status)
	assert.Equal(t, model.LevelUnlocked, states[2].Status)
}

func TestEvaluateRoadmap_LevelsArriveUnsorted(t *testing.T) {
	levels := []model.Level{
		lvl(3, 3, 31),
		lvl(1, 1, 11),
		lvl(2, 2, 21),
	}

	states := EvaluateRoadmap(levels, nil)
	require.Len(t, states, 3)
	assert.Equal(t, 1, states[0].OrderNumber)
	assert.Equal(t, 2, states[1].OrderNumber)
	assert.Equal(t, 3, states[2].OrderNumber)
	assert.Equal(t, model.LevelUnlocked, states[0].Status)
}

func TestEvaluateRoadmap_RevertDoesNotRelock(t *testing.T) {
	levels := []model.Level{
		lvl(1, 1, 11),
		lvl(2, 2, 21),
	}

	// 完成第一关，第二关解锁，并在第二关留下尝试记录
	progress := []model.UserTask{done(1, 11), attempted(1, 21)}
	states := EvaluateRoadmap(levels, progress)
	assert.Equal(t, model.LevelUnlocked, states[1].Status)

	// 撤销第一关的任务：状态回退但 DateCompleted 保留
	when := time.Now()
	reverted := model.UserTask{
		UserID:        1,
		TaskID:        11,
		Status:        model.TaskInProgress,
		DateCompleted: &when,
	}
	states = EvaluateRoadmap(levels, []model.UserTask{reverted, attempted(1, 21)})

	// 曾完成过的任务仍计入通关，解锁不回退
	assert.Equal(t, model.LevelCompleted, states[0].Status)
	assert.Equal(t, model.LevelUnlocked, states[1].Status)
}

func TestEvaluateRoadmap_AttemptedLevelNeverLocked(t *testing.T) {
	// locked 定义为"从未尝试"：只要存在记录，即使前置未通关也不显示锁定
	levels := []model.Level{
		lvl(1, 1, 11),
		lvl(2, 2, 21),
	}

	states := EvaluateRoadmap(levels, []model.UserTask{attempted(1, 21)})
	assert.Equal(t, model.LevelUnlocked, states[0].Status)
	assert.Equal(t, model.LevelUnlocked, states[1].Status)
}

func TestRoadmapCompleted(t *testing.T) {
	assert.False(t, RoadmapCompleted(nil))

	states := []model.LevelState{
		{LevelID: 1, Status: model.LevelCompleted},
		{LevelID: 2, Status: model.LevelUnlocked},
	}
	assert.False(t, RoadmapCompleted(states))

	states[1].Status = model.LevelCompleted
	assert.True(t, RoadmapCompleted(states))
}

func TestDiffStates(t *testing.T) {
	before := []model.LevelState{
		{LevelID: 1, Title: "起点", Status: model.LevelUnlocked},
		{LevelID: 2, Title: "下一站", Status: model.LevelLocked},
	}
	after := []model.LevelState{
		{LevelID: 1, Title: "起点", Status: model.LevelCompleted},
		{LevelID: 2, Title: "下一站", Status: model.LevelUnlocked},
	}

	events := DiffStates(before, after)
	require.Len(t, events, 2)
	assert.Equal(t, uint(1), events[0].LevelID)
	assert.Equal(t, model.LevelCompleted, events[0].NewStatus)
	assert.Equal(t, uint(2), events[1].LevelID)
	assert.Equal(t, model.LevelUnlocked, events[1].NewStatus)

	// 无变化则无事件
	assert.Empty(t, DiffStates(after, after))
}
