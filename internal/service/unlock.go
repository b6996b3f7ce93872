package service

import (
	"astro_edu_backend/internal/model"
	"sort"
)

// 解锁状态机。关卡状态不落库，永远由进度记录集合重新推导，
// 服务端响应和前端预览共用这一份推导逻辑。
//
// 规则：
//   - 路线图的第一个关卡天然解锁；其余关卡在前一关通关后解锁。
//   - 任务全部完成的关卡为 completed；零任务关卡一旦可达即视为通关，
//     级联穿透它继续向后解锁。
//   - 解锁单向推进：关卡一旦解锁或通关，撤销任务不会把它锁回去。
//     单调性的锚点是进度记录——记录存在即"尝试过"（locked 定义为
//     从未尝试），DateCompleted 非空即"曾完成过"，撤销都不会抹掉。

// taskDone 判断任务是否计入关卡通关：当前已完成，或曾经完成过
func taskDone(ut *model.UserTask) bool {
	return ut.Status == model.TaskCompleted || ut.DateCompleted != nil
}

// EvaluateRoadmap 推导某用户视角下整条路线图的逐关状态。
// levels 无须预排序，内部按 OrderNumber 归位。
func EvaluateRoadmap(levels []model.Level, progress []model.UserTask) []model.LevelState {
	ordered := make([]model.Level, len(levels))
	copy(ordered, levels)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].OrderNumber < ordered[j].OrderNumber
	})

	byTask := make(map[uint]*model.UserTask, len(progress))
	for i := range progress {
		byTask[progress[i].TaskID] = &progress[i]
	}

	states := make([]model.LevelState, 0, len(ordered))
	prevCompleted := false

	for i, lvl := range ordered {
		total := len(lvl.Tasks)
		done := 0
		attempted := false
		for _, t := range lvl.Tasks {
			ut, ok := byTask[t.ID]
			if !ok {
				continue
			}
			attempted = true
			if taskDone(ut) {
				done++
			}
		}

		reachable := i == 0 || prevCompleted
		allDone := total == 0 || done == total

		var status model.LevelStatus
		switch {
		case (reachable || attempted) && allDone:
			status = model.LevelCompleted
		case reachable || attempted:
			status = model.LevelUnlocked
		default:
			status = model.LevelLocked
		}

		states = append(states, model.LevelState{
			LevelID:     lvl.ID,
			OrderNumber: lvl.OrderNumber,
			Title:       lvl.Title,
			Status:      status,
			TotalTasks:  total,
			DoneTasks:   done,
		})
		prevCompleted = status == model.LevelCompleted
	}

	return states
}

// RoadmapCompleted 整条路线图是否通关（派生事实，不落库）
func RoadmapCompleted(states []model.LevelState) bool {
	if len(states) == 0 {
		return false
	}
	for _, s := range states {
		if s.Status != model.LevelCompleted {
			return false
		}
	}
	return true
}

// DiffStates 比较一次写入前后的推导结果，产出解锁/通关事件。
// 推导是单调的，所以只需要关注状态前进的关卡。
func DiffStates(before, after []model.LevelState) []model.UnlockEvent {
	prev := make(map[uint]model.LevelStatus, len(before))
	for _, s := range before {
		prev[s.LevelID] = s.Status
	}

	var events []model.UnlockEvent
	for _, s := range after {
		if prev[s.LevelID] == s.Status {
			continue
		}
		events = append(events, model.UnlockEvent{
			LevelID:   s.LevelID,
			LevelName: s.Title,
			NewStatus: s.Status,
		})
	}
	return events
}
