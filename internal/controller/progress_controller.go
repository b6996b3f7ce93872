package controller

import (
	"astro_edu_backend/internal/service"
	"astro_edu_backend/internal/util"
	"astro_edu_backend/pkg/monitoring"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ProgressController 处理任务进度相关的API请求
type ProgressController struct {
	ProgressService *service.ProgressService
	StreakService   *service.StreakService
}

func NewProgressController(progressService *service.ProgressService, streakService *service.StreakService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		StreakService:   streakService,
	}
}

func parseTaskID(ctx *gin.Context) (uint, bool) {
	idStr := ctx.Param("taskId")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		util.BadRequest(ctx, "任务ID无效")
		return 0, false
	}
	return uint(id), true
}

// CompleteTask godoc
// @Summary 完成任务
// @Description 将任务标记为已完成并触发关卡解锁级联。重复完成幂等返回，不重复发XP；超出本会话配速额度时返回429。
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "任务ID"
// @Param X-Session-ID header string false "客户端会话标识，缺省时按单请求会话处理"
// @Success 200 {object} util.Response{data=service.CompletionResult} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "任务不存在"
// @Failure 429 {object} util.Response "本会话完成额度已用尽"
// @Failure 503 {object} util.Response "进度存储暂不可用"
// @Router /api/tasks/{taskId}/complete [post]
func (c *ProgressController) CompleteTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	taskID, ok := parseTaskID(ctx)
	if !ok {
		return
	}

	sessionID := ctx.GetHeader(util.SessionIDHeader)
	if sessionID == "" {
		// 不带会话头的客户端各请求自成会话，配速退化为无限制；
		// 正式前端始终携带登录时生成的会话ID
		sessionID = ctx.GetString("fallback_session_id")
	}

	result, err := c.ProgressService.CompleteTask(ctx.Request.Context(), user.UserID, taskID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTaskNotFound), errors.Is(err, util.ErrLevelNotFound):
			util.NotFound(ctx, "任务不存在")
		case errors.Is(err, util.ErrPacingLimitExceeded):
			monitoring.TaskCompletions.WithLabelValues("pacing_rejected").Inc()
			util.TooManyRequests(ctx, "本次会话的完成额度已用尽，请稍后再来")
		case errors.Is(err, util.ErrStorageUnavailable):
			util.ServiceUnavailable(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if result.AlreadyDone {
		monitoring.TaskCompletions.WithLabelValues("duplicate").Inc()
	} else {
		monitoring.TaskCompletions.WithLabelValues("completed").Inc()
		monitoring.LevelUnlocks.Add(float64(len(result.UnlockEvents)))
	}

	util.Success(ctx, result)
}

// RevertTask godoc
// @Summary 撤销任务完成
// @Description 将已完成的任务退回进行中。已级联的解锁不回滚，已消耗的会话额度不返还。
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "任务ID"
// @Success 200 {object} util.Response{data=model.UserTask} "成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Failure 409 {object} util.Response "任务未处于已完成状态"
// @Failure 503 {object} util.Response "进度存储暂不可用"
// @Router /api/tasks/{taskId}/revert [post]
func (c *ProgressController) RevertTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	taskID, ok := parseTaskID(ctx)
	if !ok {
		return
	}

	record, err := c.ProgressService.RevertTask(user.UserID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTaskNotFound):
			util.NotFound(ctx, "任务不存在")
		case errors.Is(err, util.ErrInvalidStateTransition):
			util.Conflict(ctx, "任务未处于已完成状态，无法撤销")
		case errors.Is(err, util.ErrStorageUnavailable):
			util.ServiceUnavailable(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, record)
}

// AssignTask godoc
// @Summary 领取任务
// @Description 幂等地为当前用户建立 pending 进度记录。非必需步骤，首次完成会隐式建档。
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path int true "任务ID"
// @Success 201 {object} util.Response{data=model.UserTask} "成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Failure 503 {object} util.Response "进度存储暂不可用"
// @Router /api/tasks/{taskId}/assign [post]
func (c *ProgressController) AssignTask(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	taskID, ok := parseTaskID(ctx)
	if !ok {
		return
	}

	record, err := c.ProgressService.AssignTask(user.UserID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTaskNotFound):
			util.NotFound(ctx, "任务不存在")
		case errors.Is(err, util.ErrStorageUnavailable):
			util.ServiceUnavailable(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, record)
}

// GetProgressSummary godoc
// @Summary 获取进度汇总
// @Description 统计当前用户的任务总数、完成数、总XP和完成百分比
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.ProgressSummary} "成功"
// @Failure 503 {object} util.Response "进度存储暂不可用"
// @Router /api/progress/summary [get]
func (c *ProgressController) GetProgressSummary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.ProgressService.GetTaskProgressSummary(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrStorageUnavailable) {
			util.ServiceUnavailable(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// GetStreak godoc
// @Summary 获取连续学习记录
// @Description 当前连续学习天数、历史最长天数和最近活跃日期
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.StreakRecord} "成功"
// @Router /api/progress/streak [get]
func (c *ProgressController) GetStreak(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	record, err := c.StreakService.GetStreak(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrStorageUnavailable) {
			util.ServiceUnavailable(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, record)
}
