package controller

import (
	"astro_edu_backend/internal/repository"
	"astro_edu_backend/internal/service"
	"astro_edu_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RoadmapController 处理学习路线图相关的API请求
type RoadmapController struct {
	CurriculumRepo  *repository.CurriculumRepository
	ProgressService *service.ProgressService
}

func NewRoadmapController(curriculumRepo *repository.CurriculumRepository, progressService *service.ProgressService) *RoadmapController {
	return &RoadmapController{
		CurriculumRepo:  curriculumRepo,
		ProgressService: progressService,
	}
}

func parseRoadmapID(ctx *gin.Context) (uint, bool) {
	idStr := ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		util.BadRequest(ctx, "路线图ID无效")
		return 0, false
	}
	return uint(id), true
}

// ListRoadmaps godoc
// @Summary 获取路线图列表
// @Description 所有可用的学习路线图，不含关卡与任务明细
// @Tags 路线图
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Roadmap} "成功"
// @Failure 503 {object} util.Response "存储暂不可用"
// @Router /api/roadmaps [get]
func (c *RoadmapController) ListRoadmaps(ctx *gin.Context) {
	roadmaps, err := c.CurriculumRepo.ListRoadmaps()
	if err != nil {
		if errors.Is(err, util.ErrStorageUnavailable) {
			util.ServiceUnavailable(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, roadmaps)
}

// GetRoadmap godoc
// @Summary 获取路线图详情
// @Description 路线图及按顺序排列的关卡与任务
// @Tags 路线图
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线图ID"
// @Success 200 {object} util.Response{data=model.Roadmap} "成功"
// @Failure 404 {object} util.Response "路线图不存在"
// @Failure 503 {object} util.Response "存储暂不可用"
// @Router /api/roadmaps/{id} [get]
func (c *RoadmapController) GetRoadmap(ctx *gin.Context) {
	id, ok := parseRoadmapID(ctx)
	if !ok {
		return
	}

	roadmap, err := c.CurriculumRepo.FindRoadmapByID(id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrRoadmapNotFound):
			util.NotFound(ctx, "路线图不存在")
		case errors.Is(err, util.ErrStorageUnavailable):
			util.ServiceUnavailable(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, roadmap)
}

// GetRoadmapProgress godoc
// @Summary 获取路线图解锁进度
// @Description 当前用户在该路线图上的逐关状态（locked/unlocked/completed）与整体完成度
// @Tags 路线图
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线图ID"
// @Success 200 {object} util.Response{data=model.RoadmapProgress} "成功"
// @Failure 404 {object} util.Response "路线图不存在"
// @Failure 503 {object} util.Response "存储暂不可用"
// @Router /api/roadmaps/{id}/progress [get]
func (c *RoadmapController) GetRoadmapProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := parseRoadmapID(ctx)
	if !ok {
		return
	}

	progress, err := c.ProgressService.GetRoadmapProgress(user.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrRoadmapNotFound):
			util.NotFound(ctx, "路线图不存在")
		case errors.Is(err, util.ErrStorageUnavailable):
			util.ServiceUnavailable(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}

// GetRoadmapTasks godoc
// @Summary 获取路线图任务清单
// @Description 路线图内全部任务及当前用户的完成状态，无记录的任务显示为 pending
// @Tags 路线图
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线图ID"
// @Success 200 {object} util.Response{data=[]model.RoadmapTaskView} "成功"
// @Failure 404 {object} util.Response "路线图不存在"
// @Failure 503 {object} util.Response "存储暂不可用"
// @Router /api/roadmaps/{id}/tasks [get]
func (c *RoadmapController) GetRoadmapTasks(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := parseRoadmapID(ctx)
	if !ok {
		return
	}

	views, err := c.ProgressService.GetRoadmapTasks(user.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrRoadmapNotFound):
			util.NotFound(ctx, "路线图不存在")
		case errors.Is(err, util.ErrStorageUnavailable):
			util.ServiceUnavailable(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, views)
}
