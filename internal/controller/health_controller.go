package controller

import (
	"astro_edu_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthController 健康检查
type HealthController struct {
	DB      *gorm.DB
	started time.Time
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db, started: time.Now()}
}

// Health godoc
// @Summary 健康检查
// @Description 检查服务与数据库连接状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response "服务正常"
// @Failure 503 {object} util.Response "数据库不可用"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}
	if err != nil {
		util.ServiceUnavailable(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"uptime": time.Since(c.started).Truncate(time.Second).String(),
	})
}
