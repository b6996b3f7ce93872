package app

import (
	"astro_edu_backend/docs"
	"astro_edu_backend/internal/config"
	"astro_edu_backend/internal/middleware"
	"astro_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Health)
	router.GET("/api/health", c.health.Health)

	// 所有业务接口都要求登录，身份由外部认证服务签发的 JWT 携带
	api := router.Group("/api")
	api.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.SessionMiddleware(),
	)
	{
		tasks := api.Group("/tasks")
		{
			tasks.POST("/:taskId/assign", c.progress.AssignTask)
			tasks.POST("/:taskId/complete", c.progress.CompleteTask)
			tasks.POST("/:taskId/revert", c.progress.RevertTask)
		}

		progress := api.Group("/progress")
		{
			progress.GET("/summary", c.progress.GetProgressSummary)
			progress.GET("/streak", c.progress.GetStreak)
		}

		roadmaps := api.Group("/roadmaps")
		{
			roadmaps.GET("", c.roadmap.ListRoadmaps)
			roadmaps.GET("/:id", c.roadmap.GetRoadmap)
			roadmaps.GET("/:id/progress", c.roadmap.GetRoadmapProgress)
			roadmaps.GET("/:id/tasks", c.roadmap.GetRoadmapTasks)
		}
	}
}
