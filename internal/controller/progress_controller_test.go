package controller

import (
	"astro_edu_backend/internal/model"
	"astro_edu_backend/internal/repository"
	"astro_edu_backend/internal/service"
	"astro_edu_backend/internal/util"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 测试用最小路由：跳过 JWT 解析，直接以固定身份注入 user claims

func setupControllerRouter(t *testing.T, maxPerSession int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Roadmap{}, &model.Level{}, &model.Task{},
		&model.UserTask{}, &model.StreakRecord{},
	))

	require.NoError(t, db.Create(&model.User{
		BaseModel: model.BaseModel{ID: 1}, Name: "测试用户", Email: "student@test.local",
	}).Error)
	require.NoError(t, db.Create(&model.Roadmap{
		BaseModel: model.BaseModel{ID: 1}, Title: "Python desde Cero",
	}).Error)
	require.NoError(t, db.Create(&model.Level{
		BaseModel: model.BaseModel{ID: 1}, RoadmapID: 1, Title: "关卡A", OrderNumber: 1,
	}).Error)
	require.NoError(t, db.Create(&model.Task{
		BaseModel: model.BaseModel{ID: 11}, LevelID: 1, Title: "变量", XPReward: 50,
	}).Error)
	require.NoError(t, db.Create(&model.Task{
		BaseModel: model.BaseModel{ID: 12}, LevelID: 1, Title: "条件", XPReward: 75,
	}).Error)

	streakSvc := service.NewStreakService(repository.NewStreakRepository(db))
	progressSvc := service.NewProgressService(
		repository.NewProgressRepository(db),
		repository.NewCurriculumRepository(db),
		streakSvc,
		service.NewMemorySessionBudget(),
		maxPerSession,
		db,
	)

	pc := NewProgressController(progressSvc, streakSvc)
	rc := NewRoadmapController(repository.NewCurriculumRepository(db), progressSvc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user", &util.Claims{UserID: 1, Role: model.Student})
		if c.GetHeader(util.SessionIDHeader) == "" {
			c.Set("fallback_session_id", model.GenerateSessionID())
		}
		c.Next()
	})

	api := router.Group("/api")
	api.POST("/tasks/:taskId/assign", pc.AssignTask)
	api.POST("/tasks/:taskId/complete", pc.CompleteTask)
	api.POST("/tasks/:taskId/revert", pc.RevertTask)
	api.GET("/progress/summary", pc.GetProgressSummary)
	api.GET("/progress/streak", pc.GetStreak)
	api.GET("/roadmaps/:id/progress", rc.GetRoadmapProgress)

	return router
}

func doRequest(router *gin.Engine, method, path, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if sessionID != "" {
		req.Header.Set(util.SessionIDHeader, sessionID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCompleteTaskEndpoint(t *testing.T) {
	router := setupControllerRouter(t, 10)

	w := doRequest(router, http.MethodPost, "/api/tasks/11/complete", "s1")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Code)

	// 未知任务
	w = doRequest(router, http.MethodPost, "/api/tasks/999/complete", "s1")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 非数字ID
	w = doRequest(router, http.MethodPost, "/api/tasks/abc/complete", "s1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteTaskEndpoint_PacingReturns429(t *testing.T) {
	router := setupControllerRouter(t, 1)

	w := doRequest(router, http.MethodPost, "/api/tasks/11/complete", "s1")
	require.Equal(t, http.StatusOK, w.Code)

	// 同会话第二个任务被配速拒绝
	w = doRequest(router, http.MethodPost, "/api/tasks/12/complete", "s1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 重复完成同一任务幂等放行
	w = doRequest(router, http.MethodPost, "/api/tasks/11/complete", "s1")
	assert.Equal(t, http.StatusOK, w.Code)

	// 换会话后放行
	w = doRequest(router, http.MethodPost, "/api/tasks/12/complete", "s2")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevertTaskEndpoint(t *testing.T) {
	router := setupControllerRouter(t, 10)

	// 未完成的任务撤销返回 409
	w := doRequest(router, http.MethodPost, "/api/tasks/11/revert", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, http.MethodPost, "/api/tasks/11/complete", "s1")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/tasks/11/revert", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAssignTaskEndpoint(t *testing.T) {
	router := setupControllerRouter(t, 10)

	w := doRequest(router, http.MethodPost, "/api/tasks/11/assign", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/api/tasks/999/assign", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgressSummaryEndpoint(t *testing.T) {
	router := setupControllerRouter(t, 10)

	w := doRequest(router, http.MethodPost, "/api/tasks/11/complete", "s1")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/progress/summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.ProgressSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.CompletedTasks)
	assert.Equal(t, 50, resp.Data.TotalXP)
}

func TestStreakEndpoint(t *testing.T) {
	router := setupControllerRouter(t, 10)

	// 从未活跃：零值记录而不是 404
	w := doRequest(router, http.MethodGet, "/api/progress/streak", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.StreakRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Data.CurrentStreakDays)
}

func TestRoadmapProgressEndpoint(t *testing.T) {
	router := setupControllerRouter(t, 10)

	w := doRequest(router, http.MethodGet, "/api/roadmaps/1/progress", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.RoadmapProgress `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Levels, 1)
	assert.Equal(t, model.LevelUnlocked, resp.Data.Levels[0].Status)

	w = doRequest(router, http.MethodGet, "/api/roadmaps/999/progress", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
