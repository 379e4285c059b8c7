package controller

import (
	"ai_survey_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// HealthCheck godoc
// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
		},
	})
}

// Root godoc
// @Summary 服务信息
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (c *HealthController) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"name":    "AI应用需求调研系统 API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": gin.H{
			"submit":  "POST /api/submit",
			"stats":   "GET /api/stats",
			"export":  "GET /api/export",
			"analyze": "POST /api/analyze",
			"models":  "GET /api/models",
		},
	})
}
