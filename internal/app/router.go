package app

import (
	"ai_survey_backend/docs"
	"ai_survey_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	router.GET("/", c.health.Root)

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 问卷收集与统计
		api.POST("/submit", c.survey.Submit)
		api.GET("/stats", c.survey.Stats)
		api.GET("/export", c.survey.Export)

		// AI分析
		api.POST("/analyze", c.analysis.Analyze)
		api.GET("/analyze/:session_id", c.analysis.GetAnalysis)
		api.GET("/models", c.analysis.ListModels)
	}
}
