package controller

import (
	"ai_survey_backend/internal/service"
	"ai_survey_backend/internal/util"
	"ai_survey_backend/pkg/logger"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SurveyController struct {
	service *service.SurveyService
	storage *service.StorageService
}

func NewSurveyController(s *service.SurveyService, storage *service.StorageService) *SurveyController {
	return &SurveyController{service: s, storage: storage}
}

// Submit godoc
// @Summary 提交问卷
// @Description 接收一份问卷，校验通过后入库；同一指纹同一场次只能提交一次
// @Tags 问卷
// @Accept json
// @Produce json
// @Param body body service.SubmitRequest true "问卷内容"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /submit [post]
func (c *SurveyController) Submit(ctx *gin.Context) {
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, err := c.service.Submit(&req, ctx.ClientIP(), ctx.GetHeader("User-Agent"))
	if err != nil {
		if errors.Is(err, util.ErrDuplicateSubmission) {
			util.Conflict(ctx, "您已经提交过问卷，请勿重复提交")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": id})
}

// Stats godoc
// @Summary 获取场次统计
// @Description 优先数据库端聚合，不可用时进程内回退；每次读取重新计算
// @Tags 问卷
// @Produce json
// @Param session_id query string false "场次标识，缺省使用配置的默认场次"
// @Success 200 {object} util.Response{data=model.SessionStatistics}
// @Router /stats [get]
func (c *SurveyController) Stats(ctx *gin.Context) {
	sessionID := ctx.Query("session_id")
	if sessionID == "" {
		sessionID = c.service.DefaultSession()
	}

	stats, err := c.service.Statistics(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// Export godoc
// @Summary 导出问卷数据为CSV
// @Tags 问卷
// @Produce text/csv
// @Param session_id query string false "场次标识，缺省使用配置的默认场次"
// @Success 200 {string} string "CSV文件"
// @Failure 404 {object} util.Response
// @Router /export [get]
func (c *SurveyController) Export(ctx *gin.Context) {
	sessionID := ctx.Query("session_id")
	if sessionID == "" {
		sessionID = c.service.DefaultSession()
	}

	responses, err := c.service.Responses(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if len(responses) == 0 {
		util.NotFound(ctx, "未找到数据")
		return
	}

	data, err := service.BuildResponsesCSV(responses)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	// 归档失败不影响本次导出
	if c.storage != nil && c.storage.Enabled() {
		if _, err := c.storage.ArchiveExport(ctx.Request.Context(), sessionID, data); err != nil {
			logger.Log.Warn("导出归档失败", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=questionnaire_%s.csv", sessionID))
	ctx.Data(200, "text/csv", data)
}
