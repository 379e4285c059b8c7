package controller

import (
	"ai_survey_backend/internal/service"
	"ai_survey_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	service  *service.SurveyService
	analyzer *service.AnalyzerService
}

func NewAnalysisController(s *service.SurveyService, analyzer *service.AnalyzerService) *AnalysisController {
	return &AnalysisController{service: s, analyzer: analyzer}
}

type AnalyzeRequest struct {
	SessionID       string `json:"session_id" binding:"omitempty,max=64"`
	UseSimplePrompt bool   `json:"use_simple_prompt"`
}

// Analyze godoc
// @Summary AI分析问卷结果
// @Description 同步生成并保存分析报告；session_id缺省时使用配置的默认场次
// @Tags 分析
// @Accept json
// @Produce json
// @Param body body AnalyzeRequest true "分析参数"
// @Success 200 {object} util.Response{data=service.AnalysisReport}
// @Failure 404 {object} util.Response
// @Failure 502 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /analyze [post]
func (c *AnalysisController) Analyze(ctx *gin.Context) {
	if !c.analyzer.Enabled() {
		util.ServiceUnavailable(ctx, "AI分析功能未配置，请设置AI_API_KEY")
		return
	}

	var req AnalyzeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.service.DefaultSession()
	}

	report, err := c.service.Analyze(sessionID, req.UseSimplePrompt)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoResponses):
			util.NotFound(ctx, "该场次没有问卷数据")
		case errors.Is(err, util.ErrExternalService):
			util.BadGateway(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, report)
}

// GetAnalysis godoc
// @Summary 获取已保存的分析结果
// @Tags 分析
// @Produce json
// @Param session_id path string true "场次标识"
// @Success 200 {object} util.Response{data=model.AnalysisResult}
// @Failure 404 {object} util.Response
// @Router /analyze/{session_id} [get]
func (c *AnalysisController) GetAnalysis(ctx *gin.Context) {
	sessionID := ctx.Param("session_id")

	result, err := c.service.StoredAnalysis(sessionID)
	if err != nil {
		if errors.Is(err, util.ErrAnalysisNotFound) {
			util.NotFound(ctx, "未找到该场次的分析结果")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// ListModels godoc
// @Summary 获取可用的AI模型列表
// @Description 静态描述数据，与分析功能是否配置无关
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response{data=[]service.ModelInfo}
// @Router /models [get]
func (c *AnalysisController) ListModels(ctx *gin.Context) {
	util.Success(ctx, c.analyzer.AvailableModels())
}
