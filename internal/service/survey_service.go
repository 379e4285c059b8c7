package service

import (
	"ai_survey_backend/internal/config"
	"ai_survey_backend/internal/model"
	"ai_survey_backend/internal/util"
	"ai_survey_backend/pkg/monitoring"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ResponseStore 问卷存取，由 repository.ResponseRepository 实现
type ResponseStore interface {
	Insert(resp *model.Response) error
	FindBySession(sessionID string) ([]model.Response, error)
	LatestCreatedAt(sessionID string) (*time.Time, error)
	SessionAggregate(sessionID string) (*model.SessionStatistics, error)
}

// AnalysisStore 分析结果存取，由 repository.AnalysisRepository 实现
type AnalysisStore interface {
	Upsert(result *model.AnalysisResult) error
	FindBySession(sessionID string) (*model.AnalysisResult, error)
}

// QuestionnaireAnalyzer 由 AnalyzerService 实现
type QuestionnaireAnalyzer interface {
	AnalyzeQuestionnaire(stats *model.SessionStatistics, sessionID string, useSimplePrompt bool) (*AnalysisReport, error)
}

type SurveyService struct {
	responses ResponseStore
	analyses  AnalysisStore
	analyzer  QuestionnaireAnalyzer
	cfg       config.SurveyConfig
	log       *zap.Logger
}

func NewSurveyService(responses ResponseStore, analyses AnalysisStore, analyzer QuestionnaireAnalyzer, cfg config.SurveyConfig, log *zap.Logger) *SurveyService {
	return &SurveyService{
		responses: responses,
		analyses:  analyses,
		analyzer:  analyzer,
		cfg:       cfg,
		log:       log,
	}
}

// SubmitRequest 问卷提交体。取值范围和多选题数量约束由 binding 标签校验，
// 任何一项不满足都在入库前整体拒绝。
type SubmitRequest struct {
	SessionID             string   `json:"session_id" binding:"required,max=64"`
	Q1Industry            string   `json:"q1_industry" binding:"required,max=64"`
	Q1IndustryOther       *string  `json:"q1_industry_other" binding:"omitempty,max=255"`
	Q2Role                string   `json:"q2_role" binding:"required,max=64"`
	Q2RoleOther           *string  `json:"q2_role_other" binding:"omitempty,max=255"`
	Q3DigitalHabit        int      `json:"q3_digital_habit" binding:"required,gte=1,lte=4"`
	Q4AISelfPosition      int      `json:"q4_ai_self_position" binding:"required,gte=1,lte=4"`
	Q5AIUsage             int      `json:"q5_ai_usage" binding:"required,gte=1,lte=5"`
	Q6OrgStage            int      `json:"q6_org_stage" binding:"required,gte=1,lte=5"`
	Q7PersonalRole        int      `json:"q7_personal_role" binding:"required,gte=1,lte=4"`
	Q8PainPoints          []string `json:"q8_pain_points" binding:"required,min=1,max=3,unique,dive,required,max=64"`
	Q9Attitude            int      `json:"q9_attitude" binding:"required,gte=1,lte=5"`
	Q10Constraints        []string `json:"q10_constraints" binding:"omitempty,max=3,unique,dive,required,max=64"`
	CompletionTimeSeconds *int     `json:"completion_time_seconds" binding:"omitempty,gte=0"`
	DeviceType            string   `json:"device_type" binding:"omitempty,max=32"`
	UserAgent             *string  `json:"user_agent" binding:"omitempty,max=512"`
	IPHash                *string  `json:"ip_hash" binding:"omitempty,max=128"`
}

// Submit 保存一份已通过校验的问卷，返回生成的响应ID。
// 客户端未上报指纹时按配置由服务端补算，保证同场次去重约束生效。
func (s *SurveyService) Submit(req *SubmitRequest, clientIP, headerUserAgent string) (string, error) {
	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = "unknown"
	}

	userAgent := req.UserAgent
	if userAgent == nil && headerUserAgent != "" {
		userAgent = &headerUserAgent
	}

	ipHash := req.IPHash
	if ipHash == nil && s.cfg.FingerprintFallback {
		fp := util.Fingerprint(clientIP, headerUserAgent)
		ipHash = &fp
	}

	response := &model.Response{
		SessionID:             req.SessionID,
		Q1Industry:            req.Q1Industry,
		Q1IndustryOther:       req.Q1IndustryOther,
		Q2Role:                req.Q2Role,
		Q2RoleOther:           req.Q2RoleOther,
		Q3DigitalHabit:        req.Q3DigitalHabit,
		Q4AISelfPosition:      req.Q4AISelfPosition,
		Q5AIUsage:             req.Q5AIUsage,
		Q6OrgStage:            req.Q6OrgStage,
		Q7PersonalRole:        req.Q7PersonalRole,
		Q8PainPoints:          datatypes.NewJSONSlice(req.Q8PainPoints),
		Q9Attitude:            req.Q9Attitude,
		Q10Constraints:        datatypes.NewJSONSlice(req.Q10Constraints),
		CompletionTimeSeconds: req.CompletionTimeSeconds,
		DeviceType:            deviceType,
		UserAgent:             userAgent,
		IPHash:                ipHash,
	}

	if err := s.responses.Insert(response); err != nil {
		return "", err
	}

	monitoring.SubmissionCounter.WithLabelValues(req.SessionID).Inc()
	return response.ID, nil
}

// Statistics 优先使用数据库端聚合函数；聚合函数不可用时回退到
// 取全量原始数据在进程内聚合。两条路径输出同一套字段。
// 最近提交时间及距今秒数在两条路径下都会补齐；补不上时省略该字段。
func (s *SurveyService) Statistics(sessionID string) (*model.SessionStatistics, error) {
	stats, err := s.responses.SessionAggregate(sessionID)
	if err != nil {
		if !errors.Is(err, util.ErrAggregateUnavailable) {
			return nil, err
		}

		s.log.Warn("数据库聚合函数不可用，回退到进程内统计",
			zap.String("session_id", sessionID),
			zap.Error(err))
		monitoring.StatsFallbackCounter.Inc()

		responses, ferr := s.responses.FindBySession(sessionID)
		if ferr != nil {
			return nil, ferr
		}
		return Aggregate(sessionID, responses, time.Now().UTC()), nil
	}

	// 数据库端函数不产出最近提交信息，这里单独补上。
	// 聚合结果已经拿到，补充查询失败只损失该字段，不让整次读取失败。
	latest, err := s.responses.LatestCreatedAt(sessionID)
	if err != nil {
		s.log.Warn("查询最近提交时间失败", zap.String("session_id", sessionID), zap.Error(err))
		return stats, nil
	}
	if latest != nil {
		stats.LatestSubmission = &model.LatestSubmission{
			CreatedAt:  *latest,
			SecondsAgo: int64(time.Now().UTC().Sub(*latest).Seconds()),
		}
	}

	return stats, nil
}

// Responses 场次内全部原始问卷，按提交时间倒序
func (s *SurveyService) Responses(sessionID string) ([]model.Response, error) {
	return s.responses.FindBySession(sessionID)
}

// Analyze 同步执行一次AI分析并持久化结果。
// 外部调用成功后保存失败只记日志不上抛：调用方手里已经有分析结果。
func (s *SurveyService) Analyze(sessionID string, useSimplePrompt bool) (*AnalysisReport, error) {
	stats, err := s.Statistics(sessionID)
	if err != nil {
		return nil, err
	}

	if stats.TotalResponses == 0 {
		return nil, util.ErrNoResponses
	}

	report, err := s.analyzer.AnalyzeQuestionnaire(stats, sessionID, useSimplePrompt)
	if err != nil {
		monitoring.AnalysisCounter.WithLabelValues("error").Inc()
		return nil, err
	}
	monitoring.AnalysisCounter.WithLabelValues("ok").Inc()

	if err := s.analyses.Upsert(&model.AnalysisResult{
		SessionID:      sessionID,
		AnalysisText:   report.AnalysisText,
		ModelName:      report.Model,
		TotalResponses: report.TotalResponses,
	}); err != nil {
		s.log.Warn("保存分析结果失败", zap.String("session_id", sessionID), zap.Error(err))
	}

	return report, nil
}

// StoredAnalysis 读取已保存的分析结果；不存在返回 ErrAnalysisNotFound
func (s *SurveyService) StoredAnalysis(sessionID string) (*model.AnalysisResult, error) {
	return s.analyses.FindBySession(sessionID)
}

// DefaultSession 未显式指定场次时使用的默认场次
func (s *SurveyService) DefaultSession() string {
	return s.cfg.DefaultSession
}
