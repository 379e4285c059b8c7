package controller

import (
	"ai_survey_backend/internal/config"
	"ai_survey_backend/internal/model"
	"ai_survey_backend/internal/service"
	"ai_survey_backend/internal/util"
	"ai_survey_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

type fakeResponseStore struct {
	rows      []model.Response
	inserted  []*model.Response
	insertErr error
}

func (s *fakeResponseStore) Insert(r *model.Response) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	r.ID = "generated-id"
	s.inserted = append(s.inserted, r)
	return nil
}

func (s *fakeResponseStore) FindBySession(sessionID string) ([]model.Response, error) {
	return s.rows, nil
}

func (s *fakeResponseStore) LatestCreatedAt(sessionID string) (*time.Time, error) {
	return nil, nil
}

func (s *fakeResponseStore) SessionAggregate(sessionID string) (*model.SessionStatistics, error) {
	return &model.SessionStatistics{SessionID: sessionID, TotalResponses: len(s.rows)}, nil
}

type fakeAnalysisStore struct {
	saved map[string]*model.AnalysisResult
}

func (s *fakeAnalysisStore) Upsert(result *model.AnalysisResult) error {
	if s.saved == nil {
		s.saved = map[string]*model.AnalysisResult{}
	}
	s.saved[result.SessionID] = result
	return nil
}

func (s *fakeAnalysisStore) FindBySession(sessionID string) (*model.AnalysisResult, error) {
	if r, ok := s.saved[sessionID]; ok {
		return r, nil
	}
	return nil, util.ErrAnalysisNotFound
}

type fakeAnalyzer struct {
	report *service.AnalysisReport
	err    error
}

func (f *fakeAnalyzer) AnalyzeQuestionnaire(stats *model.SessionStatistics, sessionID string, simple bool) (*service.AnalysisReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newTestRouter(responses *fakeResponseStore, analyses *fakeAnalysisStore, analyzer service.QuestionnaireAnalyzer, aiCfg config.AIConfig) *gin.Engine {
	cfg := config.SurveyConfig{DefaultSession: "S1", FingerprintFallback: true}
	svc := service.NewSurveyService(responses, analyses, analyzer, cfg, zap.NewNop())
	survey := NewSurveyController(svc, nil)
	analysis := NewAnalysisController(svc, service.NewAnalyzerService(aiCfg))

	r := gin.New()
	api := r.Group("/api")
	api.POST("/submit", survey.Submit)
	api.GET("/stats", survey.Stats)
	api.GET("/export", survey.Export)
	api.POST("/analyze", analysis.Analyze)
	api.GET("/analyze/:session_id", analysis.GetAnalysis)
	api.GET("/models", analysis.ListModels)
	return r
}

func validSubmitBody() map[string]interface{} {
	return map[string]interface{}{
		"session_id":          "S1",
		"q1_industry":         "bank",
		"q2_role":             "investment",
		"q3_digital_habit":    3,
		"q4_ai_self_position": 2,
		"q5_ai_usage":         3,
		"q6_org_stage":        2,
		"q7_personal_role":    2,
		"q8_pain_points":      []string{"research_reading", "meeting_notes"},
		"q9_attitude":         2,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitCreated(t *testing.T) {
	store := &fakeResponseStore{}
	r := newTestRouter(store, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodPost, "/api/submit", validSubmitBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp util.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok || data["id"] != "generated-id" {
		t.Fatalf("expected response id, got %v", resp.Data)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(store.inserted))
	}
}

func TestSubmitRejectsTooManyPainPoints(t *testing.T) {
	store := &fakeResponseStore{}
	r := newTestRouter(store, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	body := validSubmitBody()
	body["q8_pain_points"] = []string{"a", "b", "c", "d"}
	w := doJSON(t, r, http.MethodPost, "/api/submit", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("invalid submission must not be stored")
	}
}

func TestSubmitRejectsTooManyConstraints(t *testing.T) {
	store := &fakeResponseStore{}
	r := newTestRouter(store, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	body := validSubmitBody()
	body["q10_constraints"] = []string{"a", "b", "c", "d"}
	w := doJSON(t, r, http.MethodPost, "/api/submit", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("invalid submission must not be stored")
	}
}

func TestSubmitRejectsDuplicatePainPoints(t *testing.T) {
	store := &fakeResponseStore{}
	r := newTestRouter(store, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	body := validSubmitBody()
	body["q8_pain_points"] = []string{"research_reading", "research_reading"}
	w := doJSON(t, r, http.MethodPost, "/api/submit", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("invalid submission must not be stored")
	}
}

func TestSubmitRejectsOutOfRangeScore(t *testing.T) {
	store := &fakeResponseStore{}
	r := newTestRouter(store, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	body := validSubmitBody()
	body["q3_digital_habit"] = 5
	w := doJSON(t, r, http.MethodPost, "/api/submit", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("invalid submission must not be stored")
	}
}

func TestSubmitDuplicateConflict(t *testing.T) {
	store := &fakeResponseStore{insertErr: util.ErrDuplicateSubmission}
	r := newTestRouter(store, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodPost, "/api/submit", validSubmitBody())
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStatsDefaultsSession(t *testing.T) {
	r := newTestRouter(&fakeResponseStore{}, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"session_id":"S1"`) {
		t.Fatalf("expected configured default session: %s", w.Body.String())
	}
}

func TestStatsReturnsAggregate(t *testing.T) {
	store := &fakeResponseStore{rows: make([]model.Response, 3)}
	r := newTestRouter(store, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/stats?session_id=S1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"total_responses":3`) {
		t.Fatalf("expected total_responses in body: %s", w.Body.String())
	}
}

func TestExportEmptySession(t *testing.T) {
	r := newTestRouter(&fakeResponseStore{}, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/export?session_id=S1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	row := model.Response{
		SessionID:      "S1",
		Q1Industry:     "bank",
		Q2Role:         "investment",
		Q8PainPoints:   datatypes.NewJSONSlice([]string{"research_reading"}),
		Q10Constraints: datatypes.NewJSONSlice([]string{"data_security"}),
		DeviceType:     "mobile",
	}
	row.CreatedAt = time.Date(2025, 11, 14, 10, 0, 0, 0, time.UTC)
	r := newTestRouter(&fakeResponseStore{rows: []model.Response{row}}, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/export?session_id=S1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "questionnaire_S1.csv") {
		t.Fatalf("unexpected content disposition: %q", cd)
	}
	if !strings.Contains(w.Body.String(), "research_reading") {
		t.Fatalf("expected row data in CSV body")
	}
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	r := newTestRouter(&fakeResponseStore{}, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodPost, "/api/analyze", map[string]interface{}{})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestAnalyzeUsesDefaultSession(t *testing.T) {
	store := &fakeResponseStore{rows: make([]model.Response, 2)}
	analyzer := &fakeAnalyzer{report: &service.AnalysisReport{
		SessionID:      "S1",
		AnalysisText:   `{"executive_summary":"ok"}`,
		Model:          "test/model",
		TotalResponses: 2,
	}}
	r := newTestRouter(store, &fakeAnalysisStore{}, analyzer, config.AIConfig{APIKey: "k", Model: "test/model"})

	w := doJSON(t, r, http.MethodPost, "/api/analyze", map[string]interface{}{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"session_id":"S1"`) {
		t.Fatalf("expected default session in report: %s", w.Body.String())
	}
}

func TestAnalyzeNoData(t *testing.T) {
	r := newTestRouter(&fakeResponseStore{}, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{APIKey: "k"})

	w := doJSON(t, r, http.MethodPost, "/api/analyze", map[string]interface{}{"session_id": "S1"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	store := &fakeResponseStore{rows: make([]model.Response, 1)}
	analyzer := &fakeAnalyzer{err: fmt.Errorf("%w: 上游返回 500", util.ErrExternalService)}
	r := newTestRouter(store, &fakeAnalysisStore{}, analyzer, config.AIConfig{APIKey: "k"})

	w := doJSON(t, r, http.MethodPost, "/api/analyze", map[string]interface{}{"session_id": "S1"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	r := newTestRouter(&fakeResponseStore{}, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/analyze/S1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetAnalysisFound(t *testing.T) {
	analyses := &fakeAnalysisStore{saved: map[string]*model.AnalysisResult{
		"S1": {SessionID: "S1", AnalysisText: `{"k":"v"}`, ModelName: "m", TotalResponses: 4},
	}}
	r := newTestRouter(&fakeResponseStore{}, analyses, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/analyze/S1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"total_responses":4`) {
		t.Fatalf("expected stored result fields: %s", w.Body.String())
	}
}

func TestListModelsWithoutAPIKey(t *testing.T) {
	// 模型列表是静态数据，分析功能未配置时也照常返回
	r := newTestRouter(&fakeResponseStore{}, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "openai/gpt-4o") {
		t.Fatalf("expected model catalogue entries: %s", w.Body.String())
	}
}

func TestListModels(t *testing.T) {
	r := newTestRouter(&fakeResponseStore{}, &fakeAnalysisStore{}, &fakeAnalyzer{}, config.AIConfig{APIKey: "k"})

	w := doJSON(t, r, http.MethodGet, "/api/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "openai/gpt-4o") {
		t.Fatalf("expected model catalogue entries: %s", w.Body.String())
	}
}
