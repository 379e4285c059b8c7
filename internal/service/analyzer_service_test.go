package service

import (
	"ai_survey_backend/internal/config"
	"ai_survey_backend/internal/model"
	"ai_survey_backend/internal/util"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testStats() *model.SessionStatistics {
	return &model.SessionStatistics{
		SessionID:            "S1",
		TotalResponses:       20,
		IndustryDistribution: map[string]int{"bank": 12, "fund": 8},
		AttitudeDistribution: map[string]int{"1": 5, "2": 15},
		PainPointsStats:      map[string]int{"research_reading": 10},
	}
}

func newTestAnalyzer(baseURL string) *AnalyzerService {
	return NewAnalyzerService(config.AIConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Model:          "test/model",
		TimeoutSeconds: 5 * time.Second,
	})
}

func completionBody(content string) string {
	body := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func TestAnalyzeQuestionnaireParsesJSONReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("bad auth header: %s", got)
		}
		w.Write([]byte(completionBody(`{"audience_summary":"偏保守的银行背景受众"}`)))
	}))
	defer ts.Close()

	report, err := newTestAnalyzer(ts.URL).AnalyzeQuestionnaire(testStats(), "S1", true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Analysis["audience_summary"] != "偏保守的银行背景受众" {
		t.Fatalf("unexpected analysis: %+v", report.Analysis)
	}
	if report.TotalResponses != 20 {
		t.Fatalf("expected 20 responses, got %d", report.TotalResponses)
	}
	if report.Model != "test/model" {
		t.Fatalf("unexpected model: %s", report.Model)
	}
}

func TestAnalyzeQuestionnaireWrapsNonJSONReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("这不是JSON，只是一段文字")))
	}))
	defer ts.Close()

	report, err := newTestAnalyzer(ts.URL).AnalyzeQuestionnaire(testStats(), "S1", false)
	if err != nil {
		t.Fatalf("analyze must not fail on malformed model output: %v", err)
	}
	if report.Analysis["raw_text"] != "这不是JSON，只是一段文字" {
		t.Fatalf("raw text not preserved: %+v", report.Analysis)
	}
	if report.AnalysisText != "这不是JSON，只是一段文字" {
		t.Fatalf("analysis text not preserved: %q", report.AnalysisText)
	}
}

func TestAnalyzeQuestionnaireUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := newTestAnalyzer(ts.URL).AnalyzeQuestionnaire(testStats(), "S1", true)
	if !errors.Is(err, util.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestAnalyzeQuestionnaireMissingChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	_, err := newTestAnalyzer(ts.URL).AnalyzeQuestionnaire(testStats(), "S1", true)
	if !errors.Is(err, util.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestAnalyzerEnabled(t *testing.T) {
	if NewAnalyzerService(config.AIConfig{}).Enabled() {
		t.Fatalf("analyzer without api key must be disabled")
	}
	if !newTestAnalyzer("http://example.com").Enabled() {
		t.Fatalf("analyzer with api key must be enabled")
	}
}
