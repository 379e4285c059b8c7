package service

import (
	"ai_survey_backend/internal/config"
	"ai_survey_backend/internal/model"
	"ai_survey_backend/internal/util"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AnalyzerService 通过OpenAI兼容接口调用大模型分析问卷。
// 无状态，不重试，一次分析请求至多一次外部调用。
type AnalyzerService struct {
	config config.AIConfig
	client *http.Client
}

func NewAnalyzerService(cfg config.AIConfig) *AnalyzerService {
	return &AnalyzerService{
		config: cfg,
		client: &http.Client{Timeout: cfg.TimeoutSeconds},
	}
}

// Enabled 未配置API Key时分析功能整体不可用
func (s *AnalyzerService) Enabled() bool {
	return s.config.APIKey != ""
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []AIChatMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat responseFormat  `json:"response_format"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnalysisReport 一次分析调用的结果
type AnalysisReport struct {
	SessionID      string                 `json:"session_id"`
	Analysis       map[string]interface{} `json:"analysis"`
	AnalysisText   string                 `json:"analysis_text"`
	Model          string                 `json:"model"`
	TotalResponses int                    `json:"total_responses"`
}

// ModelInfo 可用模型的静态描述
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
	Recommended bool   `json:"recommended"`
}

// AnalyzeQuestionnaire 渲染提示词、调用补全接口并解析JSON回复。
// 模型返回非JSON文本时不算失败，原文放入 raw_text 字段。
func (s *AnalyzerService) AnalyzeQuestionnaire(stats *model.SessionStatistics, sessionID string, useSimplePrompt bool) (*AnalysisReport, error) {
	var userPrompt string
	if useSimplePrompt {
		userPrompt = SimpleAnalysisPrompt(stats)
	} else {
		userPrompt = AnalysisPrompt(stats)
	}

	analysisText, err := s.chatCompletion(AnalysisSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var analysis map[string]interface{}
	if err := json.Unmarshal([]byte(analysisText), &analysis); err != nil {
		analysis = map[string]interface{}{"raw_text": analysisText}
	}

	return &AnalysisReport{
		SessionID:      sessionID,
		Analysis:       analysis,
		AnalysisText:   analysisText,
		Model:          s.config.Model,
		TotalResponses: stats.TotalResponses,
	}, nil
}

func (s *AnalyzerService) chatCompletion(systemPrompt, userPrompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.7,
		MaxTokens:      4000,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", util.ErrExternalService, resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: 返回体不是有效JSON: %v", util.ErrExternalService, err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: 返回格式错误: %s", util.ErrExternalService, string(body))
	}

	return result.Choices[0].Message.Content, nil
}

// AvailableModels 支持的模型列表（静态描述数据）
func (s *AnalyzerService) AvailableModels() []ModelInfo {
	return []ModelInfo{
		{
			ID:          "openai/gpt-5.1",
			Name:        "gpt-5.1",
			Provider:    "openai",
			Description: "高质量分析，推理能力强",
			Recommended: true,
		},
		{
			ID:          "openai/gpt-4-turbo",
			Name:        "GPT-4 Turbo",
			Provider:    "OpenAI",
			Description: "强大的通用能力",
			Recommended: true,
		},
		{
			ID:          "anthropic/claude-3-opus",
			Name:        "Claude 3 Opus",
			Provider:    "Anthropic",
			Description: "最强分析能力（较贵）",
			Recommended: false,
		},
		{
			ID:          "openai/gpt-4o",
			Name:        "GPT-4o",
			Provider:    "OpenAI",
			Description: "最新的GPT-4优化版本",
			Recommended: true,
		},
		{
			ID:          "google/gemini-pro-1.5",
			Name:        "Gemini Pro 1.5",
			Provider:    "Google",
			Description: "长上下文支持",
			Recommended: false,
		},
		{
			ID:          "qwen/qwen-2.5-72b-instruct",
			Name:        "Qwen 2.5 72B",
			Provider:    "Alibaba",
			Description: "中文优化，性价比高",
			Recommended: true,
		},
		{
			ID:          "deepseek/deepseek-chat",
			Name:        "DeepSeek Chat",
			Provider:    "DeepSeek",
			Description: "性价比极高，中文友好",
			Recommended: true,
		},
	}
}
