package model

// AnalysisResult 每个场次保存一份AI分析报告，重复分析覆盖旧结果
// swagger:model
type AnalysisResult struct {
	UUIDBase
	SessionID      string `gorm:"type:varchar(64);uniqueIndex;comment:场次标识" json:"session_id"`
	AnalysisText   string `gorm:"type:longtext;comment:模型返回的原始JSON文本" json:"analysis_text"`
	ModelName      string `gorm:"type:varchar(128);comment:使用的模型" json:"model_name"`
	TotalResponses int    `gorm:"comment:分析时的问卷数量" json:"total_responses"`
}

func (AnalysisResult) TableName() string {
	return "analysis_results"
}
