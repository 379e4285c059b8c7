package repository

import (
	"ai_survey_backend/internal/model"
	"ai_survey_backend/internal/util"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalysisRepository struct {
	DB *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{DB: db}
}

// Upsert 以 session_id 为键保存分析结果，重复分析覆盖旧记录。
func (r *AnalysisRepository) Upsert(result *model.AnalysisResult) error {
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"analysis_text", "model_name", "total_responses", "updated_at"}),
	}).Create(result).Error
	if err != nil {
		return fmt.Errorf("upsert analysis result: %w", err)
	}
	return nil
}

// FindBySession 读取场次的分析结果；不存在返回 ErrAnalysisNotFound，
// 与真实的后端故障区分开。
func (r *AnalysisRepository) FindBySession(sessionID string) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	err := r.DB.Where("session_id = ?", sessionID).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis result: %w", err)
	}
	return &result, nil
}
