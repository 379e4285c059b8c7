package repository

import (
	"ai_survey_backend/internal/model"
	"ai_survey_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

// Insert 写入一份问卷，返回生成的ID。
// 唯一索引 unique_submission_per_ip 冲突翻译为 ErrDuplicateSubmission。
func (r *ResponseRepository) Insert(resp *model.Response) error {
	if err := r.DB.Create(resp).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return util.ErrDuplicateSubmission
		}
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// FindBySession 按提交时间倒序返回场次内全部问卷；没有数据时返回空切片。
func (r *ResponseRepository) FindBySession(sessionID string) ([]model.Response, error) {
	var responses []model.Response
	err := r.DB.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	return responses, nil
}

// LatestCreatedAt 场次内最近一次提交时间；没有数据时返回nil。
func (r *ResponseRepository) LatestCreatedAt(sessionID string) (*time.Time, error) {
	var resp model.Response
	err := r.DB.Select("created_at").
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest submission: %w", err)
	}
	return &resp.CreatedAt, nil
}

// SessionAggregate 调用数据库端聚合函数。
// 任何失败（函数缺失、SQL错误、返回为空、JSON不可解析）都归一为
// ErrAggregateUnavailable，由上层决定回退到进程内聚合。
func (r *ResponseRepository) SessionAggregate(sessionID string) (*model.SessionStatistics, error) {
	var doc []byte
	row := r.DB.Raw("SELECT session_statistics(?)", sessionID).Row()
	if err := row.Scan(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAggregateUnavailable, err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: empty result", util.ErrAggregateUnavailable)
	}

	var stats model.SessionStatistics
	if err := json.Unmarshal(doc, &stats); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAggregateUnavailable, err)
	}
	stats.SessionID = sessionID
	return &stats, nil
}
