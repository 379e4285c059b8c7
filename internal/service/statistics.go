package service

import (
	"ai_survey_backend/internal/model"
	"strconv"
	"time"
)

// Aggregate 进程内统计（数据库聚合函数不可用时的回退路径）。
// 对同一批数据，输出必须与数据库端 session_statistics 函数一致：
//   - 平均耗时只统计记录了耗时的问卷，一份都没有则为nil
//   - 分布表只包含出现过的取值
//   - 多选题每份问卷对其选中的每个桶各计1
//
// now 用于计算最近提交距今秒数，由调用方传入便于测试。
func Aggregate(sessionID string, responses []model.Response, now time.Time) *model.SessionStatistics {
	stats := &model.SessionStatistics{
		SessionID:                  sessionID,
		TotalResponses:             len(responses),
		IndustryDistribution:       map[string]int{},
		RoleDistribution:           map[string]int{},
		DigitalHabitDistribution:   map[string]int{},
		AISelfPositionDistribution: map[string]int{},
		AIUsageDistribution:        map[string]int{},
		OrgStageDistribution:       map[string]int{},
		PersonalRoleDistribution:   map[string]int{},
		AttitudeDistribution:       map[string]int{},
		PainPointsStats:            map[string]int{},
		ConstraintsStats:           map[string]int{},
	}

	if len(responses) == 0 {
		return stats
	}

	var durationSum, durationCount int
	var latest *model.Response

	for i := range responses {
		r := &responses[i]

		if r.CompletionTimeSeconds != nil {
			durationSum += *r.CompletionTimeSeconds
			durationCount++
		}

		if r.Q1Industry != "" {
			stats.IndustryDistribution[r.Q1Industry]++
		}
		if r.Q2Role != "" {
			stats.RoleDistribution[r.Q2Role]++
		}
		stats.DigitalHabitDistribution[strconv.Itoa(r.Q3DigitalHabit)]++
		stats.AISelfPositionDistribution[strconv.Itoa(r.Q4AISelfPosition)]++
		stats.AIUsageDistribution[strconv.Itoa(r.Q5AIUsage)]++
		stats.OrgStageDistribution[strconv.Itoa(r.Q6OrgStage)]++
		stats.PersonalRoleDistribution[strconv.Itoa(r.Q7PersonalRole)]++
		stats.AttitudeDistribution[strconv.Itoa(r.Q9Attitude)]++

		for _, p := range r.Q8PainPoints {
			stats.PainPointsStats[p]++
		}
		for _, c := range r.Q10Constraints {
			stats.ConstraintsStats[c]++
		}

		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}

	// 整数除法舍去小数，与数据库端 FLOOR(AVG(...)) 一致
	if durationCount > 0 {
		avg := durationSum / durationCount
		stats.AvgCompletionSeconds = &avg
	}

	if latest != nil {
		stats.LatestSubmission = &model.LatestSubmission{
			CreatedAt:  latest.CreatedAt,
			SecondsAgo: int64(now.Sub(latest.CreatedAt).Seconds()),
		}
	}

	return stats
}
