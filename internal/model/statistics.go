package model

import "time"

// LatestSubmission 最近一次提交及其距今秒数（读取时计算，不落库）
type LatestSubmission struct {
	CreatedAt  time.Time `json:"created_at"`
	SecondsAgo int64     `json:"seconds_ago"`
}

// SessionStatistics 一个场次的统计快照，每次读取重新计算，不做缓存。
// 数据库端聚合函数与进程内回退聚合输出同一套字段。
// 分布表只包含出现过的取值；单选题的键是其十进制字符串。
type SessionStatistics struct {
	SessionID            string            `json:"session_id"`
	TotalResponses       int               `json:"total_responses"`
	AvgCompletionSeconds *int              `json:"avg_completion_seconds"`
	LatestSubmission     *LatestSubmission `json:"latest_submission"`

	IndustryDistribution       map[string]int `json:"industry_distribution"`
	RoleDistribution           map[string]int `json:"role_distribution"`
	DigitalHabitDistribution   map[string]int `json:"digital_habit_distribution"`
	AISelfPositionDistribution map[string]int `json:"ai_self_position_distribution"`
	AIUsageDistribution        map[string]int `json:"ai_usage_distribution"`
	OrgStageDistribution       map[string]int `json:"org_stage_distribution"`
	PersonalRoleDistribution   map[string]int `json:"personal_role_distribution"`
	AttitudeDistribution       map[string]int `json:"attitude_distribution"`
	PainPointsStats            map[string]int `json:"pain_points_stats"`
	ConstraintsStats           map[string]int `json:"constraints_stats"`
}
