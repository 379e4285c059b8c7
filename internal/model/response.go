package model

import (
	"gorm.io/datatypes"
)

// Response 一份已提交的问卷
// 提交后不再修改或删除；同一指纹在同一场次只允许一份（由唯一索引保证）。
// swagger:model
type Response struct {
	UUIDBase
	SessionID string `gorm:"type:varchar(64);index;uniqueIndex:unique_submission_per_ip,priority:2;comment:场次标识" json:"session_id"`

	// Q1: 机构类型
	Q1Industry      string  `gorm:"type:varchar(64);comment:机构类型" json:"q1_industry"`
	Q1IndustryOther *string `gorm:"type:varchar(255);comment:机构类型-其他" json:"q1_industry_other"`

	// Q2: 工作方向
	Q2Role      string  `gorm:"type:varchar(64);comment:工作方向" json:"q2_role"`
	Q2RoleOther *string `gorm:"type:varchar(255);comment:工作方向-其他" json:"q2_role_other"`

	// Q3-Q7, Q9: 单选题（整数，取值范围在提交校验时约束）
	Q3DigitalHabit   int `gorm:"comment:数字工具习惯 1-4" json:"q3_digital_habit"`
	Q4AISelfPosition int `gorm:"comment:AI应用自我定位 1-4" json:"q4_ai_self_position"`
	Q5AIUsage        int `gorm:"comment:AI工具使用情况 1-5" json:"q5_ai_usage"`
	Q6OrgStage       int `gorm:"comment:机构AI阶段 1-5" json:"q6_org_stage"`
	Q7PersonalRole   int `gorm:"comment:个人项目角色 1-4" json:"q7_personal_role"`
	Q9Attitude       int `gorm:"comment:对AI的态度 1-5" json:"q9_attitude"`

	// Q8: 痛点场景（必选1-3项）；Q10: 推进约束（可选，最多3项）
	Q8PainPoints   datatypes.JSONSlice[string] `gorm:"type:json;comment:痛点场景" json:"q8_pain_points"`
	Q10Constraints datatypes.JSONSlice[string] `gorm:"type:json;comment:推进约束" json:"q10_constraints"`

	// 元数据
	CompletionTimeSeconds *int    `gorm:"comment:填写耗时（秒）" json:"completion_time_seconds"`
	DeviceType            string  `gorm:"type:varchar(32);default:unknown;comment:设备类型" json:"device_type"`
	UserAgent             *string `gorm:"type:varchar(512);comment:浏览器UA" json:"user_agent"`
	IPHash                *string `gorm:"type:varchar(128);uniqueIndex:unique_submission_per_ip,priority:1;comment:IP/指纹哈希" json:"ip_hash"`
}

func (Response) TableName() string {
	return "responses"
}
