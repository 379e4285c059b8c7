package service

import (
	"ai_survey_backend/internal/model"
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"
)

var exportHeader = []string{
	"id", "created_at", "session_id",
	"q1_industry", "q1_industry_other",
	"q2_role", "q2_role_other",
	"q3_digital_habit", "q4_ai_self_position",
	"q5_ai_usage", "q6_org_stage", "q7_personal_role",
	"q8_pain_points", "q9_attitude", "q10_constraints",
	"completion_time_seconds", "device_type",
}

// BuildResponsesCSV 把原始问卷渲染成CSV，多选题扁平化为逗号拼接字符串
func BuildResponsesCSV(responses []model.Response) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	for i := range responses {
		r := &responses[i]

		completionTime := ""
		if r.CompletionTimeSeconds != nil {
			completionTime = strconv.Itoa(*r.CompletionTimeSeconds)
		}

		record := []string{
			r.ID,
			r.CreatedAt.Format(time.RFC3339),
			r.SessionID,
			r.Q1Industry,
			deref(r.Q1IndustryOther),
			r.Q2Role,
			deref(r.Q2RoleOther),
			strconv.Itoa(r.Q3DigitalHabit),
			strconv.Itoa(r.Q4AISelfPosition),
			strconv.Itoa(r.Q5AIUsage),
			strconv.Itoa(r.Q6OrgStage),
			strconv.Itoa(r.Q7PersonalRole),
			strings.Join(r.Q8PainPoints, ","),
			strconv.Itoa(r.Q9Attitude),
			strings.Join(r.Q10Constraints, ","),
			completionTime,
			r.DeviceType,
		}

		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
