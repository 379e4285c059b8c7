package service

import (
	"ai_survey_backend/internal/model"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func readCSV(b []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	return r.ReadAll()
}

func TestBuildResponsesCSV(t *testing.T) {
	now := time.Now()
	r1 := makeResponse(now)
	r1.ID = "id-1"
	r1.Q8PainPoints = datatypes.NewJSONSlice([]string{"research_reading", "doc_writing"})
	r1.Q10Constraints = datatypes.NewJSONSlice([]string{"data_security"})
	r1.CompletionTimeSeconds = intPtr(138)

	r2 := makeResponse(now)
	r2.ID = "id-2"

	data, err := BuildResponsesCSV([]model.Response{r1, r2})
	if err != nil {
		t.Fatalf("build csv: %v", err)
	}

	recs, err := readCSV(data)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 rows, got %d", len(recs))
	}
	if got := strings.Join(recs[0][:3], ","); got != "id,created_at,session_id" {
		t.Fatalf("bad header start: %s", got)
	}
	// 多选题扁平化为逗号拼接字符串
	if recs[1][12] != "research_reading,doc_writing" {
		t.Fatalf("bad pain points cell: %q", recs[1][12])
	}
	if recs[1][14] != "data_security" {
		t.Fatalf("bad constraints cell: %q", recs[1][14])
	}
	if recs[1][15] != "138" {
		t.Fatalf("bad completion time cell: %q", recs[1][15])
	}
	// 未记录耗时导出为空串
	if recs[2][15] != "" {
		t.Fatalf("expected empty completion time, got %q", recs[2][15])
	}
}
