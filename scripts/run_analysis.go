// 手动触发一次AI分析脚本
//
// 正常情况下分析通过 POST /api/analyze 按需触发。此脚本用于不经过
// HTTP 服务直接跑一次分析，例如批量导入历史问卷后补算报告。
//
// 用法: go run scripts/run_analysis.go [-session 场次标识] [-simple]

package main

import (
	"ai_survey_backend/internal/config"
	"ai_survey_backend/internal/repository"
	"ai_survey_backend/internal/service"
	"ai_survey_backend/pkg/database"
	"ai_survey_backend/pkg/logger"
	"flag"
	"log"

	"go.uber.org/zap"
)

func main() {
	sessionID := flag.String("session", "", "场次标识，缺省使用配置中的默认场次")
	simple := flag.Bool("simple", false, "使用简化提示词")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	analyzer := service.NewAnalyzerService(cfg.AI)
	if !analyzer.Enabled() {
		log.Fatal("AI分析功能未配置，请设置AI_API_KEY")
	}

	svc := service.NewSurveyService(
		repository.NewResponseRepository(db),
		repository.NewAnalysisRepository(db),
		analyzer,
		cfg.Survey,
		logger.Log,
	)

	session := *sessionID
	if session == "" {
		session = svc.DefaultSession()
	}

	log.Printf("开始分析场次 %s ...", session)
	report, err := svc.Analyze(session, *simple)
	if err != nil {
		logger.Log.Fatal("分析失败", zap.String("session_id", session), zap.Error(err))
	}
	log.Printf("完成！模型 %s，样本 %d 份", report.Model, report.TotalResponses)
}
