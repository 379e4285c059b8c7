package database

import (
	"ai_survey_backend/internal/config"
	"ai_survey_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// 唯一键冲突需要翻译成 gorm.ErrDuplicatedKey，供上层识别重复提交
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		err = db.AutoMigrate(
			&model.Response{},
			&model.AnalysisResult{},
		)

		if err != nil {
			return nil, err
		}

		if err := migrateAggregateFunction(db); err != nil {
			return nil, err
		}

		log.Println("Database migration completed")
	}

	return db, nil
}

// migrateAggregateFunction 重建数据库端统计函数。
// 函数输出与进程内回退聚合同一套字段，键名对齐 model.SessionStatistics 的 json 标签。
func migrateAggregateFunction(db *gorm.DB) error {
	if err := db.Exec(`DROP FUNCTION IF EXISTS session_statistics`).Error; err != nil {
		return fmt.Errorf("drop session_statistics: %w", err)
	}
	if err := db.Exec(sessionStatisticsFn).Error; err != nil {
		return fmt.Errorf("create session_statistics: %w", err)
	}
	return nil
}

const sessionStatisticsFn = `
CREATE FUNCTION session_statistics(p_session_id VARCHAR(64))
RETURNS JSON
READS SQL DATA
RETURN JSON_OBJECT(
	'session_id', p_session_id,
	'total_responses', (
		SELECT COUNT(*) FROM responses
		WHERE session_id = p_session_id AND deleted_at IS NULL
	),
	'avg_completion_seconds', (
		SELECT FLOOR(AVG(completion_time_seconds)) FROM responses
		WHERE session_id = p_session_id AND deleted_at IS NULL
	),
	'industry_distribution', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT q1_industry AS k, COUNT(*) AS c FROM responses
			WHERE session_id = p_session_id AND deleted_at IS NULL
			GROUP BY q1_industry
		) AS t
	),
	'role_distribution', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT q2_role AS k, COUNT(*) AS c FROM responses
			WHERE session_id = p_session_id AND deleted_at IS NULL
			GROUP BY q2_role
		) AS t
	),
	'digital_habit_distribution', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT CAST(q3_digital_habit AS CHAR) AS k, COUNT(*) AS c FROM responses
			WHERE session_id = p_session_id AND deleted_at IS NULL
			GROUP BY q3_digital_habit
		) AS t
	),
	'ai_self_position_distribution', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT CAST(q4_ai_self_position AS CHAR) AS k, COUNT(*) AS c FROM responses
			WHERE session_id = p_session_id AND deleted_at IS NULL
			GROUP BY q4_ai_self_position
		) AS t
	),
	'ai_usage_distribution', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT CAST(q5_ai_usage AS CHAR) AS k, COUNT(*) AS c FROM responses
			WHERE session_id = p_session_id AND deleted_at IS NULL
			GROUP BY q5_ai_usage
		) AS t
	),
	'org_stage_distribution', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT CAST(q6_org_stage AS CHAR) AS k, COUNT(*) AS c FROM responses
			WHERE session_id = p_session_id AND deleted_at IS NULL
			GROUP BY q6_org_stage
		) AS t
	),
	'personal_role_distribution', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT CAST(q7_personal_role AS CHAR) AS k, COUNT(*) AS c FROM responses
			WHERE session_id = p_session_id AND deleted_at IS NULL
			GROUP BY q7_personal_role
		) AS t
	),
	'attitude_distribution', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT CAST(q9_attitude AS CHAR) AS k, COUNT(*) AS c FROM responses
			WHERE session_id = p_session_id AND deleted_at IS NULL
			GROUP BY q9_attitude
		) AS t
	),
	'pain_points_stats', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT jt.v AS k, COUNT(*) AS c
			FROM responses r,
			JSON_TABLE(r.q8_pain_points, '$[*]' COLUMNS(v VARCHAR(64) PATH '$')) AS jt
			WHERE r.session_id = p_session_id AND r.deleted_at IS NULL
			GROUP BY jt.v
		) AS t
	),
	'constraints_stats', (
		SELECT JSON_OBJECTAGG(k, c) FROM (
			SELECT jt.v AS k, COUNT(*) AS c
			FROM responses r,
			JSON_TABLE(r.q10_constraints, '$[*]' COLUMNS(v VARCHAR(64) PATH '$')) AS jt
			WHERE r.session_id = p_session_id AND r.deleted_at IS NULL
				AND r.q10_constraints IS NOT NULL
			GROUP BY jt.v
		) AS t
	)
)`
