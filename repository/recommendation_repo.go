package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"keyword_bot/db"
	"keyword_bot/models"
)

// DefaultHistoryLimit 历史查询默认条数
const DefaultHistoryLimit = 20

// MaxHistoryLimit 历史查询条数上限
const MaxHistoryLimit = 200

const selectRunColumns = `SELECT run_id, query, mode, top_category, start_date, end_date, records, created_at FROM keyword_runs`

type rowScanner interface {
	Scan(dest ...any) error
}

// SaveRecommendation 保存一次推荐运行；run_id 重复时返回数据库错误
func SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	if rec == nil || rec.RunID == "" {
		return fmt.Errorf("save recommendation: run id is required")
	}
	records := rec.Keywords
	if records == nil {
		records = []models.ScoreRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = db.DB.ExecContext(ctx, `
		INSERT INTO keyword_runs (run_id, query, mode, top_category, start_date, end_date, records, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID, strings.TrimSpace(rec.Query), string(rec.Mode), rec.TopCategory,
		rec.StartDate, rec.EndDate, string(b), createdAt.UnixMilli())
	return err
}

// GetLatestRecommendation 查询某个检索词最近一次运行；没有记录时返回 sql.ErrNoRows
func GetLatestRecommendation(ctx context.Context, query string) (*models.Recommendation, error) {
	row := db.DB.QueryRowContext(ctx, selectRunColumns+`
		WHERE query = ?
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1
	`, strings.TrimSpace(query))
	return scanRecommendation(row)
}

// GetRecommendation 按运行 ID 查询
func GetRecommendation(ctx context.Context, runID string) (*models.Recommendation, error) {
	row := db.DB.QueryRowContext(ctx, selectRunColumns+` WHERE run_id = ?`, runID)
	return scanRecommendation(row)
}

// ListRecommendations 按时间倒序列出历史；query 为空时列出所有检索词
func ListRecommendations(ctx context.Context, query string, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	q := selectRunColumns
	args := []any{}
	if query = strings.TrimSpace(query); query != "" {
		q += ` WHERE query = ?`
		args = append(args, query)
	}
	q += ` ORDER BY created_at DESC, run_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// DeleteRecommendationsBefore 删除早于 cutoff 的运行记录，返回删除条数
func DeleteRecommendationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.DB.ExecContext(ctx, `DELETE FROM keyword_runs WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanRecommendation(row rowScanner) (*models.Recommendation, error) {
	var (
		rec       models.Recommendation
		mode      string
		records   string
		createdAt int64
	)
	if err := row.Scan(&rec.RunID, &rec.Query, &mode, &rec.TopCategory,
		&rec.StartDate, &rec.EndDate, &records, &createdAt); err != nil {
		return nil, err
	}
	rec.Mode = models.RunMode(mode)
	rec.CreatedAt = time.UnixMilli(createdAt)
	if err := json.Unmarshal([]byte(records), &rec.Keywords); err != nil {
		return nil, fmt.Errorf("decode records for run %s: %w", rec.RunID, err)
	}
	return &rec, nil
}
