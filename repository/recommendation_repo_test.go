package repository

import (
	"context"
	"testing"
	"time"

	"keyword_bot/config"
	"keyword_bot/db"
	"keyword_bot/models"
	"keyword_bot/utils"
)

func setupDB(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.DB.Driver = "sqlite"
	cfg.DB.Path = ":memory:"
	if err := db.InitWithConfig(cfg); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
}

func sampleRun(id, query string, at time.Time) *models.Recommendation {
	return &models.Recommendation{
		RunID:       id,
		Query:       query,
		Mode:        models.ModeRecommend,
		TopCategory: "디지털/가전>음향가전",
		StartDate:   "2026-09-14",
		EndDate:     "2026-10-14",
		Keywords: []models.ScoreRecord{
			{Keyword: "무선이어폰", FrequencyScore: 1, TrendScore: 1.5, TotalScore: 2.5},
			{Keyword: "케이스", FrequencyScore: 0.5, TotalScore: 0.5},
		},
		CreatedAt: at,
	}
}

func TestSaveAndGetLatest(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	if err := SaveRecommendation(ctx, sampleRun("01A", "이어폰", base)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveRecommendation(ctx, sampleRun("01B", "이어폰", base.Add(time.Hour))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveRecommendation(ctx, sampleRun("01C", "충전기", base.Add(2*time.Hour))); err != nil {
		t.Fatalf("save: %v", err)
	}

	latest, err := GetLatestRecommendation(ctx, "이어폰")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.RunID != "01B" || latest.Mode != models.ModeRecommend {
		t.Fatalf("latest = %+v", latest)
	}
	if !latest.CreatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("created_at = %v", latest.CreatedAt)
	}
	if len(latest.Keywords) != 2 || latest.Keywords[0].Keyword != "무선이어폰" || latest.Keywords[0].TotalScore != 2.5 {
		t.Fatalf("keywords = %+v", latest.Keywords)
	}

	byID, err := GetRecommendation(ctx, "01C")
	if err != nil || byID.Query != "충전기" {
		t.Fatalf("by id = %+v, %v", byID, err)
	}
}

func TestGetLatestNoRows(t *testing.T) {
	setupDB(t)
	_, err := GetLatestRecommendation(context.Background(), "없음")
	if !utils.IsSQLNoRowsError(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveDuplicateRunID(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	run := sampleRun("01A", "이어폰", time.Now())
	if err := SaveRecommendation(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveRecommendation(ctx, run); err == nil {
		t.Fatalf("duplicate run id should fail")
	}
	if err := SaveRecommendation(ctx, &models.Recommendation{}); err == nil {
		t.Fatalf("missing run id should fail")
	}
}

func TestListRecommendations(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"01A", "01B", "01C", "01D"} {
		q := "이어폰"
		if i == 3 {
			q = "충전기"
		}
		if err := SaveRecommendation(ctx, sampleRun(id, q, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	runs, err := ListRecommendations(ctx, "이어폰", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "01C" || runs[1].RunID != "01B" {
		t.Fatalf("runs = %+v", runs)
	}

	all, err := ListRecommendations(ctx, "", 0)
	if err != nil || len(all) != 4 || all[0].RunID != "01D" {
		t.Fatalf("all = %d, %v", len(all), err)
	}

	n, err := DeleteRecommendationsBefore(ctx, base.Add(90*time.Minute))
	if err != nil || n != 2 {
		t.Fatalf("deleted = %d, %v", n, err)
	}
}

func TestSaveEmptyKeywords(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	run := sampleRun("01A", "이어폰", time.Now())
	run.Keywords = nil
	if err := SaveRecommendation(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := GetLatestRecommendation(ctx, "이어폰")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Keywords == nil || len(got.Keywords) != 0 {
		t.Fatalf("keywords = %#v", got.Keywords)
	}
}
