package services

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"keyword_bot/config"
	"keyword_bot/logger"
	"keyword_bot/models"
)

// Recommender 串联 候选 -> 分组 -> 频率 -> 趋势 -> 融合 的流水线，不持有跨调用状态
type Recommender struct {
	sources           CandidateSource
	trends            TrendScorer
	maxResults        int
	compareMaxResults int
	windowDays        int
	now               func() time.Time
}

// NewRecommender 创建推荐器；凭证缺失时立即返回 ErrConfiguration
func NewRecommender(cfg *config.Config, sources CandidateSource, trends TrendScorer) (*Recommender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sources == nil || trends == nil {
		return nil, fmt.Errorf("%w: candidate source and trend scorer are required", ErrConfiguration)
	}
	return &Recommender{
		sources:           sources,
		trends:            trends,
		maxResults:        cfg.Pipeline.MaxResults,
		compareMaxResults: cfg.Pipeline.CompareMaxResults,
		windowDays:        cfg.Pipeline.TrendWindowDays,
		now:               time.Now,
	}, nil
}

// NewNaverRecommender 使用 Naver 各接口客户端组装完整推荐器
func NewNaverRecommender(cfg *config.Config) (*Recommender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	adapter := NewCandidateAdapter(
		NewShoppingClient(cfg),
		NewRelatedSearchClient(cfg),
		NewKeywordPlannerClient(cfg),
		cfg.Brands.Extra,
		cfg.SearchAd.TopN,
	)
	trends := NewTrendFetcher(NewDatalabClient(cfg), TrendOptionsFromConfig(cfg))
	return NewRecommender(cfg, adapter, trends)
}

// Recommend 推荐模式
func (r *Recommender) Recommend(ctx context.Context, query string, maxResults int) (*models.Recommendation, error) {
	if maxResults <= 0 {
		maxResults = r.maxResults
	}
	return r.run(ctx, query, models.ModeRecommend, maxResults)
}

// Compare 比较模式
func (r *Recommender) Compare(ctx context.Context, query string, maxResults int) (*models.Recommendation, error) {
	if maxResults <= 0 {
		maxResults = r.compareMaxResults
	}
	return r.run(ctx, query, models.ModeCompare, maxResults)
}

// TrendKeywords 追加趋势关键词
func (r *Recommender) TrendKeywords(ctx context.Context, query string) ([]string, error) {
	lister, ok := r.sources.(KeywordLister)
	if !ok {
		return nil, fmt.Errorf("%w: candidate source cannot list planner keywords", ErrSourceUnavailable)
	}
	return lister.TrendKeywords(ctx, query)
}

func (r *Recommender) run(ctx context.Context, query string, mode models.RunMode, maxResults int) (*models.Recommendation, error) {
	began := time.Now()
	start := r.now()
	window := models.NewTrendWindow(start, r.windowDays)
	logger.Info("Starting keyword recommendation", "query", query, "mode", mode, "max_results", maxResults,
		"start_date", window.StartDate(), "end_date", window.EndDate())

	set, err := r.sources.FetchCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	raw := set.Raw()
	if mode == models.ModeCompare {
		raw = restrictTo(raw, set.PlannerKeywords)
	}

	groups := Group(raw)
	frequency := ScoreFrequency(groups, raw)

	// brand-contaminated keys are dropped by Fuse anyway; skip their trend requests
	keys := make([]string, 0, len(frequency))
	for _, fs := range frequency {
		if !containsBrand(fs.Keyword, set.Brands) {
			keys = append(keys, fs.Keyword)
		}
	}

	var trend map[string]float64
	if len(keys) > 0 {
		trend = r.trends.FetchTrendScores(ctx, keys, window)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := Fuse(frequency, trend, set.Brands, maxResults)

	rec := &models.Recommendation{
		RunID:       ulid.Make().String(),
		Query:       query,
		Mode:        mode,
		TopCategory: set.TopCategory,
		StartDate:   window.StartDate(),
		EndDate:     window.EndDate(),
		Keywords:    records,
		CreatedAt:   start,
	}
	logger.Info("Keyword recommendation finished",
		"query", query,
		"run_id", rec.RunID,
		"candidates", len(raw),
		"groups", len(groups),
		"trend_scored", len(trend),
		"results", len(records),
		"duration_ms", time.Since(began).Milliseconds())
	return rec, nil
}

// restrictTo 只保留出现在 allowed 中的候选（保留重复出现以计入频率）
func restrictTo(raw, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if set[r] {
			out = append(out, r)
		}
	}
	return out
}
