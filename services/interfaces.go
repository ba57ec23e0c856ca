package services

import (
	"context"

	"keyword_bot/models"
)

// ShoppingSearcher 购物搜索接口
type ShoppingSearcher interface {
	Search(ctx context.Context, query string) ([]models.ShoppingItem, error)
}

// RelatedSearcher 相关搜索建议接口
type RelatedSearcher interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

// KeywordPlanner 关键词规划接口
type KeywordPlanner interface {
	Plan(ctx context.Context, query string) ([]models.PlannedKeyword, error)
}

// TrendAPI 搜索趋势接口
type TrendAPI interface {
	Query(ctx context.Context, groups []models.TrendGroup, window models.TrendWindow) ([]models.TrendSeries, error)
}

// CandidateSource 候选关键词适配器接口
type CandidateSource interface {
	FetchCandidates(ctx context.Context, query string) (*CandidateSet, error)
}

// TrendScorer 趋势打分接口
type TrendScorer interface {
	FetchTrendScores(ctx context.Context, keywords []string, window models.TrendWindow) map[string]float64
}

// KeywordLister 返回关键词规划器的追加关键词
type KeywordLister interface {
	TrendKeywords(ctx context.Context, query string) ([]string, error)
}

// RecommendationService 关键词推荐服务接口
type RecommendationService interface {
	// 推荐模式，maxResults <= 0 时使用默认值
	Recommend(ctx context.Context, query string, maxResults int) (*models.Recommendation, error)

	// 比较模式：仅保留关键词规划器也返回的候选
	Compare(ctx context.Context, query string, maxResults int) (*models.Recommendation, error)

	// 关键词规划器按搜索量排序的追加关键词
	TrendKeywords(ctx context.Context, query string) ([]string, error)
}
