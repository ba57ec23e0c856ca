package services

import (
	"context"

	"keyword_bot/logger"
	"keyword_bot/models"
	"keyword_bot/repository"
)

// RunStore 推荐运行历史存储
type RunStore interface {
	Save(ctx context.Context, rec *models.Recommendation) error
	Latest(ctx context.Context, query string) (*models.Recommendation, error)
	List(ctx context.Context, query string, limit int) ([]models.Recommendation, error)
	Get(ctx context.Context, runID string) (*models.Recommendation, error)
}

// repositoryStore 基于 repository 包（全局 db.DB）的存储
type repositoryStore struct{}

// NewRepositoryStore 返回写入 keyword_runs 表的存储
func NewRepositoryStore() RunStore { return repositoryStore{} }

func (repositoryStore) Save(ctx context.Context, rec *models.Recommendation) error {
	return repository.SaveRecommendation(ctx, rec)
}

func (repositoryStore) Latest(ctx context.Context, query string) (*models.Recommendation, error) {
	return repository.GetLatestRecommendation(ctx, query)
}

func (repositoryStore) List(ctx context.Context, query string, limit int) ([]models.Recommendation, error) {
	return repository.ListRecommendations(ctx, query, limit)
}

func (repositoryStore) Get(ctx context.Context, runID string) (*models.Recommendation, error) {
	return repository.GetRecommendation(ctx, runID)
}

// HistoryService 在推荐服务外层记录每次运行结果
type HistoryService struct {
	RecommendationService
	store RunStore
}

// NewHistoryService 包装推荐服务；store 为 nil 时不记录
func NewHistoryService(inner RecommendationService, store RunStore) *HistoryService {
	return &HistoryService{RecommendationService: inner, store: store}
}

// Recommend 推荐并保存结果
func (h *HistoryService) Recommend(ctx context.Context, query string, maxResults int) (*models.Recommendation, error) {
	rec, err := h.RecommendationService.Recommend(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	h.save(ctx, rec)
	return rec, nil
}

// Compare 比较并保存结果
func (h *HistoryService) Compare(ctx context.Context, query string, maxResults int) (*models.Recommendation, error) {
	rec, err := h.RecommendationService.Compare(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	h.save(ctx, rec)
	return rec, nil
}

// Latest 最近一次运行
func (h *HistoryService) Latest(ctx context.Context, query string) (*models.Recommendation, error) {
	if h.store == nil {
		return nil, ErrSourceUnavailable
	}
	return h.store.Latest(ctx, query)
}

// History 历史运行列表
func (h *HistoryService) History(ctx context.Context, query string, limit int) ([]models.Recommendation, error) {
	if h.store == nil {
		return nil, ErrSourceUnavailable
	}
	return h.store.List(ctx, query, limit)
}

// Run 按 run_id 查询一次运行
func (h *HistoryService) Run(ctx context.Context, runID string) (*models.Recommendation, error) {
	if h.store == nil {
		return nil, ErrSourceUnavailable
	}
	return h.store.Get(ctx, runID)
}

// save 持久化失败只记录日志，不影响已计算的结果
func (h *HistoryService) save(ctx context.Context, rec *models.Recommendation) {
	if h.store == nil {
		return
	}
	if err := h.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("Failed to save recommendation run", "run_id", rec.RunID, "query", rec.Query, "error", err)
		return
	}
	logger.Debug("Recommendation run saved", "run_id", rec.RunID, "query", rec.Query, "results", len(rec.Keywords))
}
