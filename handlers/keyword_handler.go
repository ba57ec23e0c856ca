package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "keyword_bot/docs" // 导入 swagger 文档
	"keyword_bot/logger"
	"keyword_bot/models"
	"keyword_bot/services"
	"keyword_bot/utils"
)

// KeywordService handlers 依赖的服务接口
type KeywordService interface {
	services.RecommendationService
	Latest(ctx context.Context, query string) (*models.Recommendation, error)
	History(ctx context.Context, query string, limit int) ([]models.Recommendation, error)
	Run(ctx context.Context, runID string) (*models.Recommendation, error)
}

// errorCode 服务错误映射为响应码
func errorCode(err error) int {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return models.CodeConfigError
	case errors.Is(err, services.ErrSourceUnavailable), errors.Is(err, services.ErrMalformedResponse):
		return models.CodeThirdPartyAPIError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return models.CodeServerError
	default:
		return models.CodeRecommendGenError
	}
}

func queryParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("query"))
}

// parseMax 解析 max 参数，非法时写入错误响应
func parseMax(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, ok := utils.ParseIntParam(r, name, 0)
	if !ok {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{
			"param": name,
		})
		return 0, false
	}
	return v, true
}

// RecommendHandler godoc
// @Summary 推荐关键词
// @Description 汇总购物标题、相关搜索和关键词规划器的候选词，按频率和搜索趋势打分，排除品牌词后返回排名
// @Tags 关键词推荐
// @Produce json
// @Param query query string true "检索词"
// @Param max query int false "返回条数，默认 15"
// @Success 200 {object} models.RecommendationResponse "成功"
// @Failure 200 {object} models.APIResponse "参数错误或外部接口错误"
// @Router /api/recommend [get]
func RecommendHandler(w http.ResponseWriter, r *http.Request, svc KeywordService) {
	query := queryParam(r)
	if !utils.ValidateQuery(w, query) {
		return
	}
	maxResults, ok := parseMax(w, r, "max")
	if !ok {
		return
	}

	rec, err := svc.Recommend(r.Context(), query, maxResults)
	if err != nil {
		logger.Error("Keyword recommendation failed", "query", query, "error", err)
		utils.WriteCustomErrorResponse(w, errorCode(err), err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, rec)
}

// CompareHandler godoc
// @Summary 比较关键词
// @Description 只保留关键词规划器也返回的候选词后打分，默认返回 10 条
// @Tags 关键词推荐
// @Produce json
// @Param query query string true "检索词"
// @Param max query int false "返回条数，默认 10"
// @Success 200 {object} models.RecommendationResponse "成功"
// @Failure 200 {object} models.APIResponse "参数错误或外部接口错误"
// @Router /api/compare [get]
func CompareHandler(w http.ResponseWriter, r *http.Request, svc KeywordService) {
	query := queryParam(r)
	if !utils.ValidateQuery(w, query) {
		return
	}
	maxResults, ok := parseMax(w, r, "max")
	if !ok {
		return
	}

	rec, err := svc.Compare(r.Context(), query, maxResults)
	if err != nil {
		logger.Error("Keyword comparison failed", "query", query, "error", err)
		utils.WriteCustomErrorResponse(w, errorCode(err), err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, rec)
}

// TrendKeywordsHandler godoc
// @Summary 追加趋势关键词
// @Description 返回关键词规划器按月搜索量降序排列的关键词
// @Tags 关键词推荐
// @Produce json
// @Param query query string true "检索词"
// @Success 200 {object} models.TrendKeywordsResponse "成功"
// @Failure 200 {object} models.APIResponse "参数错误或外部接口错误"
// @Router /api/keywords/trend [get]
func TrendKeywordsHandler(w http.ResponseWriter, r *http.Request, svc KeywordService) {
	query := queryParam(r)
	if !utils.ValidateQuery(w, query) {
		return
	}

	keywords, err := svc.TrendKeywords(r.Context(), query)
	if err != nil {
		utils.WriteCustomErrorResponse(w, errorCode(err), err.Error(), map[string]interface{}{})
		return
	}
	if len(keywords) == 0 {
		utils.WriteErrorResponse(w, models.CodeNoRecommendData, map[string]interface{}{
			"query": query,
		})
		return
	}
	utils.WriteSuccessResponse(w, keywords)
}

// LatestRecommendationHandler godoc
// @Summary 最近一次推荐结果
// @Tags 历史记录
// @Produce json
// @Param query query string true "检索词"
// @Success 200 {object} models.RecommendationResponse "成功"
// @Failure 200 {object} models.APIResponse "没有记录"
// @Router /api/recommendation/latest [get]
func LatestRecommendationHandler(w http.ResponseWriter, r *http.Request, svc KeywordService) {
	query := queryParam(r)
	if !utils.ValidateQuery(w, query) {
		return
	}

	rec, err := svc.Latest(r.Context(), query)
	if utils.IsSQLNoRowsError(err) {
		utils.WriteErrorResponse(w, models.CodeNoRecommendData, map[string]interface{}{
			"query": query,
		})
		return
	}
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, rec)
}

// HistoryHandler godoc
// @Summary 推荐历史
// @Description 按时间倒序列出推荐运行；query 为空时列出全部
// @Tags 历史记录
// @Produce json
// @Param query query string false "检索词"
// @Param limit query int false "条数，默认 20，最多 200"
// @Success 200 {object} models.HistoryResponse "成功"
// @Failure 200 {object} models.APIResponse "参数错误或数据库错误"
// @Router /api/recommendation/history [get]
func HistoryHandler(w http.ResponseWriter, r *http.Request, svc KeywordService) {
	limit, ok := parseMax(w, r, "limit")
	if !ok {
		return
	}

	runs, err := svc.History(r.Context(), queryParam(r), limit)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, runs)
}

// RunHandler godoc
// @Summary 按 run_id 查询推荐结果
// @Tags 历史记录
// @Produce json
// @Param id path string true "运行 ID"
// @Success 200 {object} models.RecommendationResponse "成功"
// @Failure 200 {object} models.APIResponse "没有记录"
// @Router /api/recommendation/run/{id} [get]
func RunHandler(w http.ResponseWriter, r *http.Request, svc KeywordService) {
	runID := strings.TrimSpace(chi.URLParam(r, "id"))
	if runID == "" {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{
			"param": "id",
		})
		return
	}

	rec, err := svc.Run(r.Context(), runID)
	if utils.IsSQLNoRowsError(err) {
		utils.WriteErrorResponse(w, models.CodeNoRecommendData, map[string]interface{}{
			"run_id": runID,
		})
		return
	}
	if err != nil {
		logger.Error("Failed to load recommendation run", "run_id", runID, "error", err)
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, rec)
}

// HealthHandler 存活检查
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"status": "ok",
	})
}

func RegisterRoutes(r *chi.Mux, svc KeywordService) {
	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Swagger JSON 的 URL
	))

	r.Get("/healthz", HealthHandler)

	r.Get("/api/recommend", func(w http.ResponseWriter, r *http.Request) {
		RecommendHandler(w, r, svc)
	})

	r.Get("/api/compare", func(w http.ResponseWriter, r *http.Request) {
		CompareHandler(w, r, svc)
	})

	r.Get("/api/keywords/trend", func(w http.ResponseWriter, r *http.Request) {
		TrendKeywordsHandler(w, r, svc)
	})

	r.Get("/api/recommendation/latest", func(w http.ResponseWriter, r *http.Request) {
		LatestRecommendationHandler(w, r, svc)
	})

	r.Get("/api/recommendation/history", func(w http.ResponseWriter, r *http.Request) {
		HistoryHandler(w, r, svc)
	})

	r.Get("/api/recommendation/run/{id}", func(w http.ResponseWriter, r *http.Request) {
		RunHandler(w, r, svc)
	})
}
