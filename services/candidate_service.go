package services

import (
	"context"
	"sort"
	"sync"

	"keyword_bot/logger"
	"keyword_bot/models"
	"keyword_bot/utils"
)

// CandidateSet 一次候选抓取的结果
type CandidateSet struct {
	Candidates  []models.Candidate
	Brands      models.BrandSet
	TopCategory string
	// Planner keywords in descending volume order; used by comparison mode
	// and the additional-keywords endpoint.
	PlannerKeywords []string
}

// Raw 返回全部候选的原始字符串
func (s *CandidateSet) Raw() []string {
	out := make([]string, len(s.Candidates))
	for i, c := range s.Candidates {
		out[i] = c.Keyword
	}
	return out
}

// CandidateAdapter 将三个外部来源包装为一个候选来源
type CandidateAdapter struct {
	shopping    ShoppingSearcher
	related     RelatedSearcher
	planner     KeywordPlanner
	extraBrands []string
	plannerTopN int
}

// NewCandidateAdapter 创建候选适配器；任一来源可为 nil，视为空贡献
func NewCandidateAdapter(shopping ShoppingSearcher, related RelatedSearcher, planner KeywordPlanner, extraBrands []string, plannerTopN int) *CandidateAdapter {
	if plannerTopN <= 0 {
		plannerTopN = 100
	}
	return &CandidateAdapter{
		shopping:    shopping,
		related:     related,
		planner:     planner,
		extraBrands: extraBrands,
		plannerTopN: plannerTopN,
	}
}

// FetchCandidates 并发调用三个来源；单个来源失败只记录日志，贡献为空
func (a *CandidateAdapter) FetchCandidates(ctx context.Context, query string) (*CandidateSet, error) {
	var (
		wg      sync.WaitGroup
		items   []models.ShoppingItem
		related []string
		planned []models.PlannedKeyword
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if a.shopping == nil {
			return
		}
		res, err := a.shopping.Search(ctx, query)
		if err != nil {
			logger.Warn("Shopping search failed, continuing without it", "query", query, "error", err)
			return
		}
		items = res
	}()
	go func() {
		defer wg.Done()
		if a.related == nil {
			return
		}
		res, err := a.related.Suggest(ctx, query)
		if err != nil {
			logger.Warn("Related search failed, continuing without it", "query", query, "error", err)
			return
		}
		related = res
	}()
	go func() {
		defer wg.Done()
		if a.planner == nil {
			return
		}
		res, err := a.planner.Plan(ctx, query)
		if err != nil {
			logger.Warn("Keyword planner failed, continuing without it", "query", query, "error", err)
			return
		}
		planned = res
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := &CandidateSet{Brands: models.NewBrandSet(a.extraBrands...)}

	for _, kw := range utils.DeduplicateSlice(related) {
		set.Candidates = append(set.Candidates, models.Candidate{Keyword: kw, Source: models.SourceRelated})
	}

	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
		set.Brands.Add(it.Brand, it.Maker)
	}
	for _, tok := range utils.SplitTitleTokens(titles) {
		set.Candidates = append(set.Candidates, models.Candidate{Keyword: tok, Source: models.SourceShoppingTitle})
	}
	set.TopCategory = TopCategory(items)

	for _, p := range TopPlannedKeywords(planned, a.plannerTopN) {
		set.Candidates = append(set.Candidates, models.Candidate{Keyword: p.Keyword, Source: models.SourceTrendHint})
		set.PlannerKeywords = append(set.PlannerKeywords, p.Keyword)
	}

	logger.Info("Candidates fetched",
		"query", query,
		"related", len(related),
		"shopping_items", len(items),
		"planner", len(set.PlannerKeywords),
		"candidates", len(set.Candidates),
		"brands", len(set.Brands),
		"top_category", set.TopCategory)
	logger.Debug("Brand exclusion set", "query", query, "brands", set.Brands.Names())
	return set, nil
}

// TopCategory 出现次数最多的类目路径；并列时取来源排名中最先出现的
func TopCategory(items []models.ShoppingItem) string {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		path := it.CategoryPath()
		if path == "" {
			continue
		}
		if counts[path] == 0 {
			order = append(order, path)
		}
		counts[path]++
	}
	best, bestCount := "", 0
	for _, path := range order {
		if counts[path] > bestCount {
			best, bestCount = path, counts[path]
		}
	}
	return best
}

// TopPlannedKeywords 按 PC+移动端月搜索量降序取前 n 个，重复关键词保留第一次
func TopPlannedKeywords(planned []models.PlannedKeyword, n int) []models.PlannedKeyword {
	seen := make(map[string]bool, len(planned))
	out := make([]models.PlannedKeyword, 0, len(planned))
	for _, p := range planned {
		if p.Keyword == "" || seen[p.Keyword] {
			continue
		}
		seen[p.Keyword] = true
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalVolume() > out[j].TotalVolume()
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TrendKeywords 只调用关键词规划器，返回按搜索量排序的关键词
func (a *CandidateAdapter) TrendKeywords(ctx context.Context, query string) ([]string, error) {
	if a.planner == nil {
		return nil, ErrSourceUnavailable
	}
	planned, err := a.planner.Plan(ctx, query)
	if err != nil {
		return nil, err
	}
	top := TopPlannedKeywords(planned, a.plannerTopN)
	out := make([]string, len(top))
	for i, p := range top {
		out[i] = p.Keyword
	}
	return out, nil
}
