package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"keyword_bot/config"
	"keyword_bot/logger"
	"keyword_bot/models"
	"keyword_bot/utils"
)

// groupNameLimit 趋势接口 groupName 的最大字符数
const groupNameLimit = 19

// TrendOptions 趋势抓取参数
type TrendOptions struct {
	ChunkSize           int
	WorkerCount         int
	UseShortWindowBlend bool
	ShortWindowDays     int
	LongWeight          float64
	ShortWeight         float64
	SequentialDelay     time.Duration // pause between chunks when WorkerCount <= 1
}

// TrendOptionsFromConfig 从配置构造趋势参数
func TrendOptionsFromConfig(cfg *config.Config) TrendOptions {
	p := cfg.Pipeline
	opts := TrendOptions{
		ChunkSize:           p.ChunkSize,
		WorkerCount:         p.WorkerCount,
		UseShortWindowBlend: p.UseShortWindowBlend,
		ShortWindowDays:     p.ShortWindowDays,
		LongWeight:          0.7,
		ShortWeight:         0.3,
		SequentialDelay:     time.Duration(p.SequentialDelayMs) * time.Millisecond,
	}
	if len(p.BlendWeights) == 2 {
		opts.LongWeight, opts.ShortWeight = p.BlendWeights[0], p.BlendWeights[1]
	}
	return opts
}

// TrendFetcher 分块、限并发地请求趋势接口并计算流行度分数
type TrendFetcher struct {
	api   TrendAPI
	opts  TrendOptions
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTrendFetcher 创建趋势抓取器
func NewTrendFetcher(api TrendAPI, opts TrendOptions) *TrendFetcher {
	if opts.ChunkSize <= 0 || opts.ChunkSize > config.MaxChunkSize {
		opts.ChunkSize = config.MaxChunkSize
	}
	if opts.ShortWindowDays <= 0 {
		opts.ShortWindowDays = 7
	}
	if opts.SequentialDelay < time.Second {
		opts.SequentialDelay = time.Second
	}
	return &TrendFetcher{api: api, opts: opts, sleep: sleepCtx}
}

// ChunkKeywords 按固定大小切分关键词，最后一块可能更短
func ChunkKeywords(keywords []string, size int) [][]string {
	if size <= 0 {
		size = config.MaxChunkSize
	}
	var chunks [][]string
	for i := 0; i < len(keywords); i += size {
		end := i + size
		if end > len(keywords) {
			end = len(keywords)
		}
		chunks = append(chunks, keywords[i:end])
	}
	return chunks
}

// FetchTrendScores 返回 关键词 -> 趋势分数；失败的块不产生条目
func (f *TrendFetcher) FetchTrendScores(ctx context.Context, keywords []string, window models.TrendWindow) map[string]float64 {
	chunks := ChunkKeywords(keywords, f.opts.ChunkSize)
	logger.Info("Fetching trend scores", "keywords", len(keywords), "chunks", len(chunks), "workers", f.opts.WorkerCount)

	if f.opts.WorkerCount <= 1 {
		return f.fetchSequential(ctx, chunks, window)
	}
	return f.fetchConcurrent(ctx, chunks, window)
}

func (f *TrendFetcher) fetchSequential(ctx context.Context, chunks [][]string, window models.TrendWindow) map[string]float64 {
	scores := make(map[string]float64)
	for i, chunk := range chunks {
		if i > 0 {
			if err := f.sleep(ctx, f.opts.SequentialDelay); err != nil {
				logger.Warn("Trend fetch cancelled", "remaining_chunks", len(chunks)-i, "error", err)
				break
			}
		}
		for kw, s := range f.fetchChunk(ctx, i, chunk, window) {
			scores[kw] = s
		}
	}
	return scores
}

func (f *TrendFetcher) fetchConcurrent(ctx context.Context, chunks [][]string, window models.TrendWindow) map[string]float64 {
	var (
		partials  = make([]map[string]float64, len(chunks))
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, f.opts.WorkerCount)
	)

	for idx, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				logger.Warn("Trend chunk skipped", "chunk", i, "error", ctx.Err())
				return
			}
			defer func() { <-semaphore }()

			partials[i] = f.fetchChunk(ctx, i, chunk, window)
		}(idx, chunk)
	}
	wg.Wait()

	// 各块关键词互不重叠，合并顺序无关
	scores := make(map[string]float64)
	for _, p := range partials {
		for kw, s := range p {
			scores[kw] = s
		}
	}
	return scores
}

// fetchChunk 请求单个块；错误只记录日志并返回 nil
func (f *TrendFetcher) fetchChunk(ctx context.Context, idx int, chunk []string, window models.TrendWindow) map[string]float64 {
	if err := ctx.Err(); err != nil {
		logger.Warn("Trend chunk skipped", "chunk", idx, "error", err)
		return nil
	}

	groups := make([]models.TrendGroup, 0, len(chunk))
	keywords := make([]string, 0, len(chunk))
	byName := make(map[string]string, len(chunk))
	for _, kw := range chunk {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		name := uniqueGroupName(strings.TrimSpace(utils.TruncateRunes(kw, groupNameLimit)), byName)
		groups = append(groups, models.TrendGroup{GroupName: name, Keywords: []string{kw}})
		keywords = append(keywords, kw)
		byName[name] = kw
	}
	if len(groups) == 0 {
		return nil
	}

	series, err := f.api.Query(ctx, groups, window)
	if err != nil {
		logger.Warn("Trend chunk failed", "chunk", idx, "keywords", keywords, "error", err)
		return nil
	}

	scores := make(map[string]float64, len(series))
	for i, s := range series {
		kw, ok := byName[s.Title]
		if !ok && i < len(keywords) {
			// results come back in request order
			kw = keywords[i]
		}
		if kw == "" {
			continue
		}
		scores[kw] = f.Score(s.DailyRatios)
	}
	logger.Debug("Trend chunk done", "chunk", idx, "scored", len(scores))
	return scores
}

// uniqueGroupName 截断后重名时用 "~N" 替换末尾字符，保证块内唯一且不超过上限
func uniqueGroupName(name string, used map[string]string) string {
	if _, taken := used[name]; !taken {
		return name
	}
	for n := 2; ; n++ {
		suffix := "~" + strconv.Itoa(n)
		candidate := utils.TruncateRunes(name, groupNameLimit-len(suffix)) + suffix
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// Score 计算单个序列的趋势分数，按配置决定是否混合短窗口
func (f *TrendFetcher) Score(ratios []float64) float64 {
	long := RecencyRatio(ratios)
	if !f.opts.UseShortWindowBlend {
		return long
	}
	short := ShortWindowRatio(ratios, f.opts.ShortWindowDays)
	return f.opts.LongWeight*long + f.opts.ShortWeight*short
}

// RecencyRatio 最后一天比率 / 之前所有天的平均比率；少于两点或基线为 0 时返回 0
func RecencyRatio(ratios []float64) float64 {
	baseline, ok := priorMean(ratios)
	if !ok {
		return 0
	}
	return ratios[len(ratios)-1] / baseline
}

// ShortWindowRatio 最近 days 个点的平均值 / 之前所有天的平均比率
func ShortWindowRatio(ratios []float64, days int) float64 {
	baseline, ok := priorMean(ratios)
	if !ok || days <= 0 {
		return 0
	}
	if days > len(ratios) {
		days = len(ratios)
	}
	return mean(ratios[len(ratios)-days:]) / baseline
}

func priorMean(ratios []float64) (float64, bool) {
	if len(ratios) < 2 {
		return 0, false
	}
	m := mean(ratios[:len(ratios)-1])
	if m == 0 {
		return 0, false
	}
	return m, true
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sleepCtx 可被 ctx 取消的睡眠
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
