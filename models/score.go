package models

import "time"

// ScoreRecord 排名结果中的一行
type ScoreRecord struct {
	Keyword        string  `json:"keyword"`
	FrequencyScore float64 `json:"frequency_score"`
	TrendScore     float64 `json:"trend_score"`
	TotalScore     float64 `json:"total_score"`
}

// KeywordScore 保持顺序的关键词分数
type KeywordScore struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// TrendWindow 一次运行中所有趋势请求共用的时间窗口
type TrendWindow struct {
	Start time.Time
	End   time.Time
}

// DateLayout is the date format the trend API expects.
const DateLayout = "2006-01-02"

// StartDate 窗口起始日期字符串
func (w TrendWindow) StartDate() string { return w.Start.Format(DateLayout) }

// EndDate 窗口结束日期字符串
func (w TrendWindow) EndDate() string { return w.End.Format(DateLayout) }

// NewTrendWindow returns [end-days, end] truncated to whole days.
func NewTrendWindow(end time.Time, days int) TrendWindow {
	y, m, d := end.Date()
	endDay := time.Date(y, m, d, 0, 0, 0, 0, end.Location())
	return TrendWindow{Start: endDay.AddDate(0, 0, -days), End: endDay}
}

// RunMode 推荐模式
type RunMode string

const (
	ModeRecommend RunMode = "recommend"
	ModeCompare   RunMode = "compare"
)

// Recommendation 一次推荐运行的完整输出
type Recommendation struct {
	RunID       string        `json:"run_id"`
	Query       string        `json:"query"`
	Mode        RunMode       `json:"mode"`
	TopCategory string        `json:"top_category,omitempty"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Keywords    []ScoreRecord `json:"keywords"`
	CreatedAt   time.Time     `json:"created_at"`
}
