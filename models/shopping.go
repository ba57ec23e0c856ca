package models

import "strings"

// ShoppingItem 购物搜索返回的单个商品
type ShoppingItem struct {
	Title     string `json:"title"`
	Brand     string `json:"brand,omitempty"`
	Maker     string `json:"maker,omitempty"`
	Category1 string `json:"category1,omitempty"`
	Category2 string `json:"category2,omitempty"`
	Category3 string `json:"category3,omitempty"`
	Category4 string `json:"category4,omitempty"`
}

// CategoryPath joins the non-empty category levels with ">".
func (i ShoppingItem) CategoryPath() string {
	parts := make([]string, 0, 4)
	for _, c := range []string{i.Category1, i.Category2, i.Category3, i.Category4} {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ">")
}

// PlannedKeyword 关键词工具返回的一行
type PlannedKeyword struct {
	Keyword             string `json:"keyword"`
	MonthlyVolumePC     int    `json:"monthly_volume_pc"`
	MonthlyVolumeMobile int    `json:"monthly_volume_mobile"`
}

// TotalVolume PC+移动端月搜索量
func (p PlannedKeyword) TotalVolume() int {
	return p.MonthlyVolumePC + p.MonthlyVolumeMobile
}

// TrendGroup 趋势请求中的一个关键词组
type TrendGroup struct {
	GroupName string   `json:"groupName"`
	Keywords  []string `json:"keywords"`
}

// TrendSeries 趋势接口返回的单组日比率序列
type TrendSeries struct {
	Title       string    `json:"title"`
	DailyRatios []float64 `json:"daily_ratios"`
}
