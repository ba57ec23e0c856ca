package models

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// RecommendationResponse 推荐结果响应
type RecommendationResponse struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message" example:"success"`
	Data    Recommendation `json:"data"`
}

// HistoryResponse 历史记录响应
type HistoryResponse struct {
	Code    int              `json:"code" example:"0"`
	Message string           `json:"message" example:"success"`
	Data    []Recommendation `json:"data"`
}

// TrendKeywordsResponse 追加趋势关键词响应
type TrendKeywordsResponse struct {
	Code    int      `json:"code" example:"0"`
	Message string   `json:"message" example:"success"`
	Data    []string `json:"data" example:"블루투스이어폰,무선이어폰"`
}
