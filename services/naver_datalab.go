package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"keyword_bot/config"
	"keyword_bot/models"
)

// DatalabClient Naver 数据实验室搜索趋势客户端
type DatalabClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

// NewDatalabClient 创建趋势客户端
func NewDatalabClient(cfg *config.Config) *DatalabClient {
	return &DatalabClient{
		baseURL:      strings.TrimRight(cfg.Naver.OpenAPIURL, "/"),
		clientID:     cfg.Naver.ClientID,
		clientSecret: cfg.Naver.ClientSecret,
		http:         newHTTPClient(cfg),
	}
}

type datalabRequest struct {
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	TimeUnit      string              `json:"timeUnit"`
	KeywordGroups []models.TrendGroup `json:"keywordGroups"`
}

type datalabResponse struct {
	Results *[]struct {
		Title string `json:"title"`
		Data  []struct {
			Period string  `json:"period"`
			Ratio  float64 `json:"ratio"`
		} `json:"data"`
	} `json:"results"`
}

// Query 请求一个分块（最多 5 组）的日趋势
func (c *DatalabClient) Query(ctx context.Context, groups []models.TrendGroup, window models.TrendWindow) ([]models.TrendSeries, error) {
	if len(groups) > config.MaxChunkSize {
		return nil, fmt.Errorf("%w: %d keyword groups exceeds %d", ErrConfiguration, len(groups), config.MaxChunkSize)
	}
	payload, err := json.Marshal(datalabRequest{
		StartDate:     window.StartDate(),
		EndDate:       window.EndDate(),
		TimeUnit:      "date",
		KeywordGroups: groups,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal datalab request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/datalab/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: datalab: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	body, err := doRequest(ctx, c.http, req, "datalab")
	if err != nil {
		return nil, err
	}

	var resp datalabResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: datalab: %v", ErrMalformedResponse, err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("%w: datalab: missing results", ErrMalformedResponse)
	}

	out := make([]models.TrendSeries, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		ratios := make([]float64, len(r.Data))
		for i, d := range r.Data {
			ratios[i] = d.Ratio
		}
		out = append(out, models.TrendSeries{Title: r.Title, DailyRatios: ratios})
	}
	return out, nil
}
