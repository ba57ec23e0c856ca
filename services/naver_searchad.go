package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"keyword_bot/config"
	"keyword_bot/models"
	"keyword_bot/utils"
)

const keywordToolURI = "/keywordstool"

// KeywordPlannerClient Naver 搜索广告关键词工具客户端
type KeywordPlannerClient struct {
	baseURL    string
	apiKey     string
	customerID string
	signer     utils.Signer
	http       *http.Client
	now        func() time.Time
}

// NewKeywordPlannerClient 创建关键词工具客户端，请求使用 HMAC 签名
func NewKeywordPlannerClient(cfg *config.Config) *KeywordPlannerClient {
	return &KeywordPlannerClient{
		baseURL:    strings.TrimRight(cfg.SearchAd.BaseURL, "/"),
		apiKey:     cfg.SearchAd.APIKey,
		customerID: cfg.SearchAd.CustomerID,
		signer:     utils.NewHMACSigner(cfg.SearchAd.SecretKey),
		http:       newHTTPClient(cfg),
		now:        time.Now,
	}
}

// volumeCount 月搜索量；低于阈值时接口返回字符串 "< 10"
type volumeCount struct {
	Value int
	Low   bool
}

func (v *volumeCount) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		i, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return err
		}
		v.Value = int(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("volume must be number or string: %s", string(data))
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") {
		v.Low = true
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid volume %q", s)
	}
	v.Value = i
	return nil
}

type keywordToolResponse struct {
	KeywordList []struct {
		RelKeyword         string      `json:"relKeyword"`
		MonthlyPcQcCnt     volumeCount `json:"monthlyPcQcCnt"`
		MonthlyMobileQcCnt volumeCount `json:"monthlyMobileQcCnt"`
	} `json:"keywordList"`
}

// Plan 返回关键词工具的相关关键词；任一端搜索量为 "< 10" 的行被丢弃
func (c *KeywordPlannerClient) Plan(ctx context.Context, query string) ([]models.PlannedKeyword, error) {
	params := url.Values{}
	params.Set("hintKeywords", query)
	params.Set("showDetail", "1")

	req, err := http.NewRequest(http.MethodGet, c.baseURL+keywordToolURI+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: keyword planner: %v", ErrSourceUnavailable, err)
	}
	ts := utils.TimestampMillis(c.now())
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("X-Customer", c.customerID)
	req.Header.Set("X-Signature", c.signer.Sign(ts, http.MethodGet, keywordToolURI))

	body, err := doRequest(ctx, c.http, req, "keyword_planner")
	if err != nil {
		return nil, err
	}

	var resp keywordToolResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: keyword planner: %v", ErrMalformedResponse, err)
	}

	out := make([]models.PlannedKeyword, 0, len(resp.KeywordList))
	for _, row := range resp.KeywordList {
		if row.RelKeyword == "" || row.MonthlyPcQcCnt.Low || row.MonthlyMobileQcCnt.Low {
			continue
		}
		out = append(out, models.PlannedKeyword{
			Keyword:             row.RelKeyword,
			MonthlyVolumePC:     row.MonthlyPcQcCnt.Value,
			MonthlyVolumeMobile: row.MonthlyMobileQcCnt.Value,
		})
	}
	return out, nil
}
