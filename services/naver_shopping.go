package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"keyword_bot/config"
	"keyword_bot/models"
	"keyword_bot/utils"
)

// ShoppingClient Naver 购物搜索 Open API 客户端
type ShoppingClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	display      int
	http         *http.Client
}

// NewShoppingClient 创建购物搜索客户端
func NewShoppingClient(cfg *config.Config) *ShoppingClient {
	return &ShoppingClient{
		baseURL:      strings.TrimRight(cfg.Naver.OpenAPIURL, "/"),
		clientID:     cfg.Naver.ClientID,
		clientSecret: cfg.Naver.ClientSecret,
		display:      cfg.Naver.ShopDisplay,
		http:         newHTTPClient(cfg),
	}
}

type shopResponse struct {
	Total int `json:"total"`
	Items []struct {
		Title     string `json:"title"`
		Brand     string `json:"brand"`
		Maker     string `json:"maker"`
		Category1 string `json:"category1"`
		Category2 string `json:"category2"`
		Category3 string `json:"category3"`
		Category4 string `json:"category4"`
	} `json:"items"`
}

// Search 返回按相关度排序的商品，标题中的 <b> 高亮标签已去除
func (c *ShoppingClient) Search(ctx context.Context, query string) ([]models.ShoppingItem, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(c.display))
	params.Set("start", "1")
	params.Set("sort", "sim")

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/v1/search/shop.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: shopping: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	body, err := doRequest(ctx, c.http, req, "shopping")
	if err != nil {
		return nil, err
	}

	var resp shopResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: shopping: %v", ErrMalformedResponse, err)
	}

	items := make([]models.ShoppingItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, models.ShoppingItem{
			Title:     utils.StripTags(it.Title),
			Brand:     strings.TrimSpace(it.Brand),
			Maker:     strings.TrimSpace(it.Maker),
			Category1: it.Category1,
			Category2: it.Category2,
			Category3: it.Category3,
			Category4: it.Category4,
		})
	}
	return items, nil
}
