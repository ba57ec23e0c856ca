package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"keyword_bot/config"
)

// RelatedSearchClient 抓取 Naver 搜索结果页的相关搜索词
type RelatedSearchClient struct {
	searchURL string
	http      *http.Client
}

// NewRelatedSearchClient 创建相关搜索客户端
func NewRelatedSearchClient(cfg *config.Config) *RelatedSearchClient {
	return &RelatedSearchClient{
		searchURL: cfg.Naver.SearchURL,
		http:      newHTTPClient(cfg),
	}
}

// Suggest 返回搜索结果页上的相关搜索词，按页面顺序
func (c *RelatedSearchClient) Suggest(ctx context.Context, query string) ([]string, error) {
	req, err := http.NewRequest(http.MethodGet, c.searchURL+"?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: related search: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; keyword_bot)")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")

	body, err := doRequest(ctx, c.http, req, "related_search")
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: related search: %v", ErrMalformedResponse, err)
	}
	return ParseRelatedKeywords(doc), nil
}

// ParseRelatedKeywords 提取每个 .keyword 容器内 .tit 的文本
//
// If any .keyword container has no .tit child, the page uses the newer
// layout and every .fds-keyword-text element is collected instead.
func ParseRelatedKeywords(doc *html.Node) []string {
	var out []string
	needFallback := false
	for _, kw := range findByClass(doc, "keyword") {
		tit := findByClass(kw, "tit")
		if len(tit) == 0 {
			needFallback = true
			continue
		}
		if text := nodeText(tit[0]); text != "" {
			out = append(out, text)
		}
	}
	if needFallback {
		for _, n := range findByClass(doc, "fds-keyword-text") {
			if text := nodeText(n); text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}

// findByClass 深度优先查找 class 属性包含 name 的后代元素（不含 root 自身）
func findByClass(root *html.Node, name string) []*html.Node {
	var found []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasClass(c, name) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(root)
	return found
}

func hasClass(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(a.Val) {
			if cls == name {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
