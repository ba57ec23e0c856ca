package utils

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// DeduplicateSlice 去重字符串切片，保留首次出现顺序
func DeduplicateSlice(input []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, val := range input {
		val = strings.TrimSpace(val)
		if val != "" && !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}

	return result
}

// TruncateRunes 按字符（非字节）截断
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// StripTags 移除 HTML 标签并反转义实体，例如 "<b>이어폰</b> &amp; 케이스"
func StripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}

// SplitTitleTokens 按空白拆分商品标题并去重
func SplitTitleTokens(titles []string) []string {
	var tokens []string
	for _, t := range titles {
		tokens = append(tokens, strings.Fields(t)...)
	}
	return DeduplicateSlice(tokens)
}

// Preview 截取日志预览
func Preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return TruncateRunes(s, n) + "..."
}
