package services

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"keyword_bot/models"
)

// minKeyLength 归一化键的最小字符数（不含），更短的键没有区分度
const minKeyLength = 1

// Normalize 生成分组键：NFKC 后仅保留韩文音节（가-힣）和拉丁字母
//
// Compatibility and halfwidth jamo are removed before NFKC so they are never
// folded into syllables; only decomposed (conjoining) Hangul composes.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range norm.NFKC.String(strings.Map(dropCompatJamo, raw)) {
		if isKeyRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dropCompatJamo 删除兼容字母 (U+3131-U+318E) 和半角字母 (U+FFA0-U+FFDC)
func dropCompatJamo(r rune) rune {
	if (r >= 0x3131 && r <= 0x318E) || (r >= 0xFFA0 && r <= 0xFFDC) {
		return -1
	}
	return r
}

func isKeyRune(r rune) bool {
	switch {
	case r >= '가' && r <= '힣':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return false
}

// Group 按归一化键分桶，键按首次出现顺序排列；键长度 <= 1 的候选被丢弃
func Group(candidates []string) []models.KeywordGroup {
	index := make(map[string]int)
	var groups []models.KeywordGroup
	for _, raw := range candidates {
		key := Normalize(raw)
		if utf8.RuneCountInString(key) <= minKeyLength {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.KeywordGroup{Key: key})
		}
		groups[i].Members = append(groups[i].Members, raw)
	}
	return groups
}
