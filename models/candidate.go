package models

import "sort"

// CandidateSource 候选关键词来源标签
type CandidateSource string

const (
	SourceShoppingTitle CandidateSource = "shopping-title-token"
	SourceRelated       CandidateSource = "related-search"
	SourceTrendHint     CandidateSource = "trend-hint"
)

// Candidate 原始候选关键词，产生后不可变
type Candidate struct {
	Keyword string          `json:"keyword"`
	Source  CandidateSource `json:"source"`
}

// KeywordGroup 归一化键及其对应的原始候选字符串
type KeywordGroup struct {
	Key     string   `json:"key"`
	Members []string `json:"members"`
}

// BrandSet 品牌/制造商排除集合
type BrandSet map[string]struct{}

// NewBrandSet builds a set, skipping blank names.
func NewBrandSet(names ...string) BrandSet {
	s := make(BrandSet, len(names))
	s.Add(names...)
	return s
}

// Add 添加品牌名，忽略空字符串
func (s BrandSet) Add(names ...string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
}

// Names returns the brands sorted.
func (s BrandSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
