package services

import (
	"strings"

	"keyword_bot/models"
)

// ScoreFrequency 计算每组的相对频率分数
//
// A candidate counts toward a group when any member of the group is a substring
// of it. Matching is not exclusive, so one candidate may count for several groups.
// Counts are divided by the largest count, which makes the top group 1.0.
func ScoreFrequency(groups []models.KeywordGroup, candidates []string) []models.KeywordScore {
	counts := make([]int, len(groups))
	maxCount := 0
	for gi, g := range groups {
		for _, c := range candidates {
			if containsAny(c, g.Members) {
				counts[gi]++
			}
		}
		if counts[gi] > maxCount {
			maxCount = counts[gi]
		}
	}

	scores := make([]models.KeywordScore, len(groups))
	for gi, g := range groups {
		scores[gi] = models.KeywordScore{Keyword: g.Key}
		if maxCount > 0 {
			scores[gi].Score = float64(counts[gi]) / float64(maxCount)
		}
	}
	return scores
}

func containsAny(s string, members []string) bool {
	for _, m := range members {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
