package services

import (
	"sort"
	"strings"

	"keyword_bot/models"
)

// Fuse 合并频率分数与趋势分数，排除含品牌名的关键词，按总分降序取前 maxResults
//
// Ties keep the order of frequencyScores. maxResults <= 0 keeps every row.
func Fuse(frequencyScores []models.KeywordScore, trendScores map[string]float64, brands models.BrandSet, maxResults int) []models.ScoreRecord {
	records := make([]models.ScoreRecord, 0, len(frequencyScores))
	for _, fs := range frequencyScores {
		if containsBrand(fs.Keyword, brands) {
			continue
		}
		trend := trendScores[fs.Keyword]
		records = append(records, models.ScoreRecord{
			Keyword:        fs.Keyword,
			FrequencyScore: fs.Score,
			TrendScore:     trend,
			TotalScore:     fs.Score + trend,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TotalScore > records[j].TotalScore
	})

	if maxResults > 0 && len(records) > maxResults {
		records = records[:maxResults]
	}
	return records
}

// containsBrand 大小写敏感的子串匹配
func containsBrand(keyword string, brands models.BrandSet) bool {
	for b := range brands {
		if b != "" && strings.Contains(keyword, b) {
			return true
		}
	}
	return false
}
