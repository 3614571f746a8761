package service

import (
	"edumind_backend/internal/model"
	"sort"
	"strings"
	"unicode/utf8"
)

const DefaultSearchLimit = 5

// SearchService 基于内容索引的启发式相关性检索
type SearchService struct {
	Content *ContentService
}

func NewSearchService(content *ContentService) *SearchService {
	return &SearchService{Content: content}
}

// Search 返回按相关性降序的前 limit 条结果。
// 空查询直接返回空列表；得分为 0 的文档不出现在结果中。
// 同分文档保持索引扫描顺序，保证结果确定性。
func (s *SearchService) Search(query string, limit int) []model.SearchResult {
	results := []model.SearchResult{}

	if strings.TrimSpace(query) == "" {
		return results
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	queryLower := strings.ToLower(query)
	tokens := searchTokens(queryLower)

	for _, doc := range s.Content.Index().Documents() {
		score := scoreDocument(doc, queryLower, tokens)
		if score > 0 {
			results = append(results, model.SearchResult{
				IndexedDocument: *doc,
				RelevanceScore:  score,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// RecommendForSkills 按薄弱技能聚合推荐文档，
// 用于测试分析结果附带的学习建议
func (s *SearchService) RecommendForSkills(skills []string, limit int) []model.SearchResult {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	best := make(map[string]model.SearchResult)
	order := []string{}

	for _, skill := range skills {
		for _, r := range s.Search(skill, limit) {
			existing, ok := best[r.ID]
			if !ok {
				best[r.ID] = r
				order = append(order, r.ID)
				continue
			}
			if r.RelevanceScore > existing.RelevanceScore {
				best[r.ID] = r
			}
		}
	}

	results := make([]model.SearchResult, 0, len(order))
	for _, id := range order {
		results = append(results, best[id])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// searchTokens 取空白分隔且字符数大于 2 的词，按字符数而非字节数计
func searchTokens(queryLower string) []string {
	var tokens []string
	for _, tok := range strings.Fields(queryLower) {
		if utf8.RuneCountInString(tok) > 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// scoreDocument 纯函数打分：
// 标题包含整个查询 +10；标题含词 +5、正文含词 +2；
// technology 标签包含整个查询每个 +8。不按文档长度归一化。
func scoreDocument(doc *model.IndexedDocument, queryLower string, tokens []string) int {
	score := 0

	titleLower := strings.ToLower(doc.Title)
	contentLower := strings.ToLower(doc.Content)

	if strings.Contains(titleLower, queryLower) {
		score += 10
	}

	for _, tok := range tokens {
		if strings.Contains(titleLower, tok) {
			score += 5
		}
		if strings.Contains(contentLower, tok) {
			score += 2
		}
	}

	for _, tech := range doc.Metadata.Technologies {
		if strings.Contains(strings.ToLower(tech), queryLower) {
			score += 8
		}
	}

	return score
}
