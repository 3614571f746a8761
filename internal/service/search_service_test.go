package service

import (
	"edumind_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexWithDocs(docs ...*model.IndexedDocument) *ContentService {
	svc := NewContentService()
	idx := newContentIndex()
	for _, doc := range docs {
		idx.add(doc)
	}
	svc.index.Store(idx)
	return svc
}

func TestSearchScoring(t *testing.T) {
	content := indexWithDocs(
		&model.IndexedDocument{
			ID:    "course:go",
			Title: "Go concurrency patterns",
			Metadata: model.DocumentMetadata{
				Technologies: []string{"go", "concurrency"},
			},
		},
		&model.IndexedDocument{
			ID:      "course:py",
			Title:   "Python basics",
			Content: "concurrency is mentioned once here",
		},
		&model.IndexedDocument{
			ID:      "course:js",
			Title:   "JavaScript",
			Content: "nothing relevant",
		},
	)
	search := NewSearchService(content)

	results := search.Search("concurrency", 10)
	require.Len(t, results, 2)

	// 标题含整查询 +10，标题含词 +5，technology 含整查询 +8
	assert.Equal(t, "course:go", results[0].ID)
	assert.Equal(t, 23, results[0].RelevanceScore)

	// 仅正文含词 +2
	assert.Equal(t, "course:py", results[1].ID)
	assert.Equal(t, 2, results[1].RelevanceScore)
}

func TestSearchShortTokensIgnored(t *testing.T) {
	content := indexWithDocs(&model.IndexedDocument{
		ID:      "d1",
		Title:   "Go 语言",
		Content: "go go go",
	})
	search := NewSearchService(content)

	// 长度不大于 2 的词不参与逐词计分，但整查询仍参与标题匹配
	results := search.Search("go", 10)
	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].RelevanceScore)
}

func TestSearchTokenLengthCountsRunes(t *testing.T) {
	content := indexWithDocs(&model.IndexedDocument{
		ID:      "d1",
		Title:   "数据库索引",
		Content: "B+ 树 聚簇索引",
	})
	search := NewSearchService(content)

	// 单个汉字占 3 字节，但只算 1 个字符，不作为词参与计分，
	// 标题又不含整查询，得 0 分被过滤
	assert.Empty(t, search.Search("树", 10))

	// 两个汉字同样不计词分，只保留标题整查询匹配的 10 分
	results := search.Search("索引", 10)
	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].RelevanceScore)

	// 三个汉字达到词长度门槛：标题含词 +5，正文含词 +2
	results = search.Search("聚簇索引 数据库", 10)
	require.Len(t, results, 1)
	assert.Equal(t, 7, results[0].RelevanceScore)
}

func TestSearchZeroScoreExcluded(t *testing.T) {
	content := indexWithDocs(&model.IndexedDocument{
		ID:      "d1",
		Title:   "数据库原理",
		Content: "索引与事务",
	})
	search := NewSearchService(content)

	assert.Empty(t, search.Search("kubernetes", 10))
	assert.Empty(t, search.Search("", 10))
	assert.Empty(t, search.Search("   ", 10))
}

func TestSearchLimitAndDefault(t *testing.T) {
	docs := make([]*model.IndexedDocument, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		docs = append(docs, &model.IndexedDocument{
			ID:      id,
			Title:   "testing " + id,
			Content: "testing content",
		})
	}
	search := NewSearchService(indexWithDocs(docs...))

	assert.Len(t, search.Search("testing", 3), 3)
	// limit 非法时回落默认值 5
	assert.Len(t, search.Search("testing", 0), 5)
	assert.Len(t, search.Search("testing", -1), 5)
}

func TestSearchStableOrderOnTies(t *testing.T) {
	content := indexWithDocs(
		&model.IndexedDocument{ID: "first", Title: "docker guide"},
		&model.IndexedDocument{ID: "second", Title: "docker handbook"},
		&model.IndexedDocument{ID: "third", Title: "docker notes"},
	)
	search := NewSearchService(content)

	results := search.Search("docker", 10)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].ID)
	assert.Equal(t, "second", results[1].ID)
	assert.Equal(t, "third", results[2].ID)
}

func TestRecommendForSkills(t *testing.T) {
	content := indexWithDocs(
		&model.IndexedDocument{ID: "d1", Title: "pointers in depth", Content: "pointers arrays"},
		&model.IndexedDocument{ID: "d2", Title: "arrays tutorial", Content: "arrays pointers"},
	)
	search := NewSearchService(content)

	results := search.RecommendForSkills([]string{"pointers", "arrays"}, 5)
	require.Len(t, results, 2)

	// 同一文档命中多个技能时保留最高分，结果按得分排序
	assert.GreaterOrEqual(t, results[0].RelevanceScore, results[1].RelevanceScore)

	ids := []string{results[0].ID, results[1].ID}
	assert.ElementsMatch(t, []string{"d1", "d2"}, ids)

	assert.Empty(t, search.RecommendForSkills(nil, 5))
}
