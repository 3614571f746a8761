package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCourse(t *testing.T, root, dir, courseJSON string) string {
	t.Helper()
	courseDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(courseDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(courseDir, "course.json"), []byte(courseJSON), 0644))
	return courseDir
}

func TestReindexBuildsDocuments(t *testing.T) {
	root := t.TempDir()
	courseDir := writeCourse(t, root, "go-basics", `{
		"courseId": "go-basics",
		"name": "Go 入门",
		"description": "从零开始学习 Go",
		"topic": "backend",
		"technologies": ["go", "gin"],
		"modules": [
			{"title": "语法基础", "content": "变量 类型 控制流"},
			{"title": "并发编程", "content": "goroutine channel"}
		]
	}`)
	require.NoError(t, os.WriteFile(filepath.Join(courseDir, "README.md"), []byte("课程说明"), 0644))

	svc := NewContentService()
	stats, err := svc.Reindex(root)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Courses)
	assert.Equal(t, 4, stats.Documents) // 课程 1 + 模块 2 + README 1

	idx := svc.Index()
	course, ok := idx.Document("course:go-basics")
	require.True(t, ok)
	assert.Equal(t, "Go 入门", course.Title)
	assert.Contains(t, course.Content, "goroutine")

	mod, ok := idx.Document("module:go-basics:1")
	require.True(t, ok)
	assert.Equal(t, "并发编程", mod.Title)

	readme, ok := idx.Document("doc:go-basics:README.md")
	require.True(t, ok)
	assert.Equal(t, "课程说明", readme.Content)
}

func TestReindexDefaultsCourseIDToDirName(t *testing.T) {
	root := t.TempDir()
	writeCourse(t, root, "mystery-course", `{"name": "无 ID 课程"}`)

	svc := NewContentService()
	_, err := svc.Reindex(root)
	require.NoError(t, err)

	course, ok := svc.Index().Course("mystery-course")
	require.True(t, ok)
	assert.Equal(t, "无 ID 课程", course.Name)
}

func TestReindexSkipsBrokenCourse(t *testing.T) {
	root := t.TempDir()
	writeCourse(t, root, "good", `{"courseId": "good", "name": "正常课程"}`)
	writeCourse(t, root, "broken", `{invalid json`)
	// 没有 course.json 的目录同样跳过
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))

	svc := NewContentService()
	stats, err := svc.Reindex(root)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Courses)
	_, ok := svc.Index().Course("good")
	assert.True(t, ok)
}

func TestReindexReplacesIndexAtomically(t *testing.T) {
	root := t.TempDir()
	writeCourse(t, root, "c1", `{"courseId": "c1", "name": "第一门"}`)

	svc := NewContentService()
	_, err := svc.Reindex(root)
	require.NoError(t, err)

	old := svc.Index()

	root2 := t.TempDir()
	writeCourse(t, root2, "c2", `{"courseId": "c2", "name": "第二门"}`)
	_, err = svc.Reindex(root2)
	require.NoError(t, err)

	// 老快照不受重建影响
	_, ok := old.Course("c1")
	assert.True(t, ok)
	_, ok = old.Course("c2")
	assert.False(t, ok)

	// 新索引整体替换，不做合并
	_, ok = svc.Index().Course("c1")
	assert.False(t, ok)
	_, ok = svc.Index().Course("c2")
	assert.True(t, ok)
}

func TestReindexMissingRoot(t *testing.T) {
	svc := NewContentService()
	_, err := svc.Reindex(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)

	// 失败时保留旧索引
	assert.Equal(t, 0, svc.Index().Len())
}
