package service

import (
	"edumind_backend/internal/model"
	"edumind_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

const courseMetadataFile = "course.json"

// 课程目录下识别的辅助文件白名单，逐个尝试，缺失时静默跳过
var auxiliaryFiles = []string{"README.md", "syllabus.md", "notes.md", "resources.md"}

// ContentIndex 一次索引的完整快照。重建时生成新实例后整体替换，
// 读取方要么看到旧索引要么看到完整的新索引。docs 保持扫描顺序，
// 保证同分结果的稳定排序。
type ContentIndex struct {
	docs     []*model.IndexedDocument
	docsByID map[string]*model.IndexedDocument
	courses  map[string]*model.CourseRecord
	order    []string // courseId 扫描顺序
}

func newContentIndex() *ContentIndex {
	return &ContentIndex{
		docsByID: make(map[string]*model.IndexedDocument),
		courses:  make(map[string]*model.CourseRecord),
	}
}

// add ID 冲突时覆盖内容但保留首次插入位置
func (idx *ContentIndex) add(doc *model.IndexedDocument) {
	if existing, ok := idx.docsByID[doc.ID]; ok {
		*existing = *doc
		return
	}
	idx.docsByID[doc.ID] = doc
	idx.docs = append(idx.docs, doc)
}

// Documents 按扫描顺序返回全部索引文档
func (idx *ContentIndex) Documents() []*model.IndexedDocument {
	return idx.docs
}

func (idx *ContentIndex) Document(id string) (*model.IndexedDocument, bool) {
	doc, ok := idx.docsByID[id]
	return doc, ok
}

func (idx *ContentIndex) Courses() []*model.CourseRecord {
	res := make([]*model.CourseRecord, 0, len(idx.order))
	for _, id := range idx.order {
		res = append(res, idx.courses[id])
	}
	return res
}

func (idx *ContentIndex) Course(id string) (*model.CourseRecord, bool) {
	c, ok := idx.courses[id]
	return c, ok
}

func (idx *ContentIndex) Len() int {
	return len(idx.docs)
}

type IndexStats struct {
	Courses   int `json:"courses"`
	Documents int `json:"documents"`
}

// ContentService 遍历内容库目录树并维护进程内索引。
// 内容库对本服务只读。
type ContentService struct {
	index atomic.Pointer[ContentIndex]
}

func NewContentService() *ContentService {
	s := &ContentService{}
	s.index.Store(newContentIndex())
	return s
}

// Index 返回当前索引快照
func (s *ContentService) Index() *ContentIndex {
	return s.index.Load()
}

// Reindex 全量重建索引。单个课程元数据损坏只记录日志并跳过，
// 不中断其余课程的索引。完成后原子替换旧索引。
func (s *ContentService) Reindex(libraryRoot string) (*IndexStats, error) {
	entries, err := os.ReadDir(libraryRoot)
	if err != nil {
		return nil, fmt.Errorf("读取内容库失败: %w", err)
	}

	next := newContentIndex()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		courseDir := filepath.Join(libraryRoot, entry.Name())
		course, err := loadCourseMetadata(courseDir)
		if err != nil {
			logger.Log.Warn("跳过无法解析的课程目录",
				zap.String("dir", entry.Name()),
				zap.Error(err))
			continue
		}

		if course.CourseID == "" {
			course.CourseID = entry.Name()
		}

		next.courses[course.CourseID] = course
		next.order = append(next.order, course.CourseID)

		s.indexCourse(next, course)
		s.indexAuxiliaryFiles(next, courseDir, course)
	}

	s.index.Store(next)

	stats := &IndexStats{Courses: len(next.courses), Documents: next.Len()}
	logger.Log.Info("内容索引重建完成",
		zap.Int("courses", stats.Courses),
		zap.Int("documents", stats.Documents))
	return stats, nil
}

func loadCourseMetadata(courseDir string) (*model.CourseRecord, error) {
	data, err := os.ReadFile(filepath.Join(courseDir, courseMetadataFile))
	if err != nil {
		return nil, err
	}

	var course model.CourseRecord
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *ContentService) indexCourse(idx *ContentIndex, course *model.CourseRecord) {
	// 课程级文档：拼接全部可检索文本
	idx.add(&model.IndexedDocument{
		ID:      "course:" + course.CourseID,
		Title:   course.Name,
		Content: flattenCourse(course),
		Metadata: model.DocumentMetadata{
			CourseID:     course.CourseID,
			CourseName:   course.Name,
			Type:         model.DocCourse,
			Technologies: course.Technologies,
		},
	})

	// 模块级文档
	for i, mod := range course.Modules {
		idx.add(&model.IndexedDocument{
			ID:      fmt.Sprintf("module:%s:%d", course.CourseID, i),
			Title:   mod.Title,
			Content: flattenModule(&mod),
			Metadata: model.DocumentMetadata{
				CourseID:     course.CourseID,
				CourseName:   course.Name,
				Type:         model.DocModule,
				Technologies: course.Technologies,
			},
		})
	}
}

func (s *ContentService) indexAuxiliaryFiles(idx *ContentIndex, courseDir string, course *model.CourseRecord) {
	for _, name := range auxiliaryFiles {
		data, err := os.ReadFile(filepath.Join(courseDir, name))
		if err != nil {
			continue
		}

		idx.add(&model.IndexedDocument{
			ID:      fmt.Sprintf("doc:%s:%s", course.CourseID, name),
			Title:   fmt.Sprintf("%s - %s", course.Name, name),
			Content: string(data),
			Metadata: model.DocumentMetadata{
				CourseID:   course.CourseID,
				CourseName: course.Name,
				Type:       model.DocDocument,
			},
		})
	}
}

func flattenCourse(course *model.CourseRecord) string {
	var b strings.Builder
	writePart(&b, course.Name)
	writePart(&b, course.Description)
	writePart(&b, course.Topic)
	writePart(&b, course.Category)
	for _, o := range course.LearningObjectives {
		writePart(&b, o)
	}
	for _, p := range course.Prerequisites {
		writePart(&b, p)
	}
	for _, t := range course.Technologies {
		writePart(&b, t)
	}
	for i := range course.Modules {
		writePart(&b, flattenModule(&course.Modules[i]))
	}
	return b.String()
}

func flattenModule(mod *model.ModuleRecord) string {
	var b strings.Builder
	writePart(&b, mod.Title)
	writePart(&b, mod.Description)
	writePart(&b, mod.Content)
	for _, o := range mod.LearningObjectives {
		writePart(&b, o)
	}
	for _, lesson := range mod.Lessons {
		writePart(&b, lesson.Title)
		writePart(&b, lesson.Description)
		writePart(&b, lesson.Content)
		writePart(&b, lesson.Summary)
	}
	return b.String()
}

func writePart(b *strings.Builder, part string) {
	if part == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(part)
}
