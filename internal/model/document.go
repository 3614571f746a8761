package model

type DocumentType string

const (
	DocCourse   DocumentType = "course"
	DocModule   DocumentType = "module"
	DocDocument DocumentType = "document"
)

type DocumentMetadata struct {
	CourseID     string       `json:"courseId"`
	CourseName   string       `json:"courseName"`
	Type         DocumentType `json:"type"`
	Technologies []string     `json:"technologies,omitempty"`
}

// IndexedDocument 派生实体，每次索引全量重建。
// ID 在整个索引内唯一，冲突时后写覆盖。
type IndexedDocument struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}

// SearchResult 仅在单次检索调用内有效，不持久化
type SearchResult struct {
	IndexedDocument
	RelevanceScore int `json:"relevanceScore"`
}

// SourceRef 返回给前端的内容来源引用
type SourceRef struct {
	Title    string       `json:"title"`
	Type     DocumentType `json:"type"`
	CourseID string       `json:"courseId"`
}
