package model

// CourseRecord 课程元数据，由内容库目录下的 course.json 解码得到。
// 索引完成后视为只读；重建索引时整体替换，不做局部合并。
type CourseRecord struct {
	CourseID           string         `json:"courseId"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	Topic              string         `json:"topic"`
	Category           string         `json:"category"`
	Technologies       []string       `json:"technologies"`
	Prerequisites      []string       `json:"prerequisites"`
	LearningObjectives []string       `json:"learningObjectives"`
	Modules            []ModuleRecord `json:"modules"`
}

// ModuleRecord 嵌套于 CourseRecord，无独立生命周期
type ModuleRecord struct {
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Content            string         `json:"content"`
	LearningObjectives []string       `json:"learningObjectives"`
	Lessons            []LessonRecord `json:"lessons"`
}

type LessonRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	Duration    string `json:"duration,omitempty"`
}
