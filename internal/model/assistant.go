package model

// AssistantContext 随提问提交的页面与学习上下文，全部可选
type AssistantContext struct {
	CurrentPage   string   `json:"currentPage,omitempty"`
	UserProgress  string   `json:"userProgress,omitempty"`
	LearningGoals []string `json:"learningGoals,omitempty"`
}

// AssistantReply 助教回答及其引用来源
type AssistantReply struct {
	Response        string          `json:"response"`
	RelevantContent []*SearchResult `json:"relevantContent"`
	Sources         []SourceRef     `json:"sources"`
}
