package model

type RoadmapModule struct {
	ModuleID      string   `json:"moduleId"`
	Title         string   `json:"title"`
	EstimatedTime string   `json:"estimatedTime"` // 自由文本，如 "4 hours"
	Resources     []string `json:"resources"`
	Assessments   []string `json:"assessments"`
}

type Phase struct {
	PhaseID    string          `json:"phaseId"`
	Title      string          `json:"title"`
	Duration   string          `json:"duration"` // 自由文本，如 "2-3 weeks"
	Objectives []string        `json:"objectives"`
	Modules    []RoadmapModule `json:"modules"`
}

type Milestone struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetPhase string `json:"targetPhase,omitempty"`
}

// AdaptiveFeatures 学习技巧标记；时间优化步骤会附加遗忘曲线复习计划
type AdaptiveFeatures struct {
	SpacedRepetition        bool            `json:"spacedRepetition"`
	ActiveRecall            bool            `json:"activeRecall"`
	Microlearning           bool            `json:"microlearning"`
	PomodoroTechnique       bool            `json:"pomodoroTechnique"`
	ForgettingCurveSchedule []ScheduleEntry `json:"forgettingCurveSchedule,omitempty"`
}

type Roadmap struct {
	RoadmapID         string           `json:"roadmapId"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	EstimatedDuration string           `json:"estimatedDuration"`
	Phases            []Phase          `json:"phases"`
	AdaptiveFeatures  AdaptiveFeatures `json:"adaptiveFeatures"`
	Milestones        []Milestone      `json:"milestones"`
}

type ScheduleEntryType string

const (
	EntryInitialLearning ScheduleEntryType = "initial_learning"
	EntryReview          ScheduleEntryType = "review"
)

// ScheduleEntry 派生只读数据，按 roadmap 每次重新生成；输出按 day 升序
type ScheduleEntry struct {
	Day      int               `json:"day"` // 相对 roadmap 起点的偏移
	Type     ScheduleEntryType `json:"type"`
	Content  string            `json:"content"`
	ModuleID string            `json:"moduleId"`
	Interval int               `json:"interval,omitempty"`
}
