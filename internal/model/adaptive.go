package model

import "time"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	CodeChallenge  QuestionType = "code_challenge"
	Scenario       QuestionType = "scenario"
	ShortAnswer    QuestionType = "short_answer"
)

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

type Question struct {
	ID             string       `json:"id"`
	Type           QuestionType `json:"type"`
	Difficulty     Difficulty   `json:"difficulty"`
	Topic          string       `json:"topic"`
	Question       string       `json:"question"`
	Options        []string     `json:"options,omitempty"`
	CorrectAnswer  string       `json:"correctAnswer"`
	Explanation    string       `json:"explanation"`
	SkillsAssessed []string     `json:"skillsAssessed"`
	TimeLimit      int          `json:"timeLimit"` // 秒
}

type AdaptiveTest struct {
	Questions []Question `json:"questions"`
}

// AdaptiveTestSession 按 userId 保存的测试会话，每个用户最多一个活动会话。
// 仅保证进程生命周期内可用（见 SessionStore 的内存实现）。
type AdaptiveTestSession struct {
	UserID      string            `json:"userId"`
	TestID      string            `json:"testId"`
	Test        AdaptiveTest      `json:"test"`
	Started     time.Time         `json:"started"`
	Completed   bool              `json:"completed"`
	Answers     map[string]string `json:"answers,omitempty"`
	Analysis    *AnalysisResult   `json:"analysis,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

type SkillAssessment struct {
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	KnowledgeGaps    []string `json:"knowledgeGaps"`
	RecommendedLevel string   `json:"recommendedLevel"`
}

type DetailedAnalysis struct {
	TopicScores          map[string]int `json:"topicScores"`
	LearningStyle        string         `json:"learningStyle"`
	RecommendedPace      string         `json:"recommendedPace"` // fast / medium / slow
	EstimatedTimeToGoals string         `json:"estimatedTimeToGoals"`
}

type AnalysisResult struct {
	OverallScore         int              `json:"overallScore"` // 0-100
	SkillAssessment      SkillAssessment  `json:"skillAssessment"`
	DetailedAnalysis     DetailedAnalysis `json:"detailedAnalysis"`
	PersonalizedInsights []string         `json:"personalizedInsights"`
}

const (
	PaceFast   = "fast"
	PaceMedium = "medium"
	PaceSlow   = "slow"
)

// GeneratedTest 测试生成接口的响应体
type GeneratedTest struct {
	TestID       string       `json:"testId"`
	Test         AdaptiveTest `json:"test"`
	Instructions string       `json:"instructions"`
}

// TestAnalysisReply 测试提交后的分析结果与配套内容推荐
type TestAnalysisReply struct {
	Analysis           *AnalysisResult `json:"analysis"`
	RecommendedContent []*SearchResult `json:"recommendedContent"`
}
