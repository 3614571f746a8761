package service

import (
	"context"
	"edumind_backend/internal/model"
	"edumind_backend/internal/repository"
	"edumind_backend/internal/util"
	"edumind_backend/pkg/logger"
	"edumind_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testGeneratorSystemPrompt = "你是一个教育测评专家，只输出 JSON，不要输出任何解释文字。"

// testSchema 校验生成的测试至少包含一道结构完整的题目
const testSchema = `{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["question", "correctAnswer"],
				"properties": {
					"question": {"type": "string", "minLength": 1},
					"correctAnswer": {"type": "string"}
				}
			}
		}
	}
}`

const analysisSchema = `{
	"type": "object",
	"required": ["overallScore", "skillAssessment", "detailedAnalysis"],
	"properties": {
		"overallScore": {"type": "integer", "minimum": 0, "maximum": 100},
		"skillAssessment": {"type": "object"},
		"detailedAnalysis": {"type": "object"}
	}
}`

const roadmapSchema = `{
	"type": "object",
	"required": ["title", "phases"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"phases": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title", "modules"]
			}
		}
	}
}`

// AdaptiveTestService 自适应测试编排：生成、判卷分析、个性化路线图。
// 生成服务不可用或响应不合规时全部走确定性降级结构，接口不向上抛错。
type AdaptiveTestService struct {
	ai        TextGenerator
	breaker   *Breaker
	sessions  SessionStore
	search    *SearchService
	scheduler *SchedulerService
	results   *repository.TestResultRepository
}

func NewAdaptiveTestService(
	ai TextGenerator,
	breaker *Breaker,
	sessions SessionStore,
	search *SearchService,
	scheduler *SchedulerService,
	results *repository.TestResultRepository,
) *AdaptiveTestService {
	return &AdaptiveTestService{
		ai:        ai,
		breaker:   breaker,
		sessions:  sessions,
		search:    search,
		scheduler: scheduler,
		results:   results,
	}
}

// GenerateAdaptiveTest 为用户生成一份新测试并开启会话。
// 同一用户重复生成会覆盖之前未完成的会话。
func (s *AdaptiveTestService) GenerateAdaptiveTest(ctx context.Context, userID string, goals []string, skillLevel string) (*model.GeneratedTest, error) {
	test := s.generateTest(ctx, goals, skillLevel)
	normalizeQuestions(test)

	testID := uuid.New().String()
	session := &model.AdaptiveTestSession{
		UserID:  userID,
		TestID:  testID,
		Test:    *test,
		Started: time.Now(),
	}
	if err := s.sessions.Set(ctx, userID, session); err != nil {
		return nil, err
	}

	return &model.GeneratedTest{
		TestID:       testID,
		Test:         *test,
		Instructions: "请根据自己的实际水平独立作答，不确定的题目可以跳过。测评结果只用于生成你的个性化学习路线，不计入课程成绩。",
	}, nil
}

func (s *AdaptiveTestService) generateTest(ctx context.Context, goals []string, skillLevel string) *model.AdaptiveTest {
	if !s.breaker.Allow() {
		return fallbackTest(goals, skillLevel)
	}

	start := time.Now()
	raw, err := s.ai.Chat(ctx, buildTestPrompt(goals, skillLevel, s.contentOutline()), testGeneratorSystemPrompt)
	if err != nil {
		s.tripOnTransportFailure(err, "test_generate")
		monitoring.ObserveGeneration("test_generate", "fallback", time.Since(start))
		return fallbackTest(goals, skillLevel)
	}

	var test model.AdaptiveTest
	if err := decodeValidated(raw, testSchema, &test); err != nil {
		logger.Log.Warn("测试生成响应不合规，使用默认测试",
			zap.Error(err))
		monitoring.ObserveGeneration("test_generate", "fallback", time.Since(start))
		return fallbackTest(goals, skillLevel)
	}

	monitoring.ObserveGeneration("test_generate", "ok", time.Since(start))
	return &test
}

// ProcessTestResults 判卷并生成能力分析。
// 无活动会话返回 ErrSessionNotFound；重复提交覆盖之前的结果。
func (s *AdaptiveTestService) ProcessTestResults(ctx context.Context, userID, testID string, answers map[string]string) (*model.TestAnalysisReply, error) {
	session, ok := s.sessions.Get(ctx, userID)
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if session.TestID != testID {
		return nil, util.ErrTestIDMismatch
	}

	analysis := s.analyzeResults(ctx, session, answers)

	now := time.Now()
	session.Completed = true
	session.Answers = answers
	session.Analysis = analysis
	session.CompletedAt = &now
	if err := s.sessions.Set(ctx, userID, session); err != nil {
		return nil, err
	}

	s.persistResult(userID, testID, analysis)

	return &model.TestAnalysisReply{
		Analysis:           analysis,
		RecommendedContent: s.recommendContent(analysis),
	}, nil
}

func (s *AdaptiveTestService) analyzeResults(ctx context.Context, session *model.AdaptiveTestSession, answers map[string]string) *model.AnalysisResult {
	if !s.breaker.Allow() {
		return fallbackAnalysis()
	}

	start := time.Now()
	raw, err := s.ai.Chat(ctx, buildAnalysisPrompt(session, answers), testGeneratorSystemPrompt)
	if err != nil {
		s.tripOnTransportFailure(err, "test_analyze")
		monitoring.ObserveGeneration("test_analyze", "fallback", time.Since(start))
		return fallbackAnalysis()
	}

	var analysis model.AnalysisResult
	if err := decodeValidated(raw, analysisSchema, &analysis); err != nil {
		logger.Log.Warn("测试分析响应不合规，使用默认分析",
			zap.Error(err))
		monitoring.ObserveGeneration("test_analyze", "fallback", time.Since(start))
		return fallbackAnalysis()
	}

	monitoring.ObserveGeneration("test_analyze", "ok", time.Since(start))
	return &analysis
}

// GeneratePersonalizedRoadmap 基于分析结果生成学习路线图。
// 无论来自生成服务还是降级结构，返回前都会经过时间效率优化。
func (s *AdaptiveTestService) GeneratePersonalizedRoadmap(ctx context.Context, userID string, analysis *model.AnalysisResult, goals []string) (*model.Roadmap, error) {
	roadmap := s.generateRoadmap(ctx, analysis, goals)
	if roadmap.RoadmapID == "" {
		roadmap.RoadmapID = uuid.New().String()
	}
	return s.scheduler.OptimizeForTimeEfficiency(roadmap, analysis), nil
}

func (s *AdaptiveTestService) generateRoadmap(ctx context.Context, analysis *model.AnalysisResult, goals []string) *model.Roadmap {
	if !s.breaker.Allow() {
		return fallbackRoadmap(goals)
	}

	start := time.Now()
	raw, err := s.ai.Chat(ctx, buildRoadmapPrompt(analysis, goals, s.contentOutline()), testGeneratorSystemPrompt)
	if err != nil {
		s.tripOnTransportFailure(err, "roadmap_generate")
		monitoring.ObserveGeneration("roadmap_generate", "fallback", time.Since(start))
		return fallbackRoadmap(goals)
	}

	var roadmap model.Roadmap
	if err := decodeValidated(raw, roadmapSchema, &roadmap); err != nil {
		logger.Log.Warn("路线图生成响应不合规，使用默认路线图",
			zap.Error(err))
		monitoring.ObserveGeneration("roadmap_generate", "fallback", time.Since(start))
		return fallbackRoadmap(goals)
	}

	monitoring.ObserveGeneration("roadmap_generate", "ok", time.Since(start))
	return &roadmap
}

// tripOnTransportFailure 只有连通性故障才熔断，
// 响应内容不合规不算服务不可用
func (s *AdaptiveTestService) tripOnTransportFailure(err error, operation string) {
	if errors.Is(err, util.ErrGenerationFailed) {
		s.breaker.Trip()
		logger.Log.Warn("生成服务不可用，熔断器打开",
			zap.String("operation", operation),
			zap.Error(err))
	}
}

func (s *AdaptiveTestService) persistResult(userID, testID string, analysis *model.AnalysisResult) {
	if s.results == nil {
		return
	}

	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	record := &model.TestResultRecord{
		UserID:           userID,
		TestID:           testID,
		OverallScore:     analysis.OverallScore,
		RecommendedLevel: analysis.SkillAssessment.RecommendedLevel,
		RecommendedPace:  analysis.DetailedAnalysis.RecommendedPace,
		AnalysisJSON:     analysisJSON,
	}
	if err := s.results.Create(record); err != nil {
		// 落库失败不影响接口返回，留痕即可
		logger.Log.Error("测试结果落库失败",
			zap.String("userId", userID),
			zap.Error(err))
	}
}

// TestHistory 按完成时间倒序返回用户的历史测试结果
func (s *AdaptiveTestService) TestHistory(userID string) ([]model.TestResultRecord, error) {
	if s.results == nil {
		return []model.TestResultRecord{}, nil
	}
	return s.results.FindByUserID(userID)
}

// LatestResult 返回用户最近一次落库的测试结果
func (s *AdaptiveTestService) LatestResult(userID string) (*model.TestResultRecord, error) {
	if s.results == nil {
		return nil, util.ErrNoTestResults
	}
	record, err := s.results.FindLatestByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNoTestResults
	}
	return record, err
}

func (s *AdaptiveTestService) recommendContent(analysis *model.AnalysisResult) []*model.SearchResult {
	skills := append([]string{}, analysis.SkillAssessment.Weaknesses...)
	skills = append(skills, analysis.SkillAssessment.KnowledgeGaps...)
	return resultPointers(s.search.RecommendForSkills(skills, DefaultSearchLimit))
}

// decodeValidated 提取文本中的 JSON，先过 schema 校验再反序列化
func decodeValidated(raw, schema string, out interface{}) error {
	jsonText := util.ExtractJSONBlock(raw)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(jsonText),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrMalformedResponse, err)
	}
	if !result.Valid() {
		return fmt.Errorf("%w: %v", util.ErrMalformedResponse, result.Errors())
	}

	if err := json.Unmarshal([]byte(jsonText), out); err != nil {
		return fmt.Errorf("%w: %v", util.ErrMalformedResponse, err)
	}
	return nil
}

// normalizeQuestions 补全生成结果中缺失的题号与限时
func normalizeQuestions(test *model.AdaptiveTest) {
	for i := range test.Questions {
		q := &test.Questions[i]
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if q.Type == "" {
			q.Type = model.MultipleChoice
		}
		if q.Difficulty == "" {
			q.Difficulty = model.Intermediate
		}
		if q.TimeLimit <= 0 {
			q.TimeLimit = 120
		}
	}
}

// contentOutline 列出当前索引的课程，作为生成提示词的落地素材
func (s *AdaptiveTestService) contentOutline() string {
	courses := s.search.Content.Index().Courses()
	if len(courses) == 0 {
		return ""
	}

	var b strings.Builder
	for _, c := range courses {
		fmt.Fprintf(&b, "- %s", c.Name)
		if c.Topic != "" {
			fmt.Fprintf(&b, "（%s）", c.Topic)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func buildTestPrompt(goals []string, skillLevel, outline string) string {
	var b strings.Builder
	b.WriteString("为学生生成一份 15-20 题的自适应能力测试，题型覆盖选择题、编程题、场景题和简答题，难度围绕学生当前水平分布。\n")
	fmt.Fprintf(&b, "学生自评水平：%s\n", skillLevel)
	if len(goals) > 0 {
		fmt.Fprintf(&b, "学习目标：%s\n", strings.Join(goals, "、"))
	}
	if outline != "" {
		fmt.Fprintf(&b, "平台现有课程：\n%s", outline)
	}
	b.WriteString(`输出 JSON，结构如下：
{
  "questions": [
    {
      "id": "q1",
      "type": "multiple_choice | code_challenge | scenario | short_answer",
      "difficulty": "beginner | intermediate | advanced",
      "topic": "题目主题",
      "question": "题干",
      "options": ["仅选择题需要"],
      "correctAnswer": "标准答案",
      "explanation": "解析",
      "skillsAssessed": ["考察的技能"],
      "timeLimit": 120
    }
  ]
}`)
	return b.String()
}

func buildAnalysisPrompt(session *model.AdaptiveTestSession, answers map[string]string) string {
	var b strings.Builder
	b.WriteString("根据学生的测试作答情况给出能力分析。逐题对比标准答案，综合判断强弱项与知识缺口。\n\n题目与作答：\n")
	for _, q := range session.Test.Questions {
		fmt.Fprintf(&b, "题目[%s]（%s / %s）：%s\n标准答案：%s\n学生作答：%s\n\n",
			q.ID, q.Topic, q.Difficulty, q.Question, q.CorrectAnswer, answers[q.ID])
	}
	b.WriteString(`输出 JSON，结构如下：
{
  "overallScore": 0,
  "skillAssessment": {
    "strengths": [],
    "weaknesses": [],
    "knowledgeGaps": [],
    "recommendedLevel": "beginner | intermediate | advanced"
  },
  "detailedAnalysis": {
    "topicScores": {"主题": 0},
    "learningStyle": "学习风格",
    "recommendedPace": "fast | medium | slow",
    "estimatedTimeToGoals": "预计达成目标所需时间"
  },
  "personalizedInsights": []
}`)
	return b.String()
}

func buildRoadmapPrompt(analysis *model.AnalysisResult, goals []string, outline string) string {
	var b strings.Builder
	b.WriteString("根据学生的能力分析生成分阶段的个性化学习路线图。薄弱项安排在前期阶段，每个模块给出预估学时。\n")
	if len(goals) > 0 {
		fmt.Fprintf(&b, "学习目标：%s\n", strings.Join(goals, "、"))
	}
	if analysis != nil {
		fmt.Fprintf(&b, "综合得分：%d，推荐级别：%s，推荐节奏：%s\n",
			analysis.OverallScore,
			analysis.SkillAssessment.RecommendedLevel,
			analysis.DetailedAnalysis.RecommendedPace)
		if len(analysis.SkillAssessment.Weaknesses) > 0 {
			fmt.Fprintf(&b, "薄弱项：%s\n", strings.Join(analysis.SkillAssessment.Weaknesses, "、"))
		}
		if len(analysis.SkillAssessment.KnowledgeGaps) > 0 {
			fmt.Fprintf(&b, "知识缺口：%s\n", strings.Join(analysis.SkillAssessment.KnowledgeGaps, "、"))
		}
	}
	if outline != "" {
		fmt.Fprintf(&b, "平台现有课程：\n%s", outline)
	}
	b.WriteString(`输出 JSON，结构如下：
{
  "title": "路线图标题",
  "description": "说明",
  "estimatedDuration": "总时长，如 8 weeks",
  "phases": [
    {
      "phaseId": "phase-1",
      "title": "阶段标题",
      "duration": "阶段时长，如 2-3 weeks",
      "objectives": [],
      "modules": [
        {
          "moduleId": "module-1",
          "title": "模块标题",
          "estimatedTime": "预估学时，如 10 hours",
          "resources": [],
          "assessments": []
        }
      ]
    }
  ],
  "milestones": [{"title": "", "description": "", "targetPhase": "phase-1"}]
}`)
	return b.String()
}

// fallbackTest 生成服务不可用时的固定两题测试
func fallbackTest(goals []string, skillLevel string) *model.AdaptiveTest {
	topic := "编程基础"
	if len(goals) > 0 {
		topic = goals[0]
	}
	if skillLevel == "" {
		skillLevel = string(model.Intermediate)
	}

	return &model.AdaptiveTest{
		Questions: []model.Question{
			{
				ID:         "q1",
				Type:       model.MultipleChoice,
				Difficulty: model.Beginner,
				Topic:      topic,
				Question:   fmt.Sprintf("你目前对「%s」的掌握程度最接近下面哪个描述？", topic),
				Options: []string{
					"完全没有接触过",
					"了解基本概念，缺少实践",
					"能独立完成小型练习",
					"有实际项目经验",
				},
				CorrectAnswer:  "了解基本概念，缺少实践",
				Explanation:    "自评题，用于校准后续题目难度。",
				SkillsAssessed: []string{topic},
				TimeLimit:      60,
			},
			{
				ID:             "q2",
				Type:           model.ShortAnswer,
				Difficulty:     model.Difficulty(skillLevel),
				Topic:          topic,
				Question:       fmt.Sprintf("用自己的话简述你学习「%s」时遇到的最大困难，以及你尝试过的解决方法。", topic),
				CorrectAnswer:  "开放性问题，言之有理即可",
				Explanation:    "开放题，用于了解学习习惯与卡点。",
				SkillsAssessed: []string{topic, "自我认知"},
				TimeLimit:      300,
			},
		},
	}
}

// fallbackAnalysis 默认中间水平分析，保证下游路线图流程可继续
func fallbackAnalysis() *model.AnalysisResult {
	return &model.AnalysisResult{
		OverallScore: 75,
		SkillAssessment: model.SkillAssessment{
			Strengths:        []string{"学习主动性"},
			Weaknesses:       []string{"实践经验"},
			KnowledgeGaps:    []string{"进阶主题"},
			RecommendedLevel: string(model.Intermediate),
		},
		DetailedAnalysis: model.DetailedAnalysis{
			TopicScores:          map[string]int{"综合": 75},
			LearningStyle:        "balanced",
			RecommendedPace:      model.PaceMedium,
			EstimatedTimeToGoals: "8 weeks",
		},
		PersonalizedInsights: []string{
			"智能分析暂时不可用，以下为通用建议。",
			"建议按课程顺序学习，并在每个模块后完成配套练习。",
		},
	}
}

// fallbackRoadmap 单阶段默认路线图，每个学习目标对应一个模块
func fallbackRoadmap(goals []string) *model.Roadmap {
	if len(goals) == 0 {
		goals = []string{"综合学习"}
	}

	modules := make([]model.RoadmapModule, 0, len(goals))
	for i, goal := range goals {
		modules = append(modules, model.RoadmapModule{
			ModuleID:      fmt.Sprintf("module-%d", i+1),
			Title:         goal,
			EstimatedTime: "10 hours",
			Resources:     []string{"课程资料", "配套练习"},
			Assessments:   []string{"模块自测"},
		})
	}

	return &model.Roadmap{
		RoadmapID:         uuid.New().String(),
		Title:             "通用学习路线图",
		Description:       "智能规划暂时不可用，以下为按学习目标生成的基础路线。",
		EstimatedDuration: "4 weeks",
		Phases: []model.Phase{
			{
				PhaseID:    "phase-1",
				Title:      "基础学习",
				Duration:   "4 weeks",
				Objectives: goals,
				Modules:    modules,
			},
		},
		Milestones: []model.Milestone{
			{
				Title:       "完成基础学习",
				Description: "完成所有模块学习并通过自测",
				TargetPhase: "phase-1",
			},
		},
	}
}
