package service

import (
	"context"
	"edumind_backend/internal/util"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGenerator 按预设脚本逐次返回响应
type mockGenerator struct {
	calls     int
	responses []string
	errs      []error
}

func (m *mockGenerator) Chat(_ context.Context, _ string, _ string) (string, error) {
	i := m.calls
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	var resp string
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	return resp, err
}

func transportErr() error {
	return fmt.Errorf("%w: connection refused", util.ErrGenerationFailed)
}

func newTestService(gen TextGenerator) (*AdaptiveTestService, *Breaker) {
	breaker := NewBreaker()
	search := NewSearchService(NewContentService())
	svc := NewAdaptiveTestService(gen, breaker, NewMemorySessionStore(), search, NewSchedulerService(), nil)
	return svc, breaker
}

const validTestJSON = "```json\n" + `{
	"questions": [
		{
			"id": "q1",
			"type": "multiple_choice",
			"difficulty": "beginner",
			"topic": "go",
			"question": "哪个关键字声明变量？",
			"options": ["var", "def", "let", "dim"],
			"correctAnswer": "var",
			"explanation": "var 用于声明变量",
			"skillsAssessed": ["syntax"],
			"timeLimit": 60
		}
	]
}` + "\n```"

func TestGenerateAdaptiveTestFromGenerator(t *testing.T) {
	gen := &mockGenerator{responses: []string{validTestJSON}}
	svc, breaker := newTestService(gen)

	generated, err := svc.GenerateAdaptiveTest(context.Background(), "u1", []string{"go"}, "beginner")
	require.NoError(t, err)

	assert.NotEmpty(t, generated.TestID)
	assert.NotEmpty(t, generated.Instructions)
	require.Len(t, generated.Test.Questions, 1)
	assert.Equal(t, "var", generated.Test.Questions[0].CorrectAnswer)
	assert.Equal(t, BreakerClosed, breaker.State())
}

func TestGenerateAdaptiveTestTransportFailure(t *testing.T) {
	gen := &mockGenerator{errs: []error{transportErr()}}
	svc, breaker := newTestService(gen)

	generated, err := svc.GenerateAdaptiveTest(context.Background(), "u1", []string{"数据库"}, "intermediate")
	require.NoError(t, err)

	// 降级为固定两题测试，熔断器打开
	assert.Len(t, generated.Test.Questions, 2)
	assert.Equal(t, "数据库", generated.Test.Questions[0].Topic)
	assert.Equal(t, BreakerOpen, breaker.State())

	// 熔断后不再触发远端调用
	_, err = svc.GenerateAdaptiveTest(context.Background(), "u1", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateAdaptiveTestMalformedResponse(t *testing.T) {
	gen := &mockGenerator{responses: []string{"抱歉，我无法生成测试。", validTestJSON}}
	svc, breaker := newTestService(gen)

	generated, err := svc.GenerateAdaptiveTest(context.Background(), "u1", nil, "")
	require.NoError(t, err)
	assert.Len(t, generated.Test.Questions, 2)

	// 内容不合规不算连通性故障，熔断器保持关闭
	assert.Equal(t, BreakerClosed, breaker.State())

	generated, err = svc.GenerateAdaptiveTest(context.Background(), "u1", nil, "")
	require.NoError(t, err)
	assert.Len(t, generated.Test.Questions, 1)
	assert.Equal(t, 2, gen.calls)
}

func TestGenerateOverwritesPreviousSession(t *testing.T) {
	gen := &mockGenerator{errs: []error{transportErr()}}
	svc, _ := newTestService(gen)
	ctx := context.Background()

	first, err := svc.GenerateAdaptiveTest(ctx, "u1", nil, "")
	require.NoError(t, err)
	second, err := svc.GenerateAdaptiveTest(ctx, "u1", nil, "")
	require.NoError(t, err)
	require.NotEqual(t, first.TestID, second.TestID)

	// 旧会话已被覆盖
	_, err = svc.ProcessTestResults(ctx, "u1", first.TestID, map[string]string{})
	assert.ErrorIs(t, err, util.ErrTestIDMismatch)
}

func TestProcessTestResultsNoSession(t *testing.T) {
	svc, _ := newTestService(&mockGenerator{})

	_, err := svc.ProcessTestResults(context.Background(), "ghost", "t1", map[string]string{})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestProcessTestResultsFallbackAnalysis(t *testing.T) {
	gen := &mockGenerator{
		responses: []string{validTestJSON},
		errs:      []error{nil, transportErr()},
	}
	svc, breaker := newTestService(gen)
	ctx := context.Background()

	generated, err := svc.GenerateAdaptiveTest(ctx, "u1", []string{"go"}, "beginner")
	require.NoError(t, err)

	answers := map[string]string{"q1": "var"}
	reply, err := svc.ProcessTestResults(ctx, "u1", generated.TestID, answers)
	require.NoError(t, err)

	assert.Equal(t, 75, reply.Analysis.OverallScore)
	assert.Equal(t, "intermediate", reply.Analysis.SkillAssessment.RecommendedLevel)
	assert.Equal(t, BreakerOpen, breaker.State())

	// 会话被标记完成并保留答案
	session, ok := svc.sessions.Get(ctx, "u1")
	require.True(t, ok)
	assert.True(t, session.Completed)
	assert.Equal(t, answers, session.Answers)
	require.NotNil(t, session.CompletedAt)
}

func TestProcessTestResultsWithGeneratedAnalysis(t *testing.T) {
	analysisJSON := "```json\n" + `{
		"overallScore": 88,
		"skillAssessment": {
			"strengths": ["语法"],
			"weaknesses": ["并发"],
			"knowledgeGaps": ["泛型"],
			"recommendedLevel": "advanced"
		},
		"detailedAnalysis": {
			"topicScores": {"go": 88},
			"learningStyle": "hands-on",
			"recommendedPace": "fast",
			"estimatedTimeToGoals": "6 weeks"
		},
		"personalizedInsights": ["基础扎实"]
	}` + "\n```"

	gen := &mockGenerator{responses: []string{validTestJSON, analysisJSON}}
	svc, _ := newTestService(gen)
	ctx := context.Background()

	generated, err := svc.GenerateAdaptiveTest(ctx, "u1", []string{"go"}, "intermediate")
	require.NoError(t, err)

	reply, err := svc.ProcessTestResults(ctx, "u1", generated.TestID, map[string]string{"q1": "var"})
	require.NoError(t, err)

	assert.Equal(t, 88, reply.Analysis.OverallScore)
	assert.Equal(t, "fast", reply.Analysis.DetailedAnalysis.RecommendedPace)
	assert.NotNil(t, reply.RecommendedContent)
}

func TestGeneratePersonalizedRoadmapFallback(t *testing.T) {
	gen := &mockGenerator{errs: []error{transportErr()}}
	svc, _ := newTestService(gen)

	roadmap, err := svc.GeneratePersonalizedRoadmap(context.Background(), "u1", nil, []string{"go", "sql"})
	require.NoError(t, err)

	require.Len(t, roadmap.Phases, 1)
	assert.Len(t, roadmap.Phases[0].Modules, 2)
	assert.Equal(t, "go", roadmap.Phases[0].Modules[0].Title)

	// 降级路线图同样经过时间优化
	assert.True(t, roadmap.AdaptiveFeatures.SpacedRepetition)
	assert.NotEmpty(t, roadmap.AdaptiveFeatures.ForgettingCurveSchedule)
	assert.NotEmpty(t, roadmap.RoadmapID)
}

func TestGeneratePersonalizedRoadmapFastPace(t *testing.T) {
	roadmapJSON := "```json\n" + `{
		"title": "Go 进阶路线",
		"estimatedDuration": "10 weeks",
		"phases": [
			{
				"phaseId": "phase-1",
				"title": "并发专题",
				"duration": "5 weeks",
				"modules": [
					{"moduleId": "m1", "title": "goroutine", "estimatedTime": "10 hours"}
				]
			}
		]
	}` + "\n```"

	gen := &mockGenerator{responses: []string{roadmapJSON}}
	svc, _ := newTestService(gen)

	analysis := fallbackAnalysis()
	analysis.DetailedAnalysis.RecommendedPace = "fast"

	roadmap, err := svc.GeneratePersonalizedRoadmap(context.Background(), "u1", analysis, nil)
	require.NoError(t, err)

	assert.Equal(t, "8 weeks", roadmap.EstimatedDuration)
	assert.Equal(t, "4 weeks", roadmap.Phases[0].Duration)
	assert.Equal(t, "8 hours", roadmap.Phases[0].Modules[0].EstimatedTime)
}

func TestHistoryWithoutResultStore(t *testing.T) {
	svc, _ := newTestService(&mockGenerator{})

	// 未配置落库仓储时返回空列表而非报错
	records, err := svc.TestHistory("u1")
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = svc.LatestResult("u1")
	assert.ErrorIs(t, err, util.ErrNoTestResults)
}
