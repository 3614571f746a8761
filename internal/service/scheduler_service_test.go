package service

import (
	"edumind_backend/internal/model"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoadmap() *model.Roadmap {
	return &model.Roadmap{
		RoadmapID:         "r1",
		Title:             "测试路线图",
		EstimatedDuration: "5 weeks",
		Phases: []model.Phase{
			{
				PhaseID:  "phase-1",
				Title:    "基础",
				Duration: "2 weeks",
				Modules: []model.RoadmapModule{
					{ModuleID: "m1", Title: "模块一", EstimatedTime: "10 hours"},
					{ModuleID: "m2", Title: "模块二", EstimatedTime: "48 hours"},
				},
			},
		},
	}
}

func TestSpacedRepetitionScheduleOffsets(t *testing.T) {
	s := NewSchedulerService()
	roadmap := &model.Roadmap{
		Phases: []model.Phase{
			{Modules: []model.RoadmapModule{{ModuleID: "m1", Title: "模块一"}}},
		},
	}

	schedule := s.GenerateSpacedRepetitionSchedule(roadmap)
	require.Len(t, schedule, 6)

	days := make([]int, 0, len(schedule))
	for _, e := range schedule {
		days = append(days, e.Day)
	}
	assert.Equal(t, []int{1, 2, 4, 8, 15, 31}, days)

	assert.Equal(t, model.EntryInitialLearning, schedule[0].Type)
	assert.Equal(t, 0, schedule[0].Interval)
	for _, e := range schedule[1:] {
		assert.Equal(t, model.EntryReview, e.Type)
		assert.Equal(t, "m1", e.ModuleID)
	}
	assert.Equal(t, 30, schedule[5].Interval)
}

func TestSpacedRepetitionScheduleModuleAdvance(t *testing.T) {
	s := NewSchedulerService()
	schedule := s.GenerateSpacedRepetitionSchedule(sampleRoadmap())
	require.Len(t, schedule, 12)

	byModule := map[string][]int{}
	for _, e := range schedule {
		byModule[e.ModuleID] = append(byModule[e.ModuleID], e.Day)
	}
	for _, days := range byModule {
		sort.Ints(days)
	}

	// 模块一从第 1 天开始，10 小时折合 1 天，模块二从第 2 天开始
	assert.Equal(t, []int{1, 2, 4, 8, 15, 31}, byModule["m1"])
	assert.Equal(t, []int{2, 3, 5, 9, 16, 32}, byModule["m2"])

	// 输出本身按天数升序
	assert.True(t, sort.SliceIsSorted(schedule, func(i, j int) bool {
		return schedule[i].Day < schedule[j].Day
	}))
}

func TestOptimizeForTimeEfficiencyFastPace(t *testing.T) {
	s := NewSchedulerService()
	analysis := &model.AnalysisResult{
		DetailedAnalysis: model.DetailedAnalysis{RecommendedPace: model.PaceFast},
	}

	roadmap := s.OptimizeForTimeEfficiency(sampleRoadmap(), analysis)

	assert.Equal(t, "4 weeks", roadmap.EstimatedDuration)
	assert.Equal(t, "2 weeks", roadmap.Phases[0].Duration) // 1.6 向上取整
	assert.Equal(t, "8 hours", roadmap.Phases[0].Modules[0].EstimatedTime)
	assert.Equal(t, "39 hours", roadmap.Phases[0].Modules[1].EstimatedTime)

	assert.True(t, roadmap.AdaptiveFeatures.SpacedRepetition)
	assert.True(t, roadmap.AdaptiveFeatures.PomodoroTechnique)
	assert.NotEmpty(t, roadmap.AdaptiveFeatures.ForgettingCurveSchedule)
}

func TestOptimizeForTimeEfficiencyMediumPaceKeepsDurations(t *testing.T) {
	s := NewSchedulerService()
	analysis := &model.AnalysisResult{
		DetailedAnalysis: model.DetailedAnalysis{RecommendedPace: model.PaceMedium},
	}

	roadmap := s.OptimizeForTimeEfficiency(sampleRoadmap(), analysis)

	assert.Equal(t, "5 weeks", roadmap.EstimatedDuration)
	assert.Equal(t, "10 hours", roadmap.Phases[0].Modules[0].EstimatedTime)
	// 学习技巧与复习计划不依赖节奏
	assert.True(t, roadmap.AdaptiveFeatures.ActiveRecall)
	assert.NotEmpty(t, roadmap.AdaptiveFeatures.ForgettingCurveSchedule)
}

func TestOptimizeForTimeEfficiencyNilAnalysis(t *testing.T) {
	s := NewSchedulerService()
	roadmap := s.OptimizeForTimeEfficiency(sampleRoadmap(), nil)

	assert.Equal(t, "5 weeks", roadmap.EstimatedDuration)
	assert.NotEmpty(t, roadmap.AdaptiveFeatures.ForgettingCurveSchedule)
	assert.Nil(t, s.OptimizeForTimeEfficiency(nil, nil))
}

func TestCalculateNextReview(t *testing.T) {
	s := NewSchedulerService()

	state := NewReviewState()

	// 第一次通过：间隔 1 天
	state = s.CalculateNextReview(state, 0.9)
	assert.Equal(t, 1, state.Repetition)
	assert.Equal(t, 1, state.Interval)
	assert.InDelta(t, 2.65, state.EaseFactor, 0.001)

	// 第二次通过：间隔 6 天
	state = s.CalculateNextReview(state, 0.8)
	assert.Equal(t, 6, state.Interval)

	// 第三次起按难度系数拉长
	state = s.CalculateNextReview(state, 0.8)
	assert.Equal(t, 17, state.Interval) // round(6 * 2.8)

	// 不及格重置为次日并降低难度系数
	state = s.CalculateNextReview(state, 0.3)
	assert.Equal(t, 0, state.Repetition)
	assert.Equal(t, 1, state.Interval)
	assert.InDelta(t, 2.75, state.EaseFactor, 0.001)
}

func TestCalculateNextReviewClamps(t *testing.T) {
	s := NewSchedulerService()

	// 难度系数不低于 1.3
	state := ReviewState{Repetition: 0, Interval: 1, EaseFactor: 1.35}
	state = s.CalculateNextReview(state, 0.1)
	assert.Equal(t, 1.3, state.EaseFactor)

	// 间隔不超过 365 天
	state = ReviewState{Repetition: 5, Interval: 300, EaseFactor: 2.0}
	state = s.CalculateNextReview(state, 0.9)
	assert.Equal(t, 365, state.Interval)

	// 零值状态自动补默认难度系数
	state = s.CalculateNextReview(ReviewState{}, 0.9)
	assert.InDelta(t, 2.65, state.EaseFactor, 0.001)
}
