package service

import (
	"edumind_backend/internal/model"
	"edumind_backend/internal/util"
	"math"
	"sort"
)

// spacedRepetitionIntervals 遗忘曲线复习间隔（天）
var spacedRepetitionIntervals = []int{1, 3, 7, 14, 30}

const (
	fastPaceFactor   = 0.8
	easeFloor        = 1.3
	easeCeil         = 3.0
	minIntervalDays  = 1
	maxIntervalDays  = 365
	passThreshold    = 0.6
	defaultEase      = 2.5
	reviewEaseBonus  = 0.15
	lapseEasePenalty = 0.20
)

// SchedulerService 学习路线图的时间优化与间隔复习排程
type SchedulerService struct{}

func NewSchedulerService() *SchedulerService {
	return &SchedulerService{}
}

// OptimizeForTimeEfficiency 对生成的路线图做时间维度加工：
// 始终开启学习技巧标记并附加遗忘曲线复习计划；
// 节奏为 fast 时按固定系数压缩各阶段与模块的预估时长。
func (s *SchedulerService) OptimizeForTimeEfficiency(roadmap *model.Roadmap, analysis *model.AnalysisResult) *model.Roadmap {
	if roadmap == nil {
		return nil
	}

	roadmap.AdaptiveFeatures.SpacedRepetition = true
	roadmap.AdaptiveFeatures.ActiveRecall = true
	roadmap.AdaptiveFeatures.Microlearning = true
	roadmap.AdaptiveFeatures.PomodoroTechnique = true
	roadmap.AdaptiveFeatures.ForgettingCurveSchedule = s.GenerateSpacedRepetitionSchedule(roadmap)

	if analysis != nil && analysis.DetailedAnalysis.RecommendedPace == model.PaceFast {
		roadmap.EstimatedDuration = util.ScaleDurationText(roadmap.EstimatedDuration, fastPaceFactor)
		for pi := range roadmap.Phases {
			phase := &roadmap.Phases[pi]
			phase.Duration = util.ScaleDurationText(phase.Duration, fastPaceFactor)
			for mi := range phase.Modules {
				mod := &phase.Modules[mi]
				mod.EstimatedTime = util.ScaleDurationText(mod.EstimatedTime, fastPaceFactor)
			}
		}
	}

	return roadmap
}

// GenerateSpacedRepetitionSchedule 为路线图中每个模块生成
// 首次学习与五次复习条目。模块起始日按前序模块预估学时
// 折算天数顺延（不足一天按一天计），输出按天数稳定排序。
func (s *SchedulerService) GenerateSpacedRepetitionSchedule(roadmap *model.Roadmap) []model.ScheduleEntry {
	var schedule []model.ScheduleEntry

	day := 1
	for _, phase := range roadmap.Phases {
		for _, mod := range phase.Modules {
			schedule = append(schedule, model.ScheduleEntry{
				Day:      day,
				Type:     model.EntryInitialLearning,
				Content:  mod.Title,
				ModuleID: mod.ModuleID,
			})
			for _, interval := range spacedRepetitionIntervals {
				schedule = append(schedule, model.ScheduleEntry{
					Day:      day + interval,
					Type:     model.EntryReview,
					Content:  mod.Title,
					ModuleID: mod.ModuleID,
					Interval: interval,
				})
			}
			day += moduleDays(mod.EstimatedTime)
		}
	}

	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].Day < schedule[j].Day
	})
	return schedule
}

func moduleDays(estimatedTime string) int {
	days := int(math.Ceil(util.ParseHours(estimatedTime) / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// ReviewState 单个知识点的间隔复习状态
type ReviewState struct {
	Repetition int     `json:"repetition"`
	Interval   int     `json:"interval"` // 天
	EaseFactor float64 `json:"easeFactor"`
}

func NewReviewState() ReviewState {
	return ReviewState{Repetition: 0, Interval: 0, EaseFactor: defaultEase}
}

// CalculateNextReview 简化版 SuperMemo-2：
// 成绩低于及格线时重置为次日复习并调低难度系数，
// 否则按 1 天、6 天、上次间隔乘以难度系数的阶梯拉长间隔。
func (s *SchedulerService) CalculateNextReview(state ReviewState, performance float64) ReviewState {
	next := state
	if next.EaseFactor == 0 {
		next.EaseFactor = defaultEase
	}

	if performance < passThreshold {
		next.Repetition = 0
		next.Interval = 1
		next.EaseFactor -= lapseEasePenalty
	} else {
		next.Repetition++
		switch next.Repetition {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(next.Interval) * next.EaseFactor))
		}
		next.EaseFactor += reviewEaseBonus
	}

	if next.EaseFactor < easeFloor {
		next.EaseFactor = easeFloor
	}
	if next.EaseFactor > easeCeil {
		next.EaseFactor = easeCeil
	}
	if next.Interval < minIntervalDays {
		next.Interval = minIntervalDays
	}
	if next.Interval > maxIntervalDays {
		next.Interval = maxIntervalDays
	}
	return next
}
