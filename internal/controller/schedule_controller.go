package controller

import (
	"edumind_backend/internal/model"
	"edumind_backend/internal/service"
	"edumind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScheduleController struct {
	Scheduler *service.SchedulerService
}

func NewScheduleController(scheduler *service.SchedulerService) *ScheduleController {
	return &ScheduleController{Scheduler: scheduler}
}

type OptimizeRoadmapRequest struct {
	Roadmap  model.Roadmap         `json:"roadmap" binding:"required"`
	Analysis *model.AnalysisResult `json:"analysis"`
}

// OptimizeRoadmap godoc
// @Summary 路线图时间优化
// @Description 为路线图附加遗忘曲线复习计划，节奏为 fast 时压缩预估时长
// @Tags 学习排程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body OptimizeRoadmapRequest true "路线图与能力分析"
// @Success 200 {object} util.Response{data=model.Roadmap}
// @Router /api/schedule/roadmap [post]
func (c *ScheduleController) OptimizeRoadmap(ctx *gin.Context) {
	var req OptimizeRoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.Scheduler.OptimizeForTimeEfficiency(&req.Roadmap, req.Analysis))
}

type NextReviewRequest struct {
	State       service.ReviewState `json:"state"`
	Performance float64             `json:"performance" binding:"min=0,max=1"`
}

// NextReview godoc
// @Summary 计算下次复习时间
// @Description 根据本次复习成绩更新间隔复习状态
// @Tags 学习排程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body NextReviewRequest true "当前复习状态与成绩"
// @Success 200 {object} util.Response{data=service.ReviewState}
// @Router /api/schedule/review [post]
func (c *ScheduleController) NextReview(ctx *gin.Context) {
	var req NextReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.Scheduler.CalculateNextReview(req.State, req.Performance))
}
