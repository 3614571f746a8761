package controller

import (
	"edumind_backend/internal/model"
	"edumind_backend/internal/service"
	"edumind_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AdaptiveTestController struct {
	AdaptiveTest *service.AdaptiveTestService
}

func NewAdaptiveTestController(adaptiveTest *service.AdaptiveTestService) *AdaptiveTestController {
	return &AdaptiveTestController{AdaptiveTest: adaptiveTest}
}

func currentUserID(ctx *gin.Context) (string, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return "", false
	}
	return strconv.FormatUint(uint64(claims.UserID), 10), true
}

type GenerateTestRequest struct {
	Goals      []string `json:"goals"`
	SkillLevel string   `json:"skillLevel"`
}

// GenerateTest godoc
// @Summary 生成自适应测试
// @Description 根据学习目标与自评水平生成测试，重复调用会覆盖未完成的会话
// @Tags 自适应测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body GenerateTestRequest true "学习目标与水平"
// @Success 200 {object} util.Response{data=model.GeneratedTest}
// @Router /api/adaptive-test/generate [post]
func (c *AdaptiveTestController) GenerateTest(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	generated, err := c.AdaptiveTest.GenerateAdaptiveTest(ctx.Request.Context(), userID, req.Goals, req.SkillLevel)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, generated)
}

type SubmitTestRequest struct {
	TestID  string            `json:"testId" binding:"required"`
	Answers map[string]string `json:"answers" binding:"required"`
}

// SubmitTest godoc
// @Summary 提交测试答案
// @Description 判卷并返回能力分析与内容推荐，重复提交以最后一次为准
// @Tags 自适应测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body SubmitTestRequest true "测试答案"
// @Success 200 {object} util.Response{data=model.TestAnalysisReply}
// @Failure 404 {object} util.Response "无活动测试会话"
// @Router /api/adaptive-test/submit [post]
func (c *AdaptiveTestController) SubmitTest(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.AdaptiveTest.ProcessTestResults(ctx.Request.Context(), userID, req.TestID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx, util.ErrSessionNotFound.Error())
		case errors.Is(err, util.ErrTestIDMismatch):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, reply)
}

// TestHistory godoc
// @Summary 历史测试结果
// @Description 按完成时间倒序返回当前用户的测试结果，供教师端报表使用
// @Tags 自适应测试
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TestResultRecord}
// @Router /api/adaptive-test/results [get]
func (c *AdaptiveTestController) TestHistory(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.AdaptiveTest.TestHistory(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// LatestResult godoc
// @Summary 最近一次测试结果
// @Tags 自适应测试
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.TestResultRecord}
// @Failure 404 {object} util.Response "暂无测试结果"
// @Router /api/adaptive-test/results/latest [get]
func (c *AdaptiveTestController) LatestResult(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	record, err := c.AdaptiveTest.LatestResult(userID)
	if err != nil {
		if errors.Is(err, util.ErrNoTestResults) {
			util.NotFound(ctx, "暂无测试结果")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

type RoadmapRequest struct {
	Analysis *model.AnalysisResult `json:"analysis"`
	Goals    []string              `json:"goals"`
}

// GenerateRoadmap godoc
// @Summary 生成个性化学习路线图
// @Description 基于能力分析生成路线图，返回前附加间隔复习计划与时间优化
// @Tags 自适应测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body RoadmapRequest true "能力分析与学习目标"
// @Success 200 {object} util.Response{data=model.Roadmap}
// @Router /api/adaptive-test/roadmap [post]
func (c *AdaptiveTestController) GenerateRoadmap(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req RoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	roadmap, err := c.AdaptiveTest.GeneratePersonalizedRoadmap(ctx.Request.Context(), userID, req.Analysis, req.Goals)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, roadmap)
}
