package controller

import (
	"edumind_backend/internal/model"
	"edumind_backend/internal/service"
	"edumind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssistantController struct {
	Assistant *service.AssistantService
}

func NewAssistantController(assistant *service.AssistantService) *AssistantController {
	return &AssistantController{Assistant: assistant}
}

// AskRequest 助教提问请求，上下文字段全部可选
type AskRequest struct {
	Query   string                 `json:"query"`
	Context model.AssistantContext `json:"context"`
}

// Ask godoc
// @Summary 智能助教问答
// @Description 结合课程内容与学习上下文回答问题，生成服务不可用时返回降级回答
// @Tags 助教
// @Accept  json
// @Produce  json
// @Param   body body AskRequest true "问题与上下文"
// @Success 200 {object} util.Response{data=model.AssistantReply}
// @Router /api/assistant/ask [post]
func (c *AssistantController) Ask(ctx *gin.Context) {
	var req AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply := c.Assistant.Respond(ctx.Request.Context(), req.Query, req.Context)
	util.Success(ctx, reply)
}

// AskStream godoc
// @Summary 智能助教流式问答
// @Description SSE 推送回答内容，先发送 sources 事件再逐段发送 message
// @Tags 助教
// @Accept  json
// @Produce  text/event-stream
// @Param   body body AskRequest true "问题与上下文"
// @Success 200 {string} string "SSE 事件流"
// @Router /api/assistant/ask/stream [post]
func (c *AssistantController) AskStream(ctx *gin.Context) {
	var req AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	chunks, sources := c.Assistant.RespondStream(ctx.Request.Context(), req.Query, req.Context)

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("Transfer-Encoding", "chunked")

	ctx.SSEvent("sources", sources)
	ctx.Writer.Flush()

	for content := range chunks {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}
