package service

import (
	"context"
	"edumind_backend/internal/model"
	"edumind_backend/internal/util"
	"edumind_backend/pkg/logger"
	"edumind_backend/pkg/monitoring"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	assistantContextDocs = 3
	excerptMaxLen        = 300
)

const assistantSystemPrompt = "你是一个专业的教育平台智能助教，基于提供的课程资料回答学生问题。" +
	"回答要具体、可执行，并在合适时引用资料中的课程名称。"

// AssistantService 上下文感知的智能助教。
// 远端生成服务不可用时熔断并降级为基于索引内容的本地回答。
type AssistantService struct {
	ai      TextGenerator
	stream  StreamGenerator
	search  *SearchService
	breaker *Breaker
}

func NewAssistantService(ai TextGenerator, stream StreamGenerator, search *SearchService, breaker *Breaker) *AssistantService {
	return &AssistantService{
		ai:      ai,
		stream:  stream,
		search:  search,
		breaker: breaker,
	}
}

// Respond 回答一次提问。保证不返回错误：
// 生成失败时返回降级回答，RelevantContent 与 Sources 始终填充。
func (s *AssistantService) Respond(ctx context.Context, query string, actx model.AssistantContext) *model.AssistantReply {
	if strings.TrimSpace(query) == "" {
		return &model.AssistantReply{
			Response:        "请告诉我你想了解的内容，比如某个课程主题、知识点或学习方法，我会结合课程资料为你解答。",
			RelevantContent: []*model.SearchResult{},
			Sources:         []model.SourceRef{},
		}
	}

	results := s.search.Search(query, assistantContextDocs)
	reply := &model.AssistantReply{
		RelevantContent: resultPointers(results),
		Sources:         sourceRefs(results),
	}

	if !s.breaker.Allow() {
		reply.Response = s.fallbackAnswer(query, results)
		return reply
	}

	start := time.Now()
	answer, err := s.ai.Chat(ctx, s.buildPrompt(query, actx, results), assistantSystemPrompt)
	if err != nil {
		if errors.Is(err, util.ErrGenerationFailed) {
			s.breaker.Trip()
			logger.Log.Warn("生成服务不可用，助教进入降级模式",
				zap.Error(err))
		}
		monitoring.ObserveGeneration("assistant_respond", "fallback", time.Since(start))
		reply.Response = s.fallbackAnswer(query, results)
		return reply
	}

	monitoring.ObserveGeneration("assistant_respond", "ok", time.Since(start))
	reply.Response = answer
	return reply
}

// RespondStream 流式回答，降级路径一次性推送完整文本
func (s *AssistantService) RespondStream(ctx context.Context, query string, actx model.AssistantContext) (<-chan string, []model.SourceRef) {
	results := s.search.Search(query, assistantContextDocs)
	sources := sourceRefs(results)

	if strings.TrimSpace(query) == "" || !s.breaker.Allow() || s.stream == nil {
		out := make(chan string, 1)
		out <- s.Respond(ctx, query, actx).Response
		close(out)
		return out, sources
	}

	chunks, errChan := s.stream.ChatStream(ctx, s.buildPrompt(query, actx, results), assistantSystemPrompt)
	out := make(chan string)

	go func() {
		defer close(out)
		streamed := false
		for chunk := range chunks {
			streamed = true
			out <- chunk
		}
		if err := <-errChan; err != nil {
			if errors.Is(err, util.ErrGenerationFailed) {
				s.breaker.Trip()
			}
			if !streamed {
				out <- s.fallbackAnswer(query, results)
			}
		}
	}()

	return out, sources
}

// buildPrompt 拼装有界提示词：上下文字段可缺省，摘录截断到固定长度
func (s *AssistantService) buildPrompt(query string, actx model.AssistantContext, results []model.SearchResult) string {
	var b strings.Builder

	if actx.CurrentPage != "" {
		fmt.Fprintf(&b, "学生当前页面：%s\n", actx.CurrentPage)
	}
	if actx.UserProgress != "" {
		fmt.Fprintf(&b, "学习进度：%s\n", actx.UserProgress)
	}
	if len(actx.LearningGoals) > 0 {
		fmt.Fprintf(&b, "学习目标：%s\n", strings.Join(actx.LearningGoals, "、"))
	}

	if len(results) > 0 {
		b.WriteString("\n相关课程资料：\n")
		for i, r := range results {
			fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, r.Title, excerpt(r.Content, excerptMaxLen))
		}
	}

	fmt.Fprintf(&b, "学生问题：%s", query)
	return b.String()
}

// fallbackAnswer 本地降级回答：优先用最相关文档摘录，
// 无命中时列出可学习的课程
func (s *AssistantService) fallbackAnswer(query string, results []model.SearchResult) string {
	if len(results) > 0 {
		top := results[0]
		answer := fmt.Sprintf("智能助教暂时不可用，以下是与「%s」最相关的课程资料《%s》的内容摘录：\n\n%s",
			query, top.Title, excerpt(top.Content, excerptMaxLen))
		if len(results) > 1 {
			titles := make([]string, 0, len(results)-1)
			for _, r := range results[1:] {
				titles = append(titles, fmt.Sprintf("《%s》", r.Title))
			}
			answer += fmt.Sprintf("\n\n相关资料：%s", strings.Join(titles, "、"))
		}
		return answer
	}

	courses := s.search.Content.Index().Courses()
	if len(courses) == 0 {
		return fmt.Sprintf("智能助教暂时不可用，且未找到与「%s」相关的课程资料，请稍后再试。", query)
	}

	names := make([]string, 0, len(courses))
	for _, c := range courses {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("智能助教暂时不可用，未找到与「%s」直接相关的资料。当前可学习的课程有：%s。",
		query, strings.Join(names, "、"))
}

func excerpt(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func resultPointers(results []model.SearchResult) []*model.SearchResult {
	out := make([]*model.SearchResult, len(results))
	for i := range results {
		out[i] = &results[i]
	}
	return out
}

func sourceRefs(results []model.SearchResult) []model.SourceRef {
	refs := make([]model.SourceRef, 0, len(results))
	for _, r := range results {
		refs = append(refs, model.SourceRef{
			Title:    r.Title,
			Type:     r.Metadata.Type,
			CourseID: r.Metadata.CourseID,
		})
	}
	return refs
}
