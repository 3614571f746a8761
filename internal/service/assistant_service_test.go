package service

import (
	"context"
	"edumind_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssistantWithDocs(gen TextGenerator, docs ...*model.IndexedDocument) (*AssistantService, *Breaker) {
	breaker := NewBreaker()
	search := NewSearchService(indexWithDocs(docs...))
	return NewAssistantService(gen, nil, search, breaker), breaker
}

func gitDoc() *model.IndexedDocument {
	return &model.IndexedDocument{
		ID:      "course:git",
		Title:   "Git 版本控制",
		Content: "分支 合并 回滚 远程仓库协作",
		Metadata: model.DocumentMetadata{
			CourseID:   "git",
			CourseName: "Git 版本控制",
			Type:       model.DocCourse,
		},
	}
}

func TestRespondEmptyQuery(t *testing.T) {
	gen := &mockGenerator{}
	svc, _ := newAssistantWithDocs(gen, gitDoc())

	reply := svc.Respond(context.Background(), "   ", model.AssistantContext{})

	assert.NotEmpty(t, reply.Response)
	assert.Empty(t, reply.RelevantContent)
	assert.Empty(t, reply.Sources)
	// 空问题不触发远端调用
	assert.Equal(t, 0, gen.calls)
}

func TestRespondWithGeneratedAnswer(t *testing.T) {
	gen := &mockGenerator{responses: []string{"分支可以通过 git merge 合并。"}}
	svc, breaker := newAssistantWithDocs(gen, gitDoc())

	reply := svc.Respond(context.Background(), "远程仓库", model.AssistantContext{
		CurrentPage:   "/courses/git",
		LearningGoals: []string{"掌握 git"},
	})

	assert.Equal(t, "分支可以通过 git merge 合并。", reply.Response)
	require.Len(t, reply.Sources, 1)
	assert.Equal(t, "Git 版本控制", reply.Sources[0].Title)
	assert.Equal(t, model.DocCourse, reply.Sources[0].Type)
	assert.Equal(t, BreakerClosed, breaker.State())
}

func TestRespondFallbackOnTransportFailure(t *testing.T) {
	gen := &mockGenerator{errs: []error{transportErr()}}
	svc, breaker := newAssistantWithDocs(gen, gitDoc())

	reply := svc.Respond(context.Background(), "远程仓库", model.AssistantContext{})

	// 降级回答引用最相关文档
	assert.Contains(t, reply.Response, "Git 版本控制")
	assert.Len(t, reply.Sources, 1)
	assert.Equal(t, BreakerOpen, breaker.State())

	// 熔断后直接走降级，不再调用远端
	reply = svc.Respond(context.Background(), "分支", model.AssistantContext{})
	assert.NotEmpty(t, reply.Response)
	assert.Equal(t, 1, gen.calls)
}

func TestRespondFallbackListsOtherMatchedTitles(t *testing.T) {
	docs := []*model.IndexedDocument{
		{
			ID:       "course:docker",
			Title:    "Docker 入门",
			Content:  "docker 镜像 容器 docker compose",
			Metadata: model.DocumentMetadata{CourseID: "docker", Type: model.DocCourse},
		},
		{
			ID:       "module:docker:1",
			Title:    "Docker 网络",
			Content:  "docker 网络模式",
			Metadata: model.DocumentMetadata{CourseID: "docker", Type: model.DocModule},
		},
		{
			ID:       "doc:docker:README.md",
			Title:    "Docker 速查",
			Content:  "docker 常用命令",
			Metadata: model.DocumentMetadata{CourseID: "docker", Type: model.DocDocument},
		},
	}
	gen := &mockGenerator{errs: []error{transportErr()}}
	svc, _ := newAssistantWithDocs(gen, docs...)

	reply := svc.Respond(context.Background(), "docker", model.AssistantContext{})

	// 除摘录的首条外，其余命中文档的标题也要出现在降级回答里
	assert.Contains(t, reply.Response, "Docker 网络")
	assert.Contains(t, reply.Response, "Docker 速查")
	assert.Contains(t, reply.Response, "相关资料")
}

func TestRespondFallbackWithoutMatches(t *testing.T) {
	gen := &mockGenerator{errs: []error{transportErr()}}
	svc, _ := newAssistantWithDocs(gen, gitDoc())
	// 先制造熔断
	svc.Respond(context.Background(), "分支", model.AssistantContext{})

	reply := svc.Respond(context.Background(), "kubernetes", model.AssistantContext{})

	assert.Contains(t, reply.Response, "暂时不可用")
	assert.Empty(t, reply.Sources)
	assert.Empty(t, reply.RelevantContent)
}

func TestRespondSourcesAlwaysPopulated(t *testing.T) {
	gen := &mockGenerator{responses: []string{"回答"}}
	svc, _ := newAssistantWithDocs(gen, gitDoc())

	reply := svc.Respond(context.Background(), "远程仓库", model.AssistantContext{})
	require.Len(t, reply.RelevantContent, 1)
	assert.Equal(t, "course:git", reply.RelevantContent[0].ID)
	assert.Len(t, reply.Sources, 1)
}
