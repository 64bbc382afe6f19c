// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"

	"legal-nav-go/internal/model"
	"legal-nav-go/pkg/llm"
	"legal-nav-go/pkg/log"
)

// AnswerGenerator 定义了答案生成协作方的接口：
// 根据查询与上下文分块生成带出处的回答。
type AnswerGenerator interface {
	Generate(ctx context.Context, query string, chunks []model.ChunkDocument) (string, []model.SourceRef, error)
}

type llmAnswerGenerator struct {
	client      llm.Client
	maxTokens   int
	temperature float64
}

// NewAnswerGenerator 创建一个基于 LLM 客户端的答案生成器。
func NewAnswerGenerator(client llm.Client, maxTokens int, temperature float64) AnswerGenerator {
	return &llmAnswerGenerator{
		client:      client,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Generate 构建法律助手提示词并调用 LLM，返回回答与按检索顺序排列的出处。
func (g *llmAnswerGenerator) Generate(ctx context.Context, query string, chunks []model.ChunkDocument) (string, []model.SourceRef, error) {
	prompt := buildPrompt(query, chunks)

	answer, err := g.client.Complete(ctx, prompt, g.maxTokens, g.temperature)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	sources := make([]model.SourceRef, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, model.SourceRef{
			File:    sourceFileLabel(chunk.SourceFile),
			Page:    pageLabel(chunk.Page),
			Snippet: snippet(chunk.Content),
		})
	}

	log.Infof("[AnswerGenerator] 回答生成成功, query: '%s'", truncateForLog(query, 50))
	return answer, sources, nil
}

// buildPrompt 按文档编号拼装上下文并附加作答约束。
func buildPrompt(query string, chunks []model.ChunkDocument) string {
	var contextBuilder strings.Builder
	for i, chunk := range chunks {
		contextBuilder.WriteString(fmt.Sprintf("[Document %d - Source: %s, Page: %s]\n%s\n\n",
			i+1, sourceFileLabel(chunk.SourceFile), pageLabel(chunk.Page), chunk.Content))
	}

	return fmt.Sprintf(`You are a legal document assistant. Your task is to answer questions based solely on the provided legal documents.

CONTEXT DOCUMENTS:
%s
USER QUESTION:
%s

INSTRUCTIONS:
- Provide a clear, accurate answer based on the context documents above
- If the answer isn't in the documents, say so clearly
- Cite which document and page number you're referencing when possible
- Use legal precision in your language
- If multiple documents have relevant information, synthesize them appropriately

ANSWER:`, contextBuilder.String(), query)
}
