package service

import (
	"bytes"
	"context"

	"legal-nav-go/internal/config"
	"legal-nav-go/internal/model"
	"legal-nav-go/pkg/embedding"
	"legal-nav-go/pkg/llm"
	"legal-nav-go/pkg/log"
	"legal-nav-go/pkg/vectorstore"

	"github.com/gorilla/websocket"
)

// ChatService 定义了流式问答的操作接口。
// 与 Answer 同源的检索与过滤逻辑，但回答以 WebSocket 分块推送。
type ChatService interface {
	StreamAnswer(ctx context.Context, query string, writer llm.MessageWriter) error
}

type chatService struct {
	embeddingClient embedding.Client
	store           vectorstore.Store
	llmClient       llm.Client
	retrievalCfg    config.RetrievalConfig
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	embeddingClient embedding.Client,
	store vectorstore.Store,
	llmClient llm.Client,
	retrievalCfg config.RetrievalConfig,
) ChatService {
	return &chatService{
		embeddingClient: embeddingClient,
		store:           store,
		llmClient:       llmClient,
		retrievalCfg:    retrievalCfg,
	}
}

// messageInterceptor 在透传流式分块的同时累积完整回答，用于日志。
type messageInterceptor struct {
	writer llm.MessageWriter
	buf    bytes.Buffer
}

func (m *messageInterceptor) WriteMessage(messageType int, data []byte) error {
	if messageType == websocket.TextMessage {
		m.buf.Write(data)
	}
	return m.writer.WriteMessage(messageType, data)
}

// StreamAnswer 检索相关分块并以流式方式推送回答。
// 无可用上下文时直接推送固定话术，不调用 LLM。
func (s *chatService) StreamAnswer(ctx context.Context, query string, writer llm.MessageWriter) error {
	log.Infof("[ChatService] 收到流式问答请求, query: '%s'", truncateForLog(query, 50))

	vector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		return err
	}
	retrieved, err := s.store.Search(ctx, vector, s.retrievalCfg.TopK, nil)
	if err != nil {
		return err
	}

	maxDistance := 1.0 + s.retrievalCfg.SimilarityThreshold
	var chunks []model.ChunkDocument
	for _, hit := range retrieved {
		if hit.Distance <= maxDistance {
			chunks = append(chunks, hit.Doc)
		}
	}

	if len(chunks) == 0 {
		msg := msgNoRelevant
		if len(retrieved) == 0 {
			msg = msgNoDocuments
		}
		return writer.WriteMessage(websocket.TextMessage, []byte(msg))
	}

	interceptor := &messageInterceptor{writer: writer}
	if err := s.llmClient.StreamChat(ctx, buildPrompt(query, chunks), interceptor); err != nil {
		return err
	}
	log.Infof("[ChatService] 流式回答完成, 共推送 %d 字节", interceptor.buf.Len())
	return nil
}
