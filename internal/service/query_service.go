package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"legal-nav-go/internal/config"
	"legal-nav-go/internal/model"
	"legal-nav-go/internal/repository"
	"legal-nav-go/pkg/embedding"
	"legal-nav-go/pkg/log"
	"legal-nav-go/pkg/vectorstore"
)

// 检索无命中或全部被过滤时返回给用户的固定话术。
const (
	msgNoDocuments = "I couldn't find any relevant documents to answer your question. Please make sure documents have been uploaded to the system."
	msgNoRelevant  = "I found some documents, but none were sufficiently relevant to your question. You may want to rephrase your question or check if the relevant documents have been uploaded."
)

// QueryService 定义了检索问答的核心操作。
// Answer 与 Search 永不向上抛错：任何内部故障都折算为降级结果。
type QueryService interface {
	Answer(ctx context.Context, query string, topK int, filter map[string]interface{}, includeSources bool) *model.QueryResult
	Search(ctx context.Context, query string, topK int, filter map[string]interface{}) []model.SearchResultDTO
}

type queryService struct {
	embeddingClient embedding.Client
	store           vectorstore.Store
	generator       AnswerGenerator
	cacheRepo       repository.AnswerCacheRepository
	retrievalCfg    config.RetrievalConfig
}

// NewQueryService 创建一个新的 QueryService 实例。
func NewQueryService(
	embeddingClient embedding.Client,
	store vectorstore.Store,
	generator AnswerGenerator,
	cacheRepo repository.AnswerCacheRepository,
	retrievalCfg config.RetrievalConfig,
) QueryService {
	return &queryService{
		embeddingClient: embeddingClient,
		store:           store,
		generator:       generator,
		cacheRepo:       cacheRepo,
		retrievalCfg:    retrievalCfg,
	}
}

// Answer 执行完整的检索问答管线：
// 向量化查询 -> 近邻检索 -> 距离阈值过滤 -> 置信度判定 -> 生成回答。
// 内部故障不会中断调用方，统一降级为 confidence = "error" 的结果。
func (s *queryService) Answer(ctx context.Context, query string, topK int, filter map[string]interface{}, includeSources bool) *model.QueryResult {
	if topK <= 0 {
		topK = s.retrievalCfg.TopK
	}
	log.Infof("[QueryService] 收到问答请求, query: '%s', topK: %d", truncateForLog(query, 50), topK)

	cacheKey := repository.CacheKey(query, topK, filter, includeSources)
	if s.cacheRepo != nil {
		if cached, err := s.cacheRepo.Get(ctx, cacheKey); err != nil {
			log.Warnf("[QueryService] 读取答案缓存失败: %v", err)
		} else if cached != nil {
			log.Infof("[QueryService] 答案缓存命中, key: %s", cacheKey)
			return cached
		}
	}

	result, cacheable := s.answer(ctx, query, topK, filter, includeSources)
	if cacheable && s.cacheRepo != nil {
		ttl := time.Duration(s.retrievalCfg.CacheTTLSeconds) * time.Second
		if err := s.cacheRepo.Set(ctx, cacheKey, result, ttl); err != nil {
			log.Warnf("[QueryService] 写入答案缓存失败: %v", err)
		}
	}
	return result
}

func (s *queryService) answer(ctx context.Context, query string, topK int, filter map[string]interface{}, includeSources bool) (*model.QueryResult, bool) {
	retrieved, err := s.retrieve(ctx, query, topK, filter)
	if err != nil {
		log.Errorf("[QueryService] 检索失败, query: '%s', Error: %v", truncateForLog(query, 50), err)
		return errorResult(err), false
	}

	// 索引无任何命中
	if len(retrieved) == 0 {
		return &model.QueryResult{
			Answer:            msgNoDocuments,
			Sources:           []model.SourceRef{},
			Confidence:        model.ConfidenceNone,
			DocumentsSearched: 0,
		}, true
	}

	// 距离阈值过滤：distance <= 1 + similarity_threshold 视为相关
	maxDistance := 1.0 + s.retrievalCfg.SimilarityThreshold
	relevant := make([]model.ScoredChunk, 0, len(retrieved))
	for _, hit := range retrieved {
		if hit.Distance <= maxDistance {
			relevant = append(relevant, hit)
		}
	}

	// 有命中但全部被过滤
	if len(relevant) == 0 {
		log.Infof("[QueryService] %d 个命中全部超出距离阈值 %.2f", len(retrieved), maxDistance)
		return &model.QueryResult{
			Answer:            msgNoRelevant,
			Sources:           []model.SourceRef{},
			Confidence:        model.ConfidenceLow,
			DocumentsSearched: len(retrieved),
		}, true
	}

	confidence := s.classifyConfidence(relevant[0].Distance)

	chunks := make([]model.ChunkDocument, 0, len(relevant))
	for _, hit := range relevant {
		chunks = append(chunks, hit.Doc)
	}

	answer, sources, err := s.generator.Generate(ctx, query, chunks)
	if err != nil {
		log.Errorf("[QueryService] 生成回答失败, query: '%s', Error: %v", truncateForLog(query, 50), err)
		return errorResult(err), false
	}
	if !includeSources {
		sources = []model.SourceRef{}
	}

	relevantCount := len(relevant)
	log.Infof("[QueryService] 问答完成, 检索 %d 命中 %d, 置信度: %s", len(retrieved), relevantCount, confidence)
	return &model.QueryResult{
		Answer:            answer,
		Sources:           sources,
		Confidence:        confidence,
		DocumentsSearched: len(retrieved),
		RelevantDocuments: &relevantCount,
	}, true
}

// Search 返回原始近邻命中，不做阈值过滤，不生成回答。
// 任何故障都折算为空结果。未指定 topK 时使用检索接口自己的默认值。
func (s *queryService) Search(ctx context.Context, query string, topK int, filter map[string]interface{}) []model.SearchResultDTO {
	if topK <= 0 {
		topK = s.retrievalCfg.SearchTopK
	}
	retrieved, err := s.retrieve(ctx, query, topK, filter)
	if err != nil {
		log.Errorf("[QueryService] 原始检索失败, query: '%s', Error: %v", truncateForLog(query, 50), err)
		return []model.SearchResultDTO{}
	}

	results := make([]model.SearchResultDTO, 0, len(retrieved))
	for _, hit := range retrieved {
		results = append(results, model.SearchResultDTO{
			Content:        hit.Doc.Content,
			Metadata:       hit.Doc.Metadata(),
			RelevanceScore: 1.0 - hit.Distance,
			SourceFile:     sourceFileLabel(hit.Doc.SourceFile),
			Page:           pageLabel(hit.Doc.Page),
		})
	}
	return results
}

// retrieve 将查询向量化并按距离升序返回 topK 近邻。
func (s *queryService) retrieve(ctx context.Context, query string, topK int, filter map[string]interface{}) ([]model.ScoredChunk, error) {
	vector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询向量化失败: %w", err)
	}
	hits, err := s.store.Search(ctx, vector, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("向量检索失败: %w", err)
	}
	return hits, nil
}

// classifyConfidence 由最优命中距离推导置信度。
// similarity = 1 - distance，可为负值，负值一律落入 low。
func (s *queryService) classifyConfidence(bestDistance float64) string {
	similarity := 1.0 - bestDistance
	switch {
	case similarity >= s.retrievalCfg.HighConfidence:
		return model.ConfidenceHigh
	case similarity >= s.retrievalCfg.MediumConfidence:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// errorResult 将内部故障折算为降级的问答结果。
func errorResult(err error) *model.QueryResult {
	return &model.QueryResult{
		Answer:            fmt.Sprintf("An error occurred while processing your query: %v", err),
		Sources:           []model.SourceRef{},
		Confidence:        model.ConfidenceError,
		DocumentsSearched: 0,
	}
}

// sourceFileLabel 对缺失的来源文件名做兜底。
func sourceFileLabel(file string) string {
	if file == "" {
		return "Unknown"
	}
	return file
}

// pageLabel 将页码转换为展示字符串，未知页码显示 N/A。
func pageLabel(page int) string {
	if page <= 0 {
		return "N/A"
	}
	return strconv.Itoa(page)
}

// snippet 截取内容前 200 个字符作为出处摘要。
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) > 200 {
		runes = runes[:200]
	}
	return string(runes) + "..."
}

func truncateForLog(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
