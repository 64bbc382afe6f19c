// Package vectorstore 在 Elasticsearch 之上实现向量索引的收纳与检索。
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"legal-nav-go/internal/model"
	"legal-nav-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Store 定义了向量索引协作方的接口。
// 距离约定：非负实数，越小越相似，典型范围 0~2。
type Store interface {
	Insert(ctx context.Context, docs []model.ChunkDocument) ([]string, error)
	Search(ctx context.Context, vector []float32, k int, filter map[string]interface{}) ([]model.ScoredChunk, error)
	GetByMetadata(ctx context.Context, filter map[string]interface{}, limit int) ([]model.ChunkDocument, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type esStore struct {
	client    *elasticsearch.Client
	indexName string
}

// NewStore 创建一个基于 Elasticsearch 的向量索引实例。
func NewStore(client *elasticsearch.Client, indexName string) Store {
	return &esStore{client: client, indexName: indexName}
}

// Insert 将分块文档逐条索引到 Elasticsearch，返回分配的分块 ID。
func (s *esStore) Insert(ctx context.Context, docs []model.ChunkDocument) ([]string, error) {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		docBytes, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("序列化分块文档失败: %w", err)
		}

		req := esapi.IndexRequest{
			Index:      s.indexName,
			DocumentID: doc.ChunkID,
			Body:       bytes.NewReader(docBytes),
			Refresh:    "true",
		}

		res, err := req.Do(ctx, s.client)
		if err != nil {
			return nil, fmt.Errorf("索引分块 %s 失败: %w", doc.ChunkID, err)
		}
		if res.IsError() {
			body := res.String()
			res.Body.Close()
			log.Errorf("[VectorStore] 索引分块到 Elasticsearch 出错: %s", body)
			return nil, errors.New("failed to index chunk document")
		}
		res.Body.Close()
		ids = append(ids, doc.ChunkID)
	}
	return ids, nil
}

// Search 执行 kNN 检索，按距离升序返回至多 k 条命中。
// filter 为元数据等值约束，编译为 knn 子句内的 term 过滤。
func (s *esStore) Search(ctx context.Context, vector []float32, k int, filter map[string]interface{}) ([]model.ScoredChunk, error) {
	knn := map[string]interface{}{
		"field":          "vector",
		"query_vector":   vector,
		"k":              k,
		"num_candidates": k * 10,
	}
	if terms := buildTermFilters(filter); len(terms) > 0 {
		knn["filter"] = map[string]interface{}{
			"bool": map[string]interface{}{"must": terms},
		}
	}

	esQuery := map[string]interface{}{
		"knn":  knn,
		"size": k,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[VectorStore] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.ChunkDocument `json:"_source"`
				Score  float64             `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.ScoredChunk, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, model.ScoredChunk{
			Doc:      hit.Source,
			Distance: scoreToDistance(hit.Score),
		})
	}
	return results, nil
}

// GetByMetadata 只按元数据等值条件查询分块，不涉及向量。
func (s *esStore) GetByMetadata(ctx context.Context, filter map[string]interface{}, limit int) ([]model.ChunkDocument, error) {
	if limit <= 0 {
		limit = 1000
	}
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": buildTermFilters(filter)},
		},
		"sort": []map[string]interface{}{
			{"page": map[string]interface{}{"order": "asc"}},
			{"chunk_index": map[string]interface{}{"order": "asc"}},
		},
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[VectorStore] 元数据查询返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.ChunkDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	docs := make([]model.ChunkDocument, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

// DeleteAll 清空索引中的全部分块。对并发读取不保证事务性。
func (s *esStore) DeleteAll(ctx context.Context) error {
	body := bytes.NewReader([]byte(`{"query":{"match_all":{}}}`))
	res, err := s.client.DeleteByQuery(
		[]string{s.indexName},
		body,
		s.client.DeleteByQuery.WithContext(ctx),
		s.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("清空向量索引失败: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[VectorStore] 清空索引返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return errors.New("failed to clear vector index")
	}
	return nil
}

// Count 返回索引中的分块总数。
func (s *esStore) Count(ctx context.Context) (int, error) {
	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(s.indexName),
	)
	if err != nil {
		return 0, fmt.Errorf("统计向量索引失败: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var countResp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return countResp.Count, nil
}

// buildTermFilters 把等值元数据约束编译为 ES term 子句。
func buildTermFilters(filter map[string]interface{}) []map[string]interface{} {
	if len(filter) == 0 {
		return nil
	}
	terms := make([]map[string]interface{}, 0, len(filter))
	for field, value := range filter {
		terms = append(terms, map[string]interface{}{
			"term": map[string]interface{}{field: value},
		})
	}
	return terms
}

// scoreToDistance 把 ES 的 cosine _score 换算为距离。
// ES 对 cosine 相似度返回 (1+cos)/2 ∈ [0,1]，distance = 1-cos = 2·(1-score)，
// 范围 0~2，越小越相似，与管线的距离阈值约定一致。
func scoreToDistance(score float64) float64 {
	return 2 * (1 - score)
}
