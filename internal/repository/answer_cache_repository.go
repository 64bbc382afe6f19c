package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"legal-nav-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// AnswerCacheRepository 定义了查询答案缓存的操作接口。
// 缓存按查询内容寻址；任何文档导入或索引清空都会使整个缓存失效。
type AnswerCacheRepository interface {
	Get(ctx context.Context, key string) (*model.QueryResult, error)
	Set(ctx context.Context, key string, result *model.QueryResult, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

type redisAnswerCacheRepository struct {
	redisClient *redis.Client
}

// NewAnswerCacheRepository 创建一个新的 AnswerCacheRepository 实例。
func NewAnswerCacheRepository(redisClient *redis.Client) AnswerCacheRepository {
	return &redisAnswerCacheRepository{redisClient: redisClient}
}

// CacheKey 根据查询参数生成稳定的缓存键。
// filter 先按键名排序再参与哈希，保证同一约束集合得到同一个键。
func CacheKey(query string, topK int, filter map[string]interface{}, includeSources bool) string {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	fmt.Fprintf(h, "q=%s|k=%d|s=%t", query, topK, includeSources)
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%v", k, filter[k])
	}
	return "answer:" + hex.EncodeToString(h.Sum(nil))
}

// Get 读取缓存的查询结果，未命中时返回 nil。
func (r *redisAnswerCacheRepository) Get(ctx context.Context, key string) (*model.QueryResult, error) {
	jsonData, err := r.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached answer: %w", err)
	}
	var result model.QueryResult
	if err := json.Unmarshal([]byte(jsonData), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached answer: %w", err)
	}
	return &result, nil
}

// Set 写入查询结果缓存。
func (r *redisAnswerCacheRepository) Set(ctx context.Context, key string, result *model.QueryResult, ttl time.Duration) error {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached answer: %w", err)
	}
	return nil
}

// InvalidateAll 清空全部答案缓存。
func (r *redisAnswerCacheRepository) InvalidateAll(ctx context.Context) error {
	keys, err := r.redisClient.Keys(ctx, "answer:*").Result()
	if err != nil {
		return fmt.Errorf("failed to scan answer cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.redisClient.Del(ctx, keys...).Err()
}
