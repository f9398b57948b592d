package repository

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"rag-system-go/internal/model"
)

// QueryCacheRepository 缓存不带参考答案的查询结果，降低重复问题的
// 检索与生成开销。缓存命中与否均不影响请求的正确性。
type QueryCacheRepository interface {
	Get(ctx context.Context, query string, topK int) (*model.CachedAnswer, error)
	Set(ctx context.Context, query string, topK int, answer *model.CachedAnswer) error
}

type queryCacheRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQueryCacheRepository 创建基于 Redis 的问答缓存。
func NewQueryCacheRepository(rdb *redis.Client, ttl time.Duration) QueryCacheRepository {
	return &queryCacheRepository{rdb: rdb, ttl: ttl}
}

// cacheKey 对查询文本做哈希，避免超长 key 与特殊字符问题。
func cacheKey(query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("rag:answer:%x:%d", sum[:16], topK)
}

// Get 返回缓存的回答；未命中时返回 (nil, nil)。
func (r *queryCacheRepository) Get(ctx context.Context, query string, topK int) (*model.CachedAnswer, error) {
	data, err := r.rdb.Get(ctx, cacheKey(query, topK)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached model.CachedAnswer
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// Set 写入一条缓存，按配置的 TTL 过期。
func (r *queryCacheRepository) Set(ctx context.Context, query string, topK int, answer *model.CachedAnswer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, cacheKey(query, topK), data, r.ttl).Err()
}
