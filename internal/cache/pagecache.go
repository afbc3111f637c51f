package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache 匿名首页信息流的短 TTL 缓存；带 viewer 字段的响应不进缓存
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &PageCache{rdb: rdb, ttl: ttl}
}

// Get 命中时反序列化到 out 并返回 true
func (c *PageCache) Get(ctx context.Context, key string, out any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// Set 序列化失败或 redis 故障直接放弃，缓存只是加速
func (c *PageCache) Set(ctx context.Context, key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// InvalidatePrefix 删除某前缀下的全部缓存键；发帖/删帖后清掉匿名信息流页
func (c *PageCache) InvalidatePrefix(ctx context.Context, prefix string) {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			_ = c.rdb.Del(ctx, keys...).Err()
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
