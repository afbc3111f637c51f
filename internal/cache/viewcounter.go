package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/logger"
)

const viewHashKey = "post:views"

// ViewCounter 浏览数先进 redis hash，由后台 worker 周期性落库。
// 崩溃最多丢一个刷新周期的增量。
type ViewCounter struct {
	rdb      *redis.Client
	posts    repository.PostRepository
	interval time.Duration
}

func NewViewCounter(rdb *redis.Client, posts repository.PostRepository, interval time.Duration) *ViewCounter {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ViewCounter{rdb: rdb, posts: posts, interval: interval}
}

// Incr 记一次浏览；redis 故障只告警，不影响读路径
func (v *ViewCounter) Incr(ctx context.Context, postID string) {
	if err := v.rdb.HIncrBy(ctx, viewHashKey, postID, 1).Err(); err != nil {
		logger.Warn("view counter incr failed", zap.String("post", postID), zap.Error(err))
	}
}

// Start 启动落库 worker；返回停止函数，停止前做最后一次 flush
func (v *ViewCounter) Start() func(context.Context) error {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(v.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				_ = v.Flush(context.Background())
				return
			case <-ticker.C:
				_ = v.Flush(context.Background())
			}
		}
	}()
	return func(ctx context.Context) error {
		close(stop)
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Flush 取走当前计数并累加进 posts.views_count。
// 先 RENAME 再读，避免与并发 Incr 互相覆盖。
func (v *ViewCounter) Flush(ctx context.Context) error {
	tmp := viewHashKey + ":flush"
	n, err := v.rdb.Exists(ctx, viewHashKey).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if err := v.rdb.Rename(ctx, viewHashKey, tmp).Err(); err != nil {
		return err
	}
	counts, err := v.rdb.HGetAll(ctx, tmp).Result()
	if err != nil {
		return err
	}
	for postID, raw := range counts {
		delta, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || delta == 0 {
			continue
		}
		if err := v.posts.IncrViews(ctx, postID, delta); err != nil {
			logger.Error("view counter flush failed", zap.String("post", postID), zap.Error(err))
			// 落库失败则放回计数，下轮重试
			_ = v.rdb.HIncrBy(ctx, viewHashKey, postID, delta).Err()
		}
	}
	return v.rdb.Del(ctx, tmp).Err()
}
