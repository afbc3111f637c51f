package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/database"
)

func setupCounter(t *testing.T) (*ViewCounter, *gorm.DB, *redis.Client) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewViewCounter(rdb, repository.NewPostRepository(db), time.Minute), db, rdb
}

func TestViewCounterFlush(t *testing.T) {
	vc, db, _ := setupCounter(t)
	ctx := context.Background()

	p := &model.Post{ID: uuid.New().String(), CreatorID: "u1", Title: "t"}
	require.NoError(t, db.Create(p).Error)

	for i := 0; i < 3; i++ {
		vc.Incr(ctx, p.ID)
	}
	require.NoError(t, vc.Flush(ctx))

	var got model.Post
	require.NoError(t, db.Where("id = ?", p.ID).First(&got).Error)
	require.Equal(t, int64(3), got.ViewsCount)

	// 取走后计数清零，重复 flush 不再累加
	require.NoError(t, vc.Flush(ctx))
	require.NoError(t, db.Where("id = ?", p.ID).First(&got).Error)
	require.Equal(t, int64(3), got.ViewsCount)
}

func TestViewCounterFlushEmpty(t *testing.T) {
	vc, _, _ := setupCounter(t)
	require.NoError(t, vc.Flush(context.Background()))
}

func TestPageCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	pc := NewPageCache(rdb, 30*time.Second)
	ctx := context.Background()

	type page struct {
		Items   []string `json:"items"`
		HasNext bool     `json:"has_next"`
	}

	var miss page
	require.False(t, pc.Get(ctx, "feed:posts:all:0:1:10", &miss))

	pc.Set(ctx, "feed:posts:all:0:1:10", page{Items: []string{"a", "b"}, HasNext: true})
	var hit page
	require.True(t, pc.Get(ctx, "feed:posts:all:0:1:10", &hit))
	require.Equal(t, []string{"a", "b"}, hit.Items)
	require.True(t, hit.HasNext)

	// TTL 到期后自动失效
	mr.FastForward(time.Minute)
	require.False(t, pc.Get(ctx, "feed:posts:all:0:1:10", &hit))

	// 前缀失效只清自家键
	pc.Set(ctx, "feed:posts:all:0:2:10", page{})
	pc.Set(ctx, "other:key", page{})
	pc.InvalidatePrefix(ctx, "feed:posts:")
	require.False(t, pc.Get(ctx, "feed:posts:all:0:2:10", &hit))
	require.True(t, pc.Get(ctx, "other:key", &hit))
}
