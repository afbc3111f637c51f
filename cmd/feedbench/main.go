package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/unmask/config"
	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/internal/service"
	"github.com/d60-Lab/unmask/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 { return 0 }
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 { k = 0 }
	if k >= len(xs) { k = len(xs)-1 }
	return xs[k]
}

// 信息流读路径基准：灌入 N 帖与点赞/评论，测各排序下的分页读取延迟
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	likes := repository.NewLikeRepository(db)
	bookmarks := repository.NewBookmarkRepository(db)
	polls := repository.NewPollRepository(db)

	feed := service.NewFeedService(posts, users, likes, bookmarks, polls, nil, nil)

	N := 5000
	READS := 200
	if s := os.Getenv("N"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { N = v } }
	if s := os.Getenv("READS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { READS = v } }

	ctx := context.Background()

	// seed authors
	authors := make([]model.User, 50)
	for i := range authors {
		id := uuid.New().String()
		authors[i] = model.User{ID: id, Username: "u" + id[:8], Email: id[:8] + "@example.com", Password: "p"}
	}
	_ = db.CreateInBatches(&authors, 500).Error

	// seed posts
	base := time.Now().Add(-24 * time.Hour)
	rows := make([]model.Post, N)
	for i := 0; i < N; i++ {
		rows[i] = model.Post{
			ID:         uuid.New().String(),
			CreatorID:  authors[rand.Intn(len(authors))].ID,
			Title:      fmt.Sprintf("post %d", i),
			ViewsCount: int64(rand.Intn(10000)),
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
			UpdatedAt:  base.Add(time.Duration(i) * time.Second),
		}
	}
	_ = db.CreateInBatches(&rows, 500).Error

	sorts := map[string]model.PostSort{"recent": model.PostSortRecent, "views": model.PostSortViews, "hot": model.PostSortHot}
	for name, s := range sorts {
		durs := make([]time.Duration, 0, READS)
		for i := 0; i < READS; i++ {
			page := 1 + rand.Intn(20)
			st := time.Now()
			_, _, err := feed.ListPosts(ctx, "", service.PostFeedQuery{Page: page, Limit: 20, Sort: s})
			if err != nil { panic(err) }
			durs = append(durs, time.Since(st))
		}
		var sum time.Duration
		for _, d := range durs { sum += d }
		fmt.Printf("sort=%-7s reads=%d avg=%v p95=%v p99=%v\n", name, READS, sum/time.Duration(len(durs)), pct(durs, 0.95), pct(durs, 0.99))
	}
}
