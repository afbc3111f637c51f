package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/cache"
	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
	"github.com/d60-Lab/unmask/pkg/uploader"
)

func newPostService(t *testing.T, db *gorm.DB) PostService {
	t.Helper()
	return NewPostService(
		db,
		repository.NewPostRepository(db),
		repository.NewChannelRepository(db),
		uploader.NewLocal(t.TempDir(), "http://localhost:8080/uploads"),
		nil,
	)
}

func TestCreatePostWithPoll(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	postID, err := svc.Create(ctx, author.ID, CreatePostInput{
		Title:       "which one",
		PollOptions: []string{"red", "green", "blue"},
	})
	require.NoError(t, err)

	var poll model.Poll
	require.NoError(t, db.Where("post_id = ?", postID).First(&poll).Error)
	var opts []model.PollOption
	require.NoError(t, db.Where("poll_id = ?", poll.ID).Order("created_at ASC").Find(&opts).Error)
	require.Len(t, opts, 3)
	// 选项保持提交顺序
	require.Equal(t, "red", opts[0].Label)
	require.Equal(t, "green", opts[1].Label)
	require.Equal(t, "blue", opts[2].Label)
}

func TestCreatePostValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreatePostInput{Title: "  "})
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	// 投票要么没有，要么 2~6 个选项
	_, err = svc.Create(ctx, "u1", CreatePostInput{Title: "t", PollOptions: []string{"only"}})
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	_, err = svc.Create(ctx, "u1", CreatePostInput{Title: "t", PollOptions: []string{"1", "2", "3", "4", "5", "6", "7"}})
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	missing := "missing-channel"
	_, err = svc.Create(ctx, "u1", CreatePostInput{Title: "t", ChannelID: &missing})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreatePostWithImage(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png"))
	postID, err := svc.Create(ctx, author.ID, CreatePostInput{Title: "pic", ImageBase64: img})
	require.NoError(t, err)

	var p model.Post
	require.NoError(t, db.Where("id = ?", postID).First(&p).Error)
	require.True(t, strings.HasPrefix(p.ImageURL, "http://localhost:8080/uploads/"))
}

func TestUpdatePostOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	p := seedPost(t, db, owner.ID, 1, time.Now().Add(-time.Minute))

	err := svc.Update(ctx, other.ID, p.ID, UpdatePostInput{Title: "hijack"})
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	err = svc.Delete(ctx, other.ID, p.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, svc.Update(ctx, owner.ID, p.ID, UpdatePostInput{Title: "edited", Description: "new"}))
	var got model.Post
	require.NoError(t, db.Where("id = ?", p.ID).First(&got).Error)
	require.Equal(t, "edited", got.Title)
	require.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestPostWritesInvalidateFeedCache(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	pages := cache.NewPageCache(rdb, time.Minute)

	postsRepo := repository.NewPostRepository(db)
	feed := NewFeedService(
		postsRepo,
		repository.NewUserRepository(db),
		repository.NewLikeRepository(db),
		repository.NewBookmarkRepository(db),
		repository.NewPollRepository(db),
		nil, pages,
	)
	svc := NewPostService(db, postsRepo, repository.NewChannelRepository(db),
		uploader.NewLocal(t.TempDir(), "http://localhost:8080/uploads"), pages)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	firstID, err := svc.Create(ctx, author.ID, CreatePostInput{Title: "first"})
	require.NoError(t, err)

	// 匿名首页进缓存
	items, _, err := feed.ListPosts(ctx, "", PostFeedQuery{Page: 1, Limit: 10, Sort: model.PostSortRecent})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// 发帖后缓存失效，新帖立即可见
	_, err = svc.Create(ctx, author.ID, CreatePostInput{Title: "second"})
	require.NoError(t, err)
	items, _, err = feed.ListPosts(ctx, "", PostFeedQuery{Page: 1, Limit: 10, Sort: model.PostSortRecent})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// 删帖同理
	require.NoError(t, svc.Delete(ctx, author.ID, firstID))
	items, _, err = feed.ListPosts(ctx, "", PostFeedQuery{Page: 1, Limit: 10, Sort: model.PostSortRecent})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "second", items[0].Title)
}

func TestDeletePostCascades(t *testing.T) {
	db := setupTestDB(t)
	posts := newPostService(t, db)
	comments := newCommentService(db)
	engagement := newEngagementService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "alice")
	fan := seedUser(t, db, "bob")

	postID, err := posts.Create(ctx, owner.ID, CreatePostInput{Title: "root", PollOptions: []string{"a", "b"}})
	require.NoError(t, err)
	c, err := comments.Create(ctx, fan.ID, postID, "nice")
	require.NoError(t, err)
	r, err := comments.CreateReply(ctx, fan.ID, c.ID, "indeed")
	require.NoError(t, err)
	_, err = engagement.TogglePostLike(ctx, fan.ID, postID)
	require.NoError(t, err)
	_, err = engagement.ToggleCommentLike(ctx, fan.ID, c.ID)
	require.NoError(t, err)
	_, err = engagement.ToggleReplyLike(ctx, fan.ID, r.ID)
	require.NoError(t, err)
	_, err = engagement.ToggleBookmark(ctx, fan.ID, postID)
	require.NoError(t, err)

	var poll model.Poll
	require.NoError(t, db.Where("post_id = ?", postID).First(&poll).Error)
	var opt model.PollOption
	require.NoError(t, db.Where("poll_id = ?", poll.ID).First(&opt).Error)
	require.NoError(t, engagement.Vote(ctx, fan.ID, poll.ID, opt.ID))

	require.NoError(t, posts.Delete(ctx, owner.ID, postID))

	for _, mdl := range []any{
		&model.Post{}, &model.Comment{}, &model.Reply{},
		&model.PostLike{}, &model.CommentLike{}, &model.ReplyLike{},
		&model.Bookmark{}, &model.Poll{}, &model.PollOption{}, &model.PollVote{},
	} {
		var cnt int64
		require.NoError(t, db.Model(mdl).Count(&cnt).Error)
		require.Zero(t, cnt)
	}
}
