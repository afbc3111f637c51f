package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
)

func newFeedService(db *gorm.DB) FeedService {
	return NewFeedService(
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
		repository.NewLikeRepository(db),
		repository.NewBookmarkRepository(db),
		repository.NewPollRepository(db),
		nil, nil,
	)
}

func TestListPostsHasNextBoundary(t *testing.T) {
	db := setupTestDB(t)
	feed := newFeedService(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 20; i++ {
		seedPost(t, db, author.ID, i, base.Add(time.Duration(i)*time.Second))
	}

	items, hasNext, err := feed.ListPosts(ctx, "", PostFeedQuery{Page: 1, Limit: 10, Sort: model.PostSortRecent})
	require.NoError(t, err)
	require.Len(t, items, 10)
	require.True(t, hasNext)

	// total == page*limit 恰好没有下一页
	items, hasNext, err = feed.ListPosts(ctx, "", PostFeedQuery{Page: 2, Limit: 10, Sort: model.PostSortRecent})
	require.NoError(t, err)
	require.Len(t, items, 10)
	require.False(t, hasNext)

	items, hasNext, err = feed.ListPosts(ctx, "", PostFeedQuery{Page: 3, Limit: 10, Sort: model.PostSortRecent})
	require.NoError(t, err)
	require.Empty(t, items)
	require.False(t, hasNext)
}

func TestListPostsViewsSort(t *testing.T) {
	db := setupTestDB(t)
	feed := newFeedService(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	base := time.Now().Add(-time.Hour)
	low := seedPost(t, db, author.ID, 1, base)
	high := seedPost(t, db, author.ID, 2, base.Add(time.Second))
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", high.ID).Update("views_count", 100).Error)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", low.ID).Update("views_count", 3).Error)

	items, _, err := feed.ListPosts(ctx, "", PostFeedQuery{Page: 1, Limit: 10, Sort: model.PostSortViews})
	require.NoError(t, err)
	require.Equal(t, high.ID, items[0].ID)
	require.Equal(t, low.ID, items[1].ID)
}

func TestListPostsViewerRelativeFields(t *testing.T) {
	db := setupTestDB(t)
	feed := newFeedService(db)
	likes := repository.NewLikeRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	viewer := seedUser(t, db, "bob")
	p := seedPost(t, db, author.ID, 1, time.Now())
	_, err := likes.TogglePost(ctx, viewer.ID, p.ID)
	require.NoError(t, err)

	// 匿名访问不带 viewer 字段
	items, _, err := feed.ListPosts(ctx, "", PostFeedQuery{Page: 1, Limit: 10, Sort: model.PostSortRecent})
	require.NoError(t, err)
	require.Nil(t, items[0].IsLiked)
	require.Nil(t, items[0].IsBookmarked)
	require.Equal(t, int64(1), items[0].LikeCount)
	require.Equal(t, "alice", items[0].CreatorName)

	items, _, err = feed.ListPosts(ctx, viewer.ID, PostFeedQuery{Page: 1, Limit: 10, Sort: model.PostSortRecent})
	require.NoError(t, err)
	require.NotNil(t, items[0].IsLiked)
	require.True(t, *items[0].IsLiked)
	require.NotNil(t, items[0].IsBookmarked)
	require.False(t, *items[0].IsBookmarked)
}

func TestGetPostNotFound(t *testing.T) {
	db := setupTestDB(t)
	feed := newFeedService(db)

	_, err := feed.GetPost(context.Background(), "", "missing")
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListBookmarksSkipsDeletedPosts(t *testing.T) {
	db := setupTestDB(t)
	feed := newFeedService(db)
	bms := repository.NewBookmarkRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	viewer := seedUser(t, db, "bob")
	base := time.Now().Add(-time.Hour)
	kept := seedPost(t, db, author.ID, 1, base)
	gone := seedPost(t, db, author.ID, 2, base.Add(time.Second))

	_, err := bms.Toggle(ctx, viewer.ID, kept.ID)
	require.NoError(t, err)
	_, err = bms.Toggle(ctx, viewer.ID, gone.ID)
	require.NoError(t, err)
	require.NoError(t, db.Where("id = ?", gone.ID).Delete(&model.Post{}).Error)

	items, hasNext, err := feed.ListBookmarks(ctx, viewer.ID, BookmarkFeedQuery{Page: 1, Limit: 10, Sort: model.BookmarkSortRecent})
	require.NoError(t, err)
	require.False(t, hasNext)
	require.Len(t, items, 1)
	require.Equal(t, kept.ID, items[0].ID)
	require.NotNil(t, items[0].IsBookmarked)
	require.True(t, *items[0].IsBookmarked)
}

func TestFeedPollProjection(t *testing.T) {
	db := setupTestDB(t)
	feed := newFeedService(db)
	polls := repository.NewPollRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	voter := seedUser(t, db, "bob")
	p := seedPost(t, db, author.ID, 1, time.Now())

	base := time.Now()
	poll := &model.Poll{ID: "poll-1", PostID: p.ID, CreatedAt: base}
	require.NoError(t, db.Create(poll).Error)
	optA := &model.PollOption{ID: "opt-a", PollID: poll.ID, Label: "a", CreatedAt: base}
	optB := &model.PollOption{ID: "opt-b", PollID: poll.ID, Label: "b", CreatedAt: base.Add(time.Millisecond)}
	require.NoError(t, db.Create(optA).Error)
	require.NoError(t, db.Create(optB).Error)
	require.NoError(t, polls.Vote(ctx, voter.ID, poll.ID, optB.ID))

	got, err := feed.GetPost(ctx, voter.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Poll)
	require.Equal(t, int64(1), got.Poll.TotalVotes)
	// 选项按创建顺序返回
	require.Equal(t, "opt-a", got.Poll.Options[0].ID)
	require.Zero(t, got.Poll.Options[0].VoteCount)
	require.Equal(t, int64(1), got.Poll.Options[1].VoteCount)
	require.NotNil(t, got.Poll.VotedOptionID)
	require.Equal(t, optB.ID, *got.Poll.VotedOptionID)
}
