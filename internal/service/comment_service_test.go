package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
)

func newCommentService(db *gorm.DB) CommentService {
	return NewCommentService(
		db,
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		repository.NewReplyRepository(db),
		repository.NewLikeRepository(db),
		repository.NewUserRepository(db),
	)
}

func seedReplies(t *testing.T, db *gorm.DB, commentID, userID string, n int, base time.Time) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		r := &model.Reply{ID: uuid.New().String(), CommentID: commentID, ReplierID: userID, Text: "r", CreatedAt: at, UpdatedAt: at}
		require.NoError(t, db.Create(r).Error)
		ids[i] = r.ID
	}
	return ids
}

func TestListCommentsWithReplyPreview(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	post := seedPost(t, db, author.ID, 1, time.Now().Add(-time.Hour))

	c, err := svc.Create(ctx, author.ID, post.ID, "first")
	require.NoError(t, err)
	replyIDs := seedReplies(t, db, c.ID, author.ID, 5, time.Now().Add(-30*time.Minute))

	items, hasNext, err := svc.ListByPost(ctx, "", CommentFeedQuery{
		PostID: post.ID, Page: 1, CommentsLimit: 10, RepliesLimit: 2, Sort: model.CommentSortOldest,
	})
	require.NoError(t, err)
	require.False(t, hasNext)
	require.Len(t, items, 1)
	require.Equal(t, int64(5), items[0].ReplyCount)
	// 预览只给最早的两条，其余翻页再取
	require.Len(t, items[0].Replies, 2)
	require.Equal(t, replyIDs[0], items[0].Replies[0].ID)
	require.Equal(t, replyIDs[1], items[0].Replies[1].ID)
	require.True(t, items[0].HasMoreReplies)
}

func TestListMoreRepliesWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	post := seedPost(t, db, author.ID, 1, time.Now().Add(-time.Hour))
	c, err := svc.Create(ctx, author.ID, post.ID, "first")
	require.NoError(t, err)
	replyIDs := seedReplies(t, db, c.ID, author.ID, 15, time.Now().Add(-30*time.Minute))

	// 预览 2 条、每页 10 条：第一页从第 3 条回复开始
	page1, hasNext, err := svc.ListMoreReplies(ctx, "", ReplyFeedQuery{CommentID: c.ID, Page: 1, Limit: 10, RepliesPerPage: 2})
	require.NoError(t, err)
	require.Len(t, page1, 10)
	require.Equal(t, replyIDs[2], page1[0].ID)
	require.Equal(t, replyIDs[11], page1[9].ID)
	require.True(t, hasNext)

	page2, hasNext, err := svc.ListMoreReplies(ctx, "", ReplyFeedQuery{CommentID: c.ID, Page: 2, Limit: 10, RepliesPerPage: 2})
	require.NoError(t, err)
	require.Len(t, page2, 3)
	require.Equal(t, replyIDs[14], page2[2].ID)
	require.False(t, hasNext)
}

func TestCommentOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	post := seedPost(t, db, owner.ID, 1, time.Now())
	c, err := svc.Create(ctx, owner.ID, post.ID, "mine")
	require.NoError(t, err)

	err = svc.Update(ctx, other.ID, c.ID, "hijack")
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	err = svc.Delete(ctx, other.ID, c.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// 拒绝后原文不动
	var got model.Comment
	require.NoError(t, db.Where("id = ?", c.ID).First(&got).Error)
	require.Equal(t, "mine", got.Text)

	require.NoError(t, svc.Update(ctx, owner.ID, c.ID, "edited"))
	require.NoError(t, db.Where("id = ?", c.ID).First(&got).Error)
	require.Equal(t, "edited", got.Text)
	require.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestDeleteCommentCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db)
	likes := repository.NewLikeRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "alice")
	post := seedPost(t, db, owner.ID, 1, time.Now())
	c, err := svc.Create(ctx, owner.ID, post.ID, "root")
	require.NoError(t, err)
	r, err := svc.CreateReply(ctx, owner.ID, c.ID, "leaf")
	require.NoError(t, err)
	_, err = likes.ToggleComment(ctx, owner.ID, c.ID)
	require.NoError(t, err)
	_, err = likes.ToggleReply(ctx, owner.ID, r.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner.ID, c.ID))

	for _, mdl := range []any{&model.Comment{}, &model.Reply{}, &model.CommentLike{}, &model.ReplyLike{}} {
		var cnt int64
		require.NoError(t, db.Model(mdl).Count(&cnt).Error)
		require.Zero(t, cnt)
	}
}

func TestCreateCommentValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "alice")
	post := seedPost(t, db, owner.ID, 1, time.Now())

	_, err := svc.Create(ctx, owner.ID, post.ID, "   ")
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = svc.Create(ctx, owner.ID, "missing", "hello")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestReplyOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	post := seedPost(t, db, owner.ID, 1, time.Now())
	c, err := svc.Create(ctx, owner.ID, post.ID, "root")
	require.NoError(t, err)
	r, err := svc.CreateReply(ctx, owner.ID, c.ID, "leaf")
	require.NoError(t, err)

	require.Equal(t, apperr.KindForbidden, apperr.KindOf(svc.UpdateReply(ctx, other.ID, r.ID, "x")))
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(svc.DeleteReply(ctx, other.ID, r.ID)))
	require.NoError(t, svc.DeleteReply(ctx, owner.ID, r.ID))

	var cnt int64
	require.NoError(t, db.Model(&model.Reply{}).Count(&cnt).Error)
	require.Zero(t, cnt)
}
