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

func newEngagementService(db *gorm.DB) EngagementService {
	return NewEngagementService(
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		repository.NewReplyRepository(db),
		repository.NewLikeRepository(db),
		repository.NewBookmarkRepository(db),
		repository.NewPollRepository(db),
	)
}

func TestToggleTargetsMustExist(t *testing.T) {
	db := setupTestDB(t)
	svc := newEngagementService(db)
	ctx := context.Background()

	_, err := svc.TogglePostLike(ctx, "u1", "missing")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.ToggleBookmark(ctx, "u1", "missing")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.ToggleCommentLike(ctx, "u1", "missing")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.ToggleReplyLike(ctx, "u1", "missing")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestVoteFlow(t *testing.T) {
	db := setupTestDB(t)
	svc := newEngagementService(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	p := seedPost(t, db, author.ID, 1, time.Now())
	poll := &model.Poll{ID: "poll-1", PostID: p.ID}
	require.NoError(t, db.Create(poll).Error)
	optA := &model.PollOption{ID: "opt-a", PollID: poll.ID, Label: "a"}
	optB := &model.PollOption{ID: "opt-b", PollID: poll.ID, Label: "b"}
	require.NoError(t, db.Create(optA).Error)
	require.NoError(t, db.Create(optB).Error)

	require.NoError(t, svc.Vote(ctx, author.ID, poll.ID, optA.ID))

	// 同选项重复投票冲突
	err := svc.Vote(ctx, author.ID, poll.ID, optA.ID)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// 换选项放行
	require.NoError(t, svc.Vote(ctx, author.ID, poll.ID, optB.ID))

	require.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Vote(ctx, author.ID, "missing", optA.ID)))
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Vote(ctx, author.ID, poll.ID, "missing")))

	// 选项必须属于该投票
	other := &model.Poll{ID: "poll-2", PostID: "other-post"}
	require.NoError(t, db.Create(other).Error)
	optC := &model.PollOption{ID: "opt-c", PollID: other.ID, Label: "c"}
	require.NoError(t, db.Create(optC).Error)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Vote(ctx, author.ID, poll.ID, optC.ID)))
}

func TestToggleRoundTripThroughService(t *testing.T) {
	db := setupTestDB(t)
	svc := newEngagementService(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	p := seedPost(t, db, author.ID, 1, time.Now())

	on, err := svc.ToggleBookmark(ctx, author.ID, p.ID)
	require.NoError(t, err)
	require.True(t, on)
	off, err := svc.ToggleBookmark(ctx, author.ID, p.ID)
	require.NoError(t, err)
	require.False(t, off)

	var cnt int64
	require.NoError(t, db.Model(&model.Bookmark{}).Count(&cnt).Error)
	require.Zero(t, cnt)
}
