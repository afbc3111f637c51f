package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
)

// EngagementService 点赞、收藏、投票。
// 开关语义：存在则删、不存在则插，由 repository 在单事务内完成。
type EngagementService interface {
	ToggleBookmark(ctx context.Context, userID, postID string) (bookmarked bool, err error)
	TogglePostLike(ctx context.Context, userID, postID string) (liked bool, err error)
	ToggleCommentLike(ctx context.Context, userID, commentID string) (liked bool, err error)
	ToggleReplyLike(ctx context.Context, userID, replyID string) (liked bool, err error)
	Vote(ctx context.Context, userID, pollID, optionID string) error
}

type engagementService struct {
	posts     repository.PostRepository
	comments  repository.CommentRepository
	replies   repository.ReplyRepository
	likes     repository.LikeRepository
	bookmarks repository.BookmarkRepository
	polls     repository.PollRepository
}

func NewEngagementService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	replies repository.ReplyRepository,
	likes repository.LikeRepository,
	bookmarks repository.BookmarkRepository,
	polls repository.PollRepository,
) EngagementService {
	return &engagementService{posts: posts, comments: comments, replies: replies, likes: likes, bookmarks: bookmarks, polls: polls}
}

func (s *engagementService) ToggleBookmark(ctx context.Context, userID, postID string) (bool, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, apperr.NotFound("Post not found")
	}
	return s.bookmarks.Toggle(ctx, userID, postID)
}

func (s *engagementService) TogglePostLike(ctx context.Context, userID, postID string) (bool, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, apperr.NotFound("Post not found")
	}
	return s.likes.TogglePost(ctx, userID, postID)
}

func (s *engagementService) ToggleCommentLike(ctx context.Context, userID, commentID string) (bool, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, apperr.NotFound("Comment not found")
	}
	return s.likes.ToggleComment(ctx, userID, commentID)
}

func (s *engagementService) ToggleReplyLike(ctx context.Context, userID, replyID string) (bool, error) {
	r, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return false, err
	}
	if r == nil {
		return false, apperr.NotFound("Reply not found")
	}
	return s.likes.ToggleReply(ctx, userID, replyID)
}

func (s *engagementService) Vote(ctx context.Context, userID, pollID, optionID string) error {
	poll, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return err
	}
	if poll == nil {
		return apperr.NotFound("Poll not found")
	}
	opt, err := s.polls.GetOption(ctx, optionID)
	if err != nil {
		return err
	}
	if opt == nil || opt.PollID != pollID {
		return apperr.NotFound("Poll option not found")
	}
	if err := s.polls.Vote(ctx, userID, pollID, optionID); err != nil {
		if errors.Is(err, repository.ErrAlreadyVoted) {
			return apperr.Conflict("Already voted for the option")
		}
		return err
	}
	return nil
}
