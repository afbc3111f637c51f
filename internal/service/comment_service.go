package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/pagination"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
)

// FeedComment 评论条目，附带限量回复预览
type FeedComment struct {
	ID             string       `json:"id"`
	PostID         string       `json:"post_id"`
	CommenterID    string       `json:"commenter_id"`
	CommenterName  string       `json:"commenter_name"`
	Text           string       `json:"text"`
	LikeCount      int64        `json:"like_count"`
	ReplyCount     int64        `json:"reply_count"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Edited         bool         `json:"edited"`
	IsLiked        *bool        `json:"is_liked,omitempty"`
	Replies        []*FeedReply `json:"replies"`
	HasMoreReplies bool         `json:"has_more_replies"`
}

// FeedReply 回复条目
type FeedReply struct {
	ID          string    `json:"id"`
	CommentID   string    `json:"comment_id"`
	ReplierID   string    `json:"replier_id"`
	ReplierName string    `json:"replier_name"`
	Text        string    `json:"text"`
	LikeCount   int64     `json:"like_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Edited      bool      `json:"edited"`
	IsLiked     *bool     `json:"is_liked,omitempty"`
}

// CommentFeedQuery 评论信息流入参
type CommentFeedQuery struct {
	PostID        string
	Page          int
	CommentsLimit int
	RepliesLimit  int
	Sort          model.CommentSort
}

// ReplyFeedQuery 追加回复入参；RepliesPerPage 是已内联展示的预览条数
type ReplyFeedQuery struct {
	CommentID      string
	Page           int
	Limit          int
	RepliesPerPage int
}

type CommentService interface {
	ListByPost(ctx context.Context, viewerID string, q CommentFeedQuery) ([]*FeedComment, bool, error)
	ListMoreReplies(ctx context.Context, viewerID string, q ReplyFeedQuery) ([]*FeedReply, bool, error)

	Create(ctx context.Context, userID, postID, text string) (*FeedComment, error)
	Update(ctx context.Context, userID, commentID, text string) error
	Delete(ctx context.Context, userID, commentID string) error

	CreateReply(ctx context.Context, userID, commentID, text string) (*FeedReply, error)
	UpdateReply(ctx context.Context, userID, replyID, text string) error
	DeleteReply(ctx context.Context, userID, replyID string) error
}

type commentService struct {
	db       *gorm.DB
	posts    repository.PostRepository
	comments repository.CommentRepository
	replies  repository.ReplyRepository
	likes    repository.LikeRepository
	users    repository.UserRepository
}

func NewCommentService(
	db *gorm.DB,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	replies repository.ReplyRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
) CommentService {
	return &commentService{db: db, posts: posts, comments: comments, replies: replies, likes: likes, users: users}
}

func (s *commentService) ListByPost(ctx context.Context, viewerID string, q CommentFeedQuery) ([]*FeedComment, bool, error) {
	q.Page, q.CommentsLimit = pagination.Normalize(q.Page, q.CommentsLimit)
	if q.RepliesLimit < 0 {
		q.RepliesLimit = 0
	}
	post, err := s.posts.GetByID(ctx, q.PostID)
	if err != nil {
		return nil, false, err
	}
	if post == nil {
		return nil, false, apperr.NotFound("Post not found")
	}

	rows, err := s.comments.ListByPost(ctx, q.PostID, q.Sort, pagination.Offset(q.Page, q.CommentsLimit), q.CommentsLimit)
	if err != nil {
		return nil, false, err
	}
	total, err := s.comments.CountByPost(ctx, q.PostID)
	if err != nil {
		return nil, false, err
	}

	items, err := s.assembleComments(ctx, viewerID, rows, q.RepliesLimit)
	if err != nil {
		return nil, false, err
	}
	return items, pagination.HasNext(total, q.Page, q.CommentsLimit), nil
}

func (s *commentService) ListMoreReplies(ctx context.Context, viewerID string, q ReplyFeedQuery) ([]*FeedReply, bool, error) {
	q.Page, q.Limit = pagination.Normalize(q.Page, q.Limit)
	c, err := s.comments.GetByID(ctx, q.CommentID)
	if err != nil {
		return nil, false, err
	}
	if c == nil {
		return nil, false, apperr.NotFound("Comment not found")
	}
	rows, err := s.replies.ListByComment(ctx, q.CommentID,
		pagination.ReplyOffset(q.Page, q.Limit, q.RepliesPerPage), q.Limit)
	if err != nil {
		return nil, false, err
	}
	total, err := s.replies.CountByComment(ctx, q.CommentID)
	if err != nil {
		return nil, false, err
	}
	items, err := s.assembleReplies(ctx, viewerID, rows)
	if err != nil {
		return nil, false, err
	}
	return items, pagination.ReplyHasNext(total, q.Page, q.Limit, q.RepliesPerPage), nil
}

func (s *commentService) assembleComments(ctx context.Context, viewerID string, rows []*model.Comment, repliesLimit int) ([]*FeedComment, error) {
	if len(rows) == 0 {
		return []*FeedComment{}, nil
	}
	ids := make([]string, len(rows))
	userIDs := make([]string, len(rows))
	for i, c := range rows {
		ids[i] = c.ID
		userIDs[i] = c.CommenterID
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.CommentLikeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	replyCounts, err := s.comments.ReplyCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	var liked map[string]bool
	if viewerID != "" {
		if liked, err = s.likes.LikedCommentIDs(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	items := make([]*FeedComment, len(rows))
	for i, c := range rows {
		item := &FeedComment{
			ID:          c.ID,
			PostID:      c.PostID,
			CommenterID: c.CommenterID,
			Text:        c.Text,
			LikeCount:   likeCounts[c.ID],
			ReplyCount:  replyCounts[c.ID],
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
			Edited:      c.UpdatedAt.After(c.CreatedAt),
			Replies:     []*FeedReply{},
		}
		if u, ok := users[c.CommenterID]; ok {
			item.CommenterName = u.Username
		}
		if viewerID != "" {
			l := liked[c.ID]
			item.IsLiked = &l
		}
		if repliesLimit > 0 {
			preview, err := s.replies.ListByComment(ctx, c.ID, 0, repliesLimit)
			if err != nil {
				return nil, err
			}
			if item.Replies, err = s.assembleReplies(ctx, viewerID, preview); err != nil {
				return nil, err
			}
			item.HasMoreReplies = replyCounts[c.ID] > int64(repliesLimit)
		}
		items[i] = item
	}
	return items, nil
}

func (s *commentService) assembleReplies(ctx context.Context, viewerID string, rows []*model.Reply) ([]*FeedReply, error) {
	if len(rows) == 0 {
		return []*FeedReply{}, nil
	}
	ids := make([]string, len(rows))
	userIDs := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		userIDs[i] = r.ReplierID
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.ReplyLikeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	var liked map[string]bool
	if viewerID != "" {
		if liked, err = s.likes.LikedReplyIDs(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}
	items := make([]*FeedReply, len(rows))
	for i, r := range rows {
		item := &FeedReply{
			ID:        r.ID,
			CommentID: r.CommentID,
			ReplierID: r.ReplierID,
			Text:      r.Text,
			LikeCount: likeCounts[r.ID],
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Edited:    r.UpdatedAt.After(r.CreatedAt),
		}
		if u, ok := users[r.ReplierID]; ok {
			item.ReplierName = u.Username
		}
		if viewerID != "" {
			l := liked[r.ID]
			item.IsLiked = &l
		}
		items[i] = item
	}
	return items, nil
}

func (s *commentService) Create(ctx context.Context, userID, postID, text string) (*FeedComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Invalid("Invalid fields")
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("Post not found")
	}
	now := time.Now()
	c := &model.Comment{ID: uuid.New().String(), PostID: postID, CommenterID: userID, Text: text, CreatedAt: now, UpdatedAt: now}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	items, err := s.assembleComments(ctx, userID, []*model.Comment{c}, 0)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func (s *commentService) Update(ctx context.Context, userID, commentID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperr.Invalid("Invalid fields")
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("Comment not found")
	}
	if c.CommenterID != userID {
		return apperr.Forbidden("Not permitted")
	}
	return s.comments.Update(ctx, commentID, map[string]any{"text": text, "updated_at": time.Now()})
}

// Delete 级联删除回复及两级点赞
func (s *commentService) Delete(ctx context.Context, userID, commentID string) error {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("Comment not found")
	}
	if c.CommenterID != userID {
		return apperr.Forbidden("Not permitted")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM reply_likes WHERE reply_id IN (SELECT id FROM replies WHERE comment_id = ?)", commentID).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&model.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", commentID).Delete(&model.Comment{}).Error
	})
}

func (s *commentService) CreateReply(ctx context.Context, userID, commentID, text string) (*FeedReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Invalid("Invalid fields")
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Comment not found")
	}
	now := time.Now()
	r := &model.Reply{ID: uuid.New().String(), CommentID: commentID, ReplierID: userID, Text: text, CreatedAt: now, UpdatedAt: now}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	items, err := s.assembleReplies(ctx, userID, []*model.Reply{r})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func (s *commentService) UpdateReply(ctx context.Context, userID, replyID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperr.Invalid("Invalid fields")
	}
	r, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return err
	}
	if r == nil {
		return apperr.NotFound("Reply not found")
	}
	if r.ReplierID != userID {
		return apperr.Forbidden("Not permitted")
	}
	return s.replies.Update(ctx, replyID, map[string]any{"text": text, "updated_at": time.Now()})
}

func (s *commentService) DeleteReply(ctx context.Context, userID, replyID string) error {
	r, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return err
	}
	if r == nil {
		return apperr.NotFound("Reply not found")
	}
	if r.ReplierID != userID {
		return apperr.Forbidden("Not permitted")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", replyID).Delete(&model.ReplyLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", replyID).Delete(&model.Reply{}).Error
	})
}
