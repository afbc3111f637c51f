package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/cache"
	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
	"github.com/d60-Lab/unmask/pkg/uploader"
)

// CreatePostInput 发帖入参；图片为 base64，投票选项 2~6 个
type CreatePostInput struct {
	ChannelID   *string
	Title       string
	Description string
	ImageBase64 string
	PollOptions []string
}

// UpdatePostInput 编辑入参；只允许改标题与正文
type UpdatePostInput struct {
	Title       string
	Description string
}

type PostService interface {
	Create(ctx context.Context, userID string, in CreatePostInput) (string, error)
	Update(ctx context.Context, userID, postID string, in UpdatePostInput) error
	Delete(ctx context.Context, userID, postID string) error
}

type postService struct {
	db       *gorm.DB
	posts    repository.PostRepository
	channels repository.ChannelRepository
	uploads  uploader.Uploader
	pages    *cache.PageCache
}

func NewPostService(db *gorm.DB, posts repository.PostRepository, channels repository.ChannelRepository, uploads uploader.Uploader, pages *cache.PageCache) PostService {
	return &postService{db: db, posts: posts, channels: channels, uploads: uploads, pages: pages}
}

// invalidateFeedPages 帖子集合变了，匿名信息流页缓存整体作废
func (s *postService) invalidateFeedPages(ctx context.Context) {
	if s.pages != nil {
		s.pages.InvalidatePrefix(ctx, postFeedCachePrefix)
	}
}

// Create 帖子与投票在一个事务内落地；图床上传在事务外完成
func (s *postService) Create(ctx context.Context, userID string, in CreatePostInput) (string, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return "", apperr.Invalid("Invalid fields")
	}
	if n := len(in.PollOptions); n != 0 && (n < 2 || n > 6) {
		return "", apperr.Invalid("Invalid fields")
	}
	if in.ChannelID != nil {
		ch, err := s.channels.GetByID(ctx, *in.ChannelID)
		if err != nil {
			return "", err
		}
		if ch == nil {
			return "", apperr.NotFound("Channel not found")
		}
	}

	var imageURL string
	if in.ImageBase64 != "" {
		url, err := s.uploads.Upload(ctx, in.ImageBase64)
		if err != nil {
			return "", apperr.Wrap(apperr.KindInternal, "Something went wrong", err)
		}
		imageURL = url
	}

	postID := uuid.New().String()
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := &model.Post{
			ID:          postID,
			CreatorID:   userID,
			ChannelID:   in.ChannelID,
			Title:       in.Title,
			Description: in.Description,
			ImageURL:    imageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if len(in.PollOptions) == 0 {
			return nil
		}
		poll := &model.Poll{ID: uuid.New().String(), PostID: postID, CreatedAt: now}
		if err := tx.Create(poll).Error; err != nil {
			return err
		}
		opts := make([]model.PollOption, len(in.PollOptions))
		for i, label := range in.PollOptions {
			// 选项保持提交顺序，CreatedAt 递增
			opts[i] = model.PollOption{
				ID:        uuid.New().String(),
				PollID:    poll.ID,
				Label:     strings.TrimSpace(label),
				CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			}
		}
		return tx.Create(&opts).Error
	})
	if err != nil {
		return "", err
	}
	s.invalidateFeedPages(ctx)
	return postID, nil
}

func (s *postService) Update(ctx context.Context, userID, postID string, in UpdatePostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Invalid("Invalid fields")
	}
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("Post not found")
	}
	if p.CreatorID != userID {
		return apperr.Forbidden("Not permitted")
	}
	// updated_at 前移即前端的 "(Edited)" 标记
	return s.posts.Update(ctx, postID, map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"updated_at":  time.Now(),
	})
}

// Delete 级联清理评论、回复、点赞、收藏与投票
func (s *postService) Delete(ctx context.Context, userID, postID string) error {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("Post not found")
	}
	if p.CreatorID != userID {
		return apperr.Forbidden("Not permitted")
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmts := []string{
			"DELETE FROM reply_likes WHERE reply_id IN (SELECT id FROM replies WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?))",
			"DELETE FROM replies WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)",
			"DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)",
			"DELETE FROM comments WHERE post_id = ?",
			"DELETE FROM poll_votes WHERE poll_id IN (SELECT id FROM polls WHERE post_id = ?)",
			"DELETE FROM poll_options WHERE poll_id IN (SELECT id FROM polls WHERE post_id = ?)",
			"DELETE FROM polls WHERE post_id = ?",
			"DELETE FROM post_likes WHERE post_id = ?",
			"DELETE FROM bookmarks WHERE post_id = ?",
			"DELETE FROM posts WHERE id = ?",
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt, postID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateFeedPages(ctx)
	return nil
}
