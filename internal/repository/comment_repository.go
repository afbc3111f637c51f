package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
)

type CommentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string, sort model.CommentSort, offset, limit int) ([]*model.Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	ReplyCounts(ctx context.Context, commentIDs []string) (map[string]int64, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// top 排序按点赞数、回复数、时间逐级决胜；计数用关联表子查询，避免冗余列
const commentTopOrder = "(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) DESC, " +
	"(SELECT COUNT(*) FROM replies WHERE replies.comment_id = comments.id) DESC, " +
	"created_at DESC"

func commentOrderFor(sort model.CommentSort) string {
	switch sort {
	case model.CommentSortOldest:
		return "created_at ASC"
	case model.CommentSortNewest:
		return "created_at DESC"
	case model.CommentSortTop:
		return commentTopOrder
	default:
		return "created_at ASC"
	}
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string, sort model.CommentSort, offset, limit int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order(commentOrderFor(sort)).
		Offset(offset).Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID).Count(&cnt).Error
	return cnt, err
}

func (r *commentRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Updates(fields).Error
}

func (r *commentRepository) ReplyCounts(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	return groupCount(ctx, r.db, &model.Reply{}, "comment_id", commentIDs)
}
