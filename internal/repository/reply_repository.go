package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
)

type ReplyRepository interface {
	GetByID(ctx context.Context, id string) (*model.Reply, error)
	// ListByComment 回复固定按时间正序，无排序参数
	ListByComment(ctx context.Context, commentID string, offset, limit int) ([]*model.Reply, error)
	CountByComment(ctx context.Context, commentID string) (int64, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

type replyRepository struct{ db *gorm.DB }

func NewReplyRepository(db *gorm.DB) ReplyRepository { return &replyRepository{db: db} }

func (r *replyRepository) GetByID(ctx context.Context, id string) (*model.Reply, error) {
	var rp model.Reply
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *replyRepository) ListByComment(ctx context.Context, commentID string, offset, limit int) ([]*model.Reply, error) {
	var replies []*model.Reply
	err := r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&replies).Error
	return replies, err
}

func (r *replyRepository) CountByComment(ctx context.Context, commentID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Reply{}).Where("comment_id = ?", commentID).Count(&cnt).Error
	return cnt, err
}

func (r *replyRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Reply{}).Where("id = ?", id).Updates(fields).Error
}
