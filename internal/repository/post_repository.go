package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
)

type PostRepository interface {
	GetByID(ctx context.Context, id string) (*model.Post, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Post, error)
	List(ctx context.Context, channelID *string, sort model.PostSort, offset, limit int) ([]*model.Post, error)
	Count(ctx context.Context, channelID *string) (int64, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	IncrViews(ctx context.Context, id string, delta int64) error
	CommentCounts(ctx context.Context, postIDs []string) (map[string]int64, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Post, error) {
	res := make(map[string]*model.Post, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var posts []*model.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		res[p.ID] = p
	}
	return res, nil
}

// orderFor 排序键到 ORDER BY 的穷举映射；hot 尚无独立热度公式，与 recent 相同
func orderFor(sort model.PostSort) string {
	switch sort {
	case model.PostSortViews:
		return "views_count DESC, created_at DESC"
	case model.PostSortHot, model.PostSortRecent:
		return "created_at DESC"
	default:
		return "created_at DESC"
	}
}

func (r *postRepository) List(ctx context.Context, channelID *string, sort model.PostSort, offset, limit int) ([]*model.Post, error) {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if channelID != nil {
		q = q.Where("channel_id = ?", *channelID)
	}
	var posts []*model.Post
	err := q.Order(orderFor(sort)).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context, channelID *string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if channelID != nil {
		q = q.Where("channel_id = ?", *channelID)
	}
	var cnt int64
	err := q.Count(&cnt).Error
	return cnt, err
}

func (r *postRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

func (r *postRepository) IncrViews(ctx context.Context, id string, delta int64) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		Update("views_count", gorm.Expr("views_count + ?", delta)).Error
}

func (r *postRepository) CommentCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return groupCount(ctx, r.db, &model.Comment{}, "post_id", postIDs)
}

// groupCount 按外键分组统计关联行数，供各聚合计数复用
func groupCount(ctx context.Context, db *gorm.DB, mdl any, column string, ids []string) (map[string]int64, error) {
	res := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	type row struct {
		Key string
		Cnt int64
	}
	var rows []row
	err := db.WithContext(ctx).Model(mdl).
		Select(column+" AS key, COUNT(*) AS cnt").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		res[r.Key] = r.Cnt
	}
	return res, nil
}
