package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
)

type ChannelRepository interface {
	Create(ctx context.Context, ch *model.Channel) error
	GetByID(ctx context.Context, id string) (*model.Channel, error)
	// NameExists 频道名区分大小写精确查重
	NameExists(ctx context.Context, name string) (bool, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*model.Channel, error)
	Count(ctx context.Context) (int64, error)
}

type channelRepository struct{ db *gorm.DB }

func NewChannelRepository(db *gorm.DB) ChannelRepository { return &channelRepository{db: db} }

func (r *channelRepository) Create(ctx context.Context, ch *model.Channel) error {
	return r.db.WithContext(ctx).Create(ch).Error
}

func (r *channelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	var ch model.Channel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *channelRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Channel{}).Where("name = ?", name).Count(&cnt).Error
	return cnt > 0, err
}

func (r *channelRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Channel{}).Where("invite_code = ?", code).Count(&cnt).Error
	return cnt > 0, err
}

func (r *channelRepository) List(ctx context.Context, offset, limit int) ([]*model.Channel, error) {
	var chs []*model.Channel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&chs).Error
	return chs, err
}

func (r *channelRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Channel{}).Count(&cnt).Error
	return cnt, err
}
