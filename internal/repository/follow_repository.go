package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/unmask/internal/model"
)

type FollowRepository interface {
	// Toggle 关注开关；follower_count 冗余列在同一事务内同步增减
	Toggle(ctx context.Context, userID, channelID string) (followed bool, err error)
	Exists(ctx context.Context, userID, channelID string) (bool, error)
	FollowedChannelIDs(ctx context.Context, userID string, channelIDs []string) (map[string]bool, error)
}

type followRepository struct{ db *gorm.DB }

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Toggle(ctx context.Context, userID, channelID string) (bool, error) {
	var followed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		followed, err = toggleRow(
			tx.Where("user_id = ? AND channel_id = ?", userID, channelID).Delete(&model.Follow{}),
			func() error {
				now := time.Now()
				f := &model.Follow{ID: uuid.New().String(), UserID: userID, ChannelID: channelID, CreatedAt: now, UpdatedAt: now}
				return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
			})
		if err != nil {
			return err
		}
		delta := int64(-1)
		if followed {
			delta = 1
		}
		return tx.Model(&model.Channel{}).Where("id = ?", channelID).
			Update("follower_count", gorm.Expr("follower_count + ?", delta)).Error
	})
	return followed, err
}

func (r *followRepository) Exists(ctx context.Context, userID, channelID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("user_id = ? AND channel_id = ?", userID, channelID).Count(&cnt).Error
	return cnt > 0, err
}

func (r *followRepository) FollowedChannelIDs(ctx context.Context, userID string, channelIDs []string) (map[string]bool, error) {
	return likedSet(ctx, r.db, &model.Follow{}, "channel_id", userID, channelIDs)
}
