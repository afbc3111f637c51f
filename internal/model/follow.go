package model

import "time"

// Follow 用户关注频道，(user, channel) 复合唯一
type Follow struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_follow_user;index:idx_follow_pair,unique;not null"`
	ChannelID string `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
