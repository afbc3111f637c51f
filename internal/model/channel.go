package model

import "time"

// Channel 频道（topic）
type Channel struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Name        string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Visibility  string `gorm:"type:varchar(16);not null;default:public"`
	Type        string `gorm:"type:varchar(32);not null;default:general"`
	// InviteCode 仅私有频道使用，生成时查重保证唯一
	InviteCode    string `gorm:"type:varchar(16);index"`
	CreatorID     string `gorm:"type:varchar(36);index:idx_channel_creator;not null"`
	FollowerCount int64  `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Channel) TableName() string { return "channels" }

// 频道可见性
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// 频道类型
const (
	ChannelTypeGeneral    = "general"
	ChannelTypeDiscussion = "discussion"
	ChannelTypeNews       = "news"
)
