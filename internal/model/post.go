package model

import "time"

// Post 内容主体；频道可空（个人主页发帖）
type Post struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	CreatorID   string  `gorm:"type:varchar(36);index:idx_post_creator;not null"`
	ChannelID   *string `gorm:"type:varchar(36);index:idx_post_channel"`
	Title       string  `gorm:"type:varchar(256);not null"`
	Description string  `gorm:"type:text"`
	ImageURL    string  `gorm:"type:varchar(512)"`
	// ViewsCount 由 redis 计数器异步落库
	ViewsCount int64     `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"index:idx_post_created"`
	UpdatedAt  time.Time
}

func (Post) TableName() string { return "posts" }
