package model

import "time"

// Comment 帖子评论
type Comment struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	PostID      string    `gorm:"type:varchar(36);index:idx_comment_post;not null"`
	CommenterID string    `gorm:"type:varchar(36);index:idx_comment_user;not null"`
	Text        string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"index:idx_comment_created"`
	UpdatedAt   time.Time
}

func (Comment) TableName() string { return "comments" }

// Reply 评论回复
type Reply struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	CommentID string    `gorm:"type:varchar(36);index:idx_reply_comment;not null"`
	ReplierID string    `gorm:"type:varchar(36);index:idx_reply_user;not null"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_reply_created"`
	UpdatedAt time.Time
}

func (Reply) TableName() string { return "replies" }
