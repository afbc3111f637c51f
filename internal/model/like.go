package model

import "time"

// PostLike 帖子点赞，(user, post) 复合唯一
type PostLike struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_post_like_pair,unique;not null"`
	PostID    string `gorm:"type:varchar(36);index:idx_post_like_pair,unique;index:idx_post_like_post;not null"`
	CreatedAt time.Time
}

func (PostLike) TableName() string { return "post_likes" }

// CommentLike 评论点赞，(user, comment) 复合唯一
type CommentLike struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_comment_like_pair,unique;not null"`
	CommentID string `gorm:"type:varchar(36);index:idx_comment_like_pair,unique;index:idx_comment_like_comment;not null"`
	CreatedAt time.Time
}

func (CommentLike) TableName() string { return "comment_likes" }

// ReplyLike 回复点赞，(user, reply) 复合唯一
type ReplyLike struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_reply_like_pair,unique;not null"`
	ReplyID   string `gorm:"type:varchar(36);index:idx_reply_like_pair,unique;index:idx_reply_like_reply;not null"`
	CreatedAt time.Time
}

func (ReplyLike) TableName() string { return "reply_likes" }
