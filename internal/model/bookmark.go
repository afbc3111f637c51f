package model

import "time"

// Bookmark 收藏，(user, post) 复合唯一
type Bookmark struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index:idx_bookmark_pair,unique;index:idx_bookmark_user;not null"`
	PostID    string    `gorm:"type:varchar(36);index:idx_bookmark_pair,unique;not null"`
	CreatedAt time.Time `gorm:"index:idx_bookmark_created"`
}

func (Bookmark) TableName() string { return "bookmarks" }
