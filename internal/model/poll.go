package model

import "time"

// Poll 帖子投票，一帖至多一个
type Poll struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(36);uniqueIndex;not null"`
	CreatedAt time.Time
}

func (Poll) TableName() string { return "polls" }

// PollOption 投票选项
type PollOption struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PollID    string `gorm:"type:varchar(36);index:idx_poll_option_poll;not null"`
	Label     string `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time
}

func (PollOption) TableName() string { return "poll_options" }

// PollVote 用户投票，(user, poll) 复合唯一：换选项时删旧插新
type PollVote struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_poll_vote_pair,unique;not null"`
	PollID    string `gorm:"type:varchar(36);index:idx_poll_vote_pair,unique;not null"`
	OptionID  string `gorm:"type:varchar(36);index:idx_poll_vote_option;not null"`
	CreatedAt time.Time
}

func (PollVote) TableName() string { return "poll_votes" }
