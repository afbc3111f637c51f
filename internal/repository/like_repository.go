package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/unmask/internal/model"
)

// LikeRepository 三类点赞的开关与聚合查询。
// 开关在单个事务内完成删除或插入，配合复合唯一索引保证 (user, target) 至多一行。
type LikeRepository interface {
	TogglePost(ctx context.Context, userID, postID string) (liked bool, err error)
	ToggleComment(ctx context.Context, userID, commentID string) (liked bool, err error)
	ToggleReply(ctx context.Context, userID, replyID string) (liked bool, err error)

	PostLikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error)
	CommentLikeCounts(ctx context.Context, commentIDs []string) (map[string]int64, error)
	ReplyLikeCounts(ctx context.Context, replyIDs []string) (map[string]int64, error)

	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	LikedCommentIDs(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error)
	LikedReplyIDs(ctx context.Context, userID string, replyIDs []string) (map[string]bool, error)
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

// toggleRow 先删后插的开关；删到行即取消，删不到则插入
func toggleRow(res *gorm.DB, insert func() error) (bool, error) {
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	if err := insert(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *likeRepository) TogglePost(ctx context.Context, userID, postID string) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		liked, err = toggleRow(
			tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.PostLike{}),
			func() error {
				l := &model.PostLike{ID: uuid.New().String(), UserID: userID, PostID: postID, CreatedAt: time.Now()}
				return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l).Error
			})
		return err
	})
	return liked, err
}

func (r *likeRepository) ToggleComment(ctx context.Context, userID, commentID string) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		liked, err = toggleRow(
			tx.Where("user_id = ? AND comment_id = ?", userID, commentID).Delete(&model.CommentLike{}),
			func() error {
				l := &model.CommentLike{ID: uuid.New().String(), UserID: userID, CommentID: commentID, CreatedAt: time.Now()}
				return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l).Error
			})
		return err
	})
	return liked, err
}

func (r *likeRepository) ToggleReply(ctx context.Context, userID, replyID string) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		liked, err = toggleRow(
			tx.Where("user_id = ? AND reply_id = ?", userID, replyID).Delete(&model.ReplyLike{}),
			func() error {
				l := &model.ReplyLike{ID: uuid.New().String(), UserID: userID, ReplyID: replyID, CreatedAt: time.Now()}
				return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l).Error
			})
		return err
	})
	return liked, err
}

func (r *likeRepository) PostLikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return groupCount(ctx, r.db, &model.PostLike{}, "post_id", postIDs)
}

func (r *likeRepository) CommentLikeCounts(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	return groupCount(ctx, r.db, &model.CommentLike{}, "comment_id", commentIDs)
}

func (r *likeRepository) ReplyLikeCounts(ctx context.Context, replyIDs []string) (map[string]int64, error) {
	return groupCount(ctx, r.db, &model.ReplyLike{}, "reply_id", replyIDs)
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return likedSet(ctx, r.db, &model.PostLike{}, "post_id", userID, postIDs)
}

func (r *likeRepository) LikedCommentIDs(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error) {
	return likedSet(ctx, r.db, &model.CommentLike{}, "comment_id", userID, commentIDs)
}

func (r *likeRepository) LikedReplyIDs(ctx context.Context, userID string, replyIDs []string) (map[string]bool, error) {
	return likedSet(ctx, r.db, &model.ReplyLike{}, "reply_id", userID, replyIDs)
}

// likedSet 查询 viewer 对一批目标的点赞存在性
func likedSet(ctx context.Context, db *gorm.DB, mdl any, column, userID string, ids []string) (map[string]bool, error) {
	res := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var hit []string
	err := db.WithContext(ctx).Model(mdl).
		Select(column).
		Where("user_id = ? AND "+column+" IN ?", userID, ids).
		Scan(&hit).Error
	if err != nil {
		return nil, err
	}
	for _, id := range hit {
		res[id] = true
	}
	return res, nil
}
