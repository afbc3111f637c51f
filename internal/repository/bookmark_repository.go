package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/unmask/internal/model"
)

type BookmarkRepository interface {
	Toggle(ctx context.Context, userID, postID string) (bookmarked bool, err error)
	Exists(ctx context.Context, userID, postID string) (bool, error)
	ListByUser(ctx context.Context, userID string, sort model.BookmarkSort, offset, limit int) ([]*model.Bookmark, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	BookmarkedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

type bookmarkRepository struct{ db *gorm.DB }

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository { return &bookmarkRepository{db: db} }

func (r *bookmarkRepository) Toggle(ctx context.Context, userID, postID string) (bool, error) {
	var bookmarked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		bookmarked, err = toggleRow(
			tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Bookmark{}),
			func() error {
				b := &model.Bookmark{ID: uuid.New().String(), UserID: userID, PostID: postID, CreatedAt: time.Now()}
				return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
			})
		return err
	})
	return bookmarked, err
}

func (r *bookmarkRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ? AND post_id = ?", userID, postID).Count(&cnt).Error
	return cnt > 0, err
}

func bookmarkOrderFor(sort model.BookmarkSort) string {
	if sort == model.BookmarkSortOldest {
		return "created_at ASC"
	}
	return "created_at DESC"
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID string, sort model.BookmarkSort, offset, limit int) ([]*model.Bookmark, error) {
	var bms []*model.Bookmark
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(bookmarkOrderFor(sort)).
		Offset(offset).Limit(limit).
		Find(&bms).Error
	return bms, err
}

func (r *bookmarkRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

func (r *bookmarkRepository) BookmarkedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	return likedSet(ctx, r.db, &model.Bookmark{}, "post_id", userID, postIDs)
}
