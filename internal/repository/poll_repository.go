package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/unmask/internal/model"
)

// ErrAlreadyVoted 同一选项重复投票
var ErrAlreadyVoted = errors.New("already voted for the option")

type PollRepository interface {
	GetByID(ctx context.Context, id string) (*model.Poll, error)
	GetOption(ctx context.Context, optionID string) (*model.PollOption, error)
	PollsByPostIDs(ctx context.Context, postIDs []string) (map[string]*model.Poll, error)
	OptionsByPollIDs(ctx context.Context, pollIDs []string) (map[string][]*model.PollOption, error)
	// Vote 单事务换票：同选项报 ErrAlreadyVoted，异选项删旧插新
	Vote(ctx context.Context, userID, pollID, optionID string) error
	VoteCounts(ctx context.Context, optionIDs []string) (map[string]int64, error)
	ViewerVotes(ctx context.Context, userID string, pollIDs []string) (map[string]string, error)
}

type pollRepository struct{ db *gorm.DB }

func NewPollRepository(db *gorm.DB) PollRepository { return &pollRepository{db: db} }

func (r *pollRepository) GetByID(ctx context.Context, id string) (*model.Poll, error) {
	var p model.Poll
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pollRepository) GetOption(ctx context.Context, optionID string) (*model.PollOption, error) {
	var opt model.PollOption
	err := r.db.WithContext(ctx).Where("id = ?", optionID).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

func (r *pollRepository) PollsByPostIDs(ctx context.Context, postIDs []string) (map[string]*model.Poll, error) {
	res := make(map[string]*model.Poll, len(postIDs))
	if len(postIDs) == 0 {
		return res, nil
	}
	var polls []*model.Poll
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&polls).Error; err != nil {
		return nil, err
	}
	for _, p := range polls {
		res[p.PostID] = p
	}
	return res, nil
}

func (r *pollRepository) OptionsByPollIDs(ctx context.Context, pollIDs []string) (map[string][]*model.PollOption, error) {
	res := make(map[string][]*model.PollOption, len(pollIDs))
	if len(pollIDs) == 0 {
		return res, nil
	}
	var opts []*model.PollOption
	err := r.db.WithContext(ctx).
		Where("poll_id IN ?", pollIDs).
		Order("created_at ASC").
		Find(&opts).Error
	if err != nil {
		return nil, err
	}
	for _, o := range opts {
		res[o.PollID] = append(res[o.PollID], o)
	}
	return res, nil
}

func (r *pollRepository) Vote(ctx context.Context, userID, pollID, optionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PollVote
		err := tx.Where("user_id = ? AND poll_id = ?", userID, pollID).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.OptionID == optionID {
				return ErrAlreadyVoted
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 首次投票
		default:
			return err
		}
		v := &model.PollVote{ID: uuid.New().String(), UserID: userID, PollID: pollID, OptionID: optionID, CreatedAt: time.Now()}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(v).Error
	})
}

func (r *pollRepository) VoteCounts(ctx context.Context, optionIDs []string) (map[string]int64, error) {
	return groupCount(ctx, r.db, &model.PollVote{}, "option_id", optionIDs)
}

func (r *pollRepository) ViewerVotes(ctx context.Context, userID string, pollIDs []string) (map[string]string, error) {
	res := make(map[string]string, len(pollIDs))
	if len(pollIDs) == 0 {
		return res, nil
	}
	var votes []*model.PollVote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND poll_id IN ?", userID, pollIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		res[v.PollID] = v.OptionID
	}
	return res, nil
}
