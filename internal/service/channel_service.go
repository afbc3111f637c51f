package service

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/pagination"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
)

// ChannelItem 频道列表条目；FollowerCount 为冗余列，仅展示用
type ChannelItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Visibility    string    `json:"visibility"`
	Type          string    `json:"type"`
	FollowerCount int64     `json:"follower_count"`
	CreatedAt     time.Time `json:"created_at"`
	IsFollowed    *bool     `json:"is_followed,omitempty"`
	// InviteCode 仅创建者可见
	InviteCode string `json:"invite_code,omitempty"`
}

// CreateChannelInput 建频道入参
type CreateChannelInput struct {
	Name        string
	Description string
	Visibility  string
	Type        string
}

type ChannelService interface {
	Create(ctx context.Context, userID string, in CreateChannelInput) (*ChannelItem, error)
	List(ctx context.Context, viewerID string, page, limit int) ([]*ChannelItem, bool, error)
	// ToggleFollow 关注开关；私有频道首次关注需携带邀请码
	ToggleFollow(ctx context.Context, userID, channelID, inviteCode string) (followed bool, err error)
}

type channelService struct {
	channels repository.ChannelRepository
	follows  repository.FollowRepository
}

func NewChannelService(channels repository.ChannelRepository, follows repository.FollowRepository) ChannelService {
	return &channelService{channels: channels, follows: follows}
}

const inviteCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newInviteCode 加密随机 8 位邀请码，入库前查重
func (s *channelService) newInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		b := make([]byte, 8)
		for i, c := range buf {
			b[i] = inviteCodeChars[int(c)%len(inviteCodeChars)]
		}
		code := string(b)
		exists, err := s.channels.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperr.New(apperr.KindInternal, "Something went wrong")
}

func (s *channelService) Create(ctx context.Context, userID string, in CreateChannelInput) (*ChannelItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Invalid("Invalid fields")
	}
	switch in.Visibility {
	case "":
		in.Visibility = model.VisibilityPublic
	case model.VisibilityPublic, model.VisibilityPrivate:
	default:
		return nil, apperr.Invalid("Invalid fields")
	}
	if in.Type == "" {
		in.Type = model.ChannelTypeGeneral
	}

	// 频道名区分大小写精确查重
	exists, err := s.channels.NameExists(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Channel name already taken")
	}

	ch := &model.Channel{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Visibility:  in.Visibility,
		Type:        in.Type,
		CreatorID:   userID,
	}
	if in.Visibility == model.VisibilityPrivate {
		if ch.InviteCode, err = s.newInviteCode(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, err
	}
	return &ChannelItem{
		ID:            ch.ID,
		Name:          ch.Name,
		Description:   ch.Description,
		Visibility:    ch.Visibility,
		Type:          ch.Type,
		FollowerCount: 0,
		CreatedAt:     ch.CreatedAt,
		InviteCode:    ch.InviteCode,
	}, nil
}

func (s *channelService) List(ctx context.Context, viewerID string, page, limit int) ([]*ChannelItem, bool, error) {
	page, limit = pagination.Normalize(page, limit)
	rows, err := s.channels.List(ctx, pagination.Offset(page, limit), limit)
	if err != nil {
		return nil, false, err
	}
	total, err := s.channels.Count(ctx)
	if err != nil {
		return nil, false, err
	}

	var followed map[string]bool
	if viewerID != "" {
		ids := make([]string, len(rows))
		for i, ch := range rows {
			ids[i] = ch.ID
		}
		if followed, err = s.follows.FollowedChannelIDs(ctx, viewerID, ids); err != nil {
			return nil, false, err
		}
	}

	items := make([]*ChannelItem, len(rows))
	for i, ch := range rows {
		item := &ChannelItem{
			ID:            ch.ID,
			Name:          ch.Name,
			Description:   ch.Description,
			Visibility:    ch.Visibility,
			Type:          ch.Type,
			FollowerCount: ch.FollowerCount,
			CreatedAt:     ch.CreatedAt,
		}
		if viewerID != "" {
			f := followed[ch.ID]
			item.IsFollowed = &f
			if ch.CreatorID == viewerID {
				item.InviteCode = ch.InviteCode
			}
		}
		items[i] = item
	}
	return items, pagination.HasNext(total, page, limit), nil
}

func (s *channelService) ToggleFollow(ctx context.Context, userID, channelID, inviteCode string) (bool, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return false, err
	}
	if ch == nil {
		return false, apperr.NotFound("Channel not found")
	}
	if ch.Visibility == model.VisibilityPrivate && ch.CreatorID != userID {
		following, err := s.follows.Exists(ctx, userID, channelID)
		if err != nil {
			return false, err
		}
		// 已关注的是取关操作，无需邀请码
		if !following && inviteCode != ch.InviteCode {
			return false, apperr.Forbidden("Not permitted")
		}
	}
	return s.follows.Toggle(ctx, userID, channelID)
}
