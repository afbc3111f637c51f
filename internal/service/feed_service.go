package service

import (
	"context"
	"fmt"
	"time"

	"github.com/d60-Lab/unmask/internal/cache"
	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/pagination"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
)

// FeedPost 帖子信息流条目；IsLiked / IsBookmarked 仅登录用户返回
type FeedPost struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creator_id"`
	CreatorName  string    `json:"creator_name"`
	ChannelID    *string   `json:"channel_id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url,omitempty"`
	ViewsCount   int64     `json:"views_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Edited       bool      `json:"edited"`
	IsLiked      *bool     `json:"is_liked,omitempty"`
	IsBookmarked *bool     `json:"is_bookmarked,omitempty"`
	Poll         *FeedPoll `json:"poll,omitempty"`
}

// FeedPoll 帖子附带的投票；VotedOptionID 仅登录用户返回
type FeedPoll struct {
	ID            string            `json:"id"`
	Options       []*FeedPollOption `json:"options"`
	TotalVotes    int64             `json:"total_votes"`
	VotedOptionID *string           `json:"voted_option_id,omitempty"`
}

type FeedPollOption struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	VoteCount int64  `json:"vote_count"`
}

// PostFeedQuery 帖子信息流入参；Sort 已在边界解析校验
type PostFeedQuery struct {
	ChannelID *string
	Page      int
	Limit     int
	Sort      model.PostSort
}

// BookmarkFeedQuery 收藏信息流入参
type BookmarkFeedQuery struct {
	Page  int
	Limit int
	Sort  model.BookmarkSort
}

type FeedService interface {
	// ListPosts viewerID 为空表示匿名访问
	ListPosts(ctx context.Context, viewerID string, q PostFeedQuery) ([]*FeedPost, bool, error)
	GetPost(ctx context.Context, viewerID, postID string) (*FeedPost, error)
	ListBookmarks(ctx context.Context, userID string, q BookmarkFeedQuery) ([]*FeedPost, bool, error)
}

type feedService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	likes     repository.LikeRepository
	bookmarks repository.BookmarkRepository
	polls     repository.PollRepository
	views     *cache.ViewCounter
	pages     *cache.PageCache
}

func NewFeedService(
	posts repository.PostRepository,
	users repository.UserRepository,
	likes repository.LikeRepository,
	bookmarks repository.BookmarkRepository,
	polls repository.PollRepository,
	views *cache.ViewCounter,
	pages *cache.PageCache,
) FeedService {
	return &feedService{posts: posts, users: users, likes: likes, bookmarks: bookmarks, polls: polls, views: views, pages: pages}
}

// postFeedCachePrefix 匿名帖子信息流页缓存键前缀；写路径按它整体失效
const postFeedCachePrefix = "feed:posts:"

type cachedPostPage struct {
	Items   []*FeedPost `json:"items"`
	HasNext bool        `json:"has_next"`
}

func (s *feedService) ListPosts(ctx context.Context, viewerID string, q PostFeedQuery) ([]*FeedPost, bool, error) {
	q.Page, q.Limit = pagination.Normalize(q.Page, q.Limit)

	// 匿名请求无 viewer 字段，结果可短暂缓存
	var cacheKey string
	if viewerID == "" && s.pages != nil {
		ch := "all"
		if q.ChannelID != nil {
			ch = *q.ChannelID
		}
		cacheKey = fmt.Sprintf("%s%s:%d:%d:%d", postFeedCachePrefix, ch, q.Sort, q.Page, q.Limit)
		var page cachedPostPage
		if s.pages.Get(ctx, cacheKey, &page) {
			return page.Items, page.HasNext, nil
		}
	}

	rows, err := s.posts.List(ctx, q.ChannelID, q.Sort, pagination.Offset(q.Page, q.Limit), q.Limit)
	if err != nil {
		return nil, false, err
	}
	total, err := s.posts.Count(ctx, q.ChannelID)
	if err != nil {
		return nil, false, err
	}
	items, err := s.assemble(ctx, viewerID, rows)
	if err != nil {
		return nil, false, err
	}
	hasNext := pagination.HasNext(total, q.Page, q.Limit)

	if cacheKey != "" {
		s.pages.Set(ctx, cacheKey, cachedPostPage{Items: items, HasNext: hasNext})
	}
	return items, hasNext, nil
}

func (s *feedService) GetPost(ctx context.Context, viewerID, postID string) (*FeedPost, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	items, err := s.assemble(ctx, viewerID, []*model.Post{p})
	if err != nil {
		return nil, err
	}
	if s.views != nil {
		s.views.Incr(ctx, postID)
	}
	return items[0], nil
}

func (s *feedService) ListBookmarks(ctx context.Context, userID string, q BookmarkFeedQuery) ([]*FeedPost, bool, error) {
	q.Page, q.Limit = pagination.Normalize(q.Page, q.Limit)
	bms, err := s.bookmarks.ListByUser(ctx, userID, q.Sort, pagination.Offset(q.Page, q.Limit), q.Limit)
	if err != nil {
		return nil, false, err
	}
	total, err := s.bookmarks.CountByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	ids := make([]string, len(bms))
	for i, b := range bms {
		ids[i] = b.PostID
	}
	byID, err := s.posts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	// 按收藏顺序排列；收藏指向的帖子可能已被删除，跳过即可
	rows := make([]*model.Post, 0, len(bms))
	for _, b := range bms {
		if p, ok := byID[b.PostID]; ok {
			rows = append(rows, p)
		}
	}
	items, err := s.assemble(ctx, userID, rows)
	if err != nil {
		return nil, false, err
	}
	return items, pagination.HasNext(total, q.Page, q.Limit), nil
}

// assemble 投影信息流条目：作者、聚合计数、投票、viewer 相对字段
func (s *feedService) assemble(ctx context.Context, viewerID string, rows []*model.Post) ([]*FeedPost, error) {
	if len(rows) == 0 {
		return []*FeedPost{}, nil
	}
	postIDs := make([]string, len(rows))
	creatorIDs := make([]string, len(rows))
	for i, p := range rows {
		postIDs[i] = p.ID
		creatorIDs[i] = p.CreatorID
	}

	creators, err := s.users.GetByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.PostLikeCounts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.posts.CommentCounts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	pollsByPost, err := s.polls.PollsByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	pollIDs := make([]string, 0, len(pollsByPost))
	for _, p := range pollsByPost {
		pollIDs = append(pollIDs, p.ID)
	}
	optsByPoll, err := s.polls.OptionsByPollIDs(ctx, pollIDs)
	if err != nil {
		return nil, err
	}
	optionIDs := make([]string, 0)
	for _, opts := range optsByPoll {
		for _, o := range opts {
			optionIDs = append(optionIDs, o.ID)
		}
	}
	voteCounts, err := s.polls.VoteCounts(ctx, optionIDs)
	if err != nil {
		return nil, err
	}

	var liked, bookmarked map[string]bool
	var viewerVotes map[string]string
	if viewerID != "" {
		if liked, err = s.likes.LikedPostIDs(ctx, viewerID, postIDs); err != nil {
			return nil, err
		}
		if bookmarked, err = s.bookmarks.BookmarkedPostIDs(ctx, viewerID, postIDs); err != nil {
			return nil, err
		}
		if viewerVotes, err = s.polls.ViewerVotes(ctx, viewerID, pollIDs); err != nil {
			return nil, err
		}
	}

	items := make([]*FeedPost, len(rows))
	for i, p := range rows {
		item := &FeedPost{
			ID:           p.ID,
			CreatorID:    p.CreatorID,
			ChannelID:    p.ChannelID,
			Title:        p.Title,
			Description:  p.Description,
			ImageURL:     p.ImageURL,
			ViewsCount:   p.ViewsCount,
			LikeCount:    likeCounts[p.ID],
			CommentCount: commentCounts[p.ID],
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
			Edited:       p.UpdatedAt.After(p.CreatedAt),
		}
		if u, ok := creators[p.CreatorID]; ok {
			item.CreatorName = u.Username
		}
		if poll, ok := pollsByPost[p.ID]; ok {
			fp := &FeedPoll{ID: poll.ID, Options: []*FeedPollOption{}}
			for _, o := range optsByPoll[poll.ID] {
				fp.Options = append(fp.Options, &FeedPollOption{ID: o.ID, Label: o.Label, VoteCount: voteCounts[o.ID]})
				fp.TotalVotes += voteCounts[o.ID]
			}
			if viewerID != "" {
				if optID, ok := viewerVotes[poll.ID]; ok {
					fp.VotedOptionID = &optID
				}
			}
			item.Poll = fp
		}
		if viewerID != "" {
			l, b := liked[p.ID], bookmarked[p.ID]
			item.IsLiked, item.IsBookmarked = &l, &b
		}
		items[i] = item
	}
	return items, nil
}
