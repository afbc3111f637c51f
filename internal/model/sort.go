package model

import "github.com/d60-Lab/unmask/pkg/apperr"

// PostSort 帖子排序键
type PostSort int

const (
	PostSortHot PostSort = iota + 1
	PostSortRecent
	PostSortViews
)

// ParsePostSort 解析帖子排序键；未知值按 not found 拒绝，不做静默回退
func ParsePostSort(s string) (PostSort, error) {
	switch s {
	case "hot":
		return PostSortHot, nil
	case "recent":
		return PostSortRecent, nil
	case "views":
		return PostSortViews, nil
	default:
		return 0, apperr.NotFound("Sort not found")
	}
}

// CommentSort 评论排序键
type CommentSort int

const (
	CommentSortOldest CommentSort = iota + 1
	CommentSortNewest
	CommentSortTop
)

// ParseCommentSort 解析评论排序键
func ParseCommentSort(s string) (CommentSort, error) {
	switch s {
	case "oldest":
		return CommentSortOldest, nil
	case "newest":
		return CommentSortNewest, nil
	case "top":
		return CommentSortTop, nil
	default:
		return 0, apperr.NotFound("Sort not found")
	}
}

// BookmarkSort 收藏排序键
type BookmarkSort int

const (
	BookmarkSortRecent BookmarkSort = iota + 1
	BookmarkSortOldest
)

// ParseBookmarkSort 解析收藏排序键
func ParseBookmarkSort(s string) (BookmarkSort, error) {
	switch s {
	case "recent":
		return BookmarkSortRecent, nil
	case "oldest":
		return BookmarkSortOldest, nil
	default:
		return 0, apperr.NotFound("Sort not found")
	}
}
