package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/unmask/internal/api/middleware"
	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/service"
	"github.com/d60-Lab/unmask/pkg/response"
)

// ListPosts 帖子信息流
// @Summary 帖子信息流
// @Tags 帖子
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Param sort query string false "排序 hot/recent/views" default(recent)
// @Param channel_id query string false "按频道过滤"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, limit, ok := h.pageQuery(c)
	if !ok {
		return
	}
	sort, err := model.ParsePostSort(c.DefaultQuery("sort", "recent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	q := service.PostFeedQuery{Page: page, Limit: limit, Sort: sort}
	if ch := c.Query("channel_id"); ch != "" {
		q.ChannelID = &ch
	}
	items, hasNext, err := h.feed.ListPosts(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"posts": items, "has_next_page": hasNext})
}

// GetPost 帖子详情（记一次浏览）
// @Summary 帖子详情
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	item, err := h.feed.GetPost(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"post": item})
}

type createPostRequest struct {
	ChannelID   *string  `json:"channel_id"`
	Title       string   `json:"title" binding:"required,max=256"`
	Description string   `json:"description"`
	ImageBase64 string   `json:"image_base64"`
	PollOptions []string `json:"poll_options" binding:"omitempty,min=2,max=6,dive,required"`
}

// CreatePost 发帖（可附图片与投票）
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	postID, err := h.posts.Create(c.Request.Context(), middleware.UserID(c), service.CreatePostInput{
		ChannelID:   req.ChannelID,
		Title:       req.Title,
		Description: req.Description,
		ImageBase64: req.ImageBase64,
		PollOptions: req.PollOptions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"post_id": postID})
}

type updatePostRequest struct {
	Title       string `json:"title" binding:"required,max=256"`
	Description string `json:"description"`
}

// UpdatePost 编辑帖子（仅作者）
// @Summary 编辑帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Param request body updatePostRequest true "编辑内容"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	err := h.posts.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), service.UpdatePostInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeletePost 删除帖子（仅作者，级联清理）
// @Summary 删除帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListBookmarks 我的收藏
// @Summary 收藏列表
// @Tags 收藏
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Param sort query string false "排序 recent/oldest" default(recent)
// @Success 200 {object} response.Response
// @Router /api/v1/bookmarks [get]
func (h *Handler) ListBookmarks(c *gin.Context) {
	page, limit, ok := h.pageQuery(c)
	if !ok {
		return
	}
	sort, err := model.ParseBookmarkSort(c.DefaultQuery("sort", "recent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	items, hasNext, err := h.feed.ListBookmarks(c.Request.Context(), middleware.UserID(c), service.BookmarkFeedQuery{
		Page: page, Limit: limit, Sort: sort,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"posts": items, "has_next_page": hasNext})
}
