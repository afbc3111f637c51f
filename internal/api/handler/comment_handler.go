package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/unmask/internal/api/middleware"
	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/service"
	"github.com/d60-Lab/unmask/pkg/response"
)

// ListComments 帖子评论（带回复预览）
// @Summary 评论列表
// @Tags 评论
// @Param id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param comments_limit query int false "每页评论数" default(10)
// @Param replies_limit query int false "内联回复预览条数" default(2)
// @Param sort query string false "排序 oldest/newest/top" default(oldest)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		response.BadRequest(c, "Invalid fields")
		return
	}
	commentsLimit, err := strconv.Atoi(c.DefaultQuery("comments_limit", strconv.Itoa(h.cfg.DefaultLimit)))
	if err != nil || commentsLimit < 1 {
		response.BadRequest(c, "Invalid fields")
		return
	}
	if commentsLimit > h.cfg.MaxLimit {
		commentsLimit = h.cfg.MaxLimit
	}
	repliesLimit, err := strconv.Atoi(c.DefaultQuery("replies_limit", strconv.Itoa(h.cfg.RepliesPerPage)))
	if err != nil || repliesLimit < 0 {
		response.BadRequest(c, "Invalid fields")
		return
	}
	sort, err := model.ParseCommentSort(c.DefaultQuery("sort", "oldest"))
	if err != nil {
		response.Error(c, err)
		return
	}

	items, hasNext, err := h.comments.ListByPost(c.Request.Context(), middleware.UserID(c), service.CommentFeedQuery{
		PostID:        c.Param("id"),
		Page:          page,
		CommentsLimit: commentsLimit,
		RepliesLimit:  repliesLimit,
		Sort:          sort,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"comments": items, "has_next_page": hasNext})
}

// ListMoreReplies 展开更多回复；跳过已内联展示的预览条数
// @Summary 更多回复
// @Tags 评论
// @Param id path string true "评论ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Param replies_per_page query int false "已内联展示的条数" default(2)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{id}/replies [get]
func (h *Handler) ListMoreReplies(c *gin.Context) {
	page, limit, ok := h.pageQuery(c)
	if !ok {
		return
	}
	preview, err := strconv.Atoi(c.DefaultQuery("replies_per_page", strconv.Itoa(h.cfg.RepliesPerPage)))
	if err != nil || preview < 0 {
		response.BadRequest(c, "Invalid fields")
		return
	}
	items, hasNext, err := h.comments.ListMoreReplies(c.Request.Context(), middleware.UserID(c), service.ReplyFeedQuery{
		CommentID:      c.Param("id"),
		Page:           page,
		Limit:          limit,
		RepliesPerPage: preview,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"replies": items, "has_next_page": hasNext})
}

type createCommentRequest struct {
	PostID string `json:"post_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// CreateComment 发表评论
// @Summary 发表评论
// @Tags 评论
// @Param request body createCommentRequest true "评论内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	item, err := h.comments.Create(c.Request.Context(), middleware.UserID(c), req.PostID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"comment": item})
}

type editTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateComment 编辑评论（仅作者）
// @Summary 编辑评论
// @Tags 评论
// @Param id path string true "评论ID"
// @Param request body editTextRequest true "新内容"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/comments/{id} [put]
func (h *Handler) UpdateComment(c *gin.Context) {
	var req editTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	if err := h.comments.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Text); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteComment 删除评论（仅作者，连带回复）
// @Summary 删除评论
// @Tags 评论
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

type createReplyRequest struct {
	CommentID string `json:"comment_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// CreateReply 回复评论
// @Summary 回复评论
// @Tags 评论
// @Param request body createReplyRequest true "回复内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/replies [post]
func (h *Handler) CreateReply(c *gin.Context) {
	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	item, err := h.comments.CreateReply(c.Request.Context(), middleware.UserID(c), req.CommentID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"reply": item})
}

// UpdateReply 编辑回复（仅作者）
// @Summary 编辑回复
// @Tags 评论
// @Param id path string true "回复ID"
// @Param request body editTextRequest true "新内容"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/replies/{id} [put]
func (h *Handler) UpdateReply(c *gin.Context) {
	var req editTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	if err := h.comments.UpdateReply(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Text); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteReply 删除回复（仅作者）
// @Summary 删除回复
// @Tags 评论
// @Param id path string true "回复ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/replies/{id} [delete]
func (h *Handler) DeleteReply(c *gin.Context) {
	if err := h.comments.DeleteReply(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
