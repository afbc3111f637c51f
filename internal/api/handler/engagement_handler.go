package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/unmask/internal/api/middleware"
	"github.com/d60-Lab/unmask/pkg/response"
)

// ToggleBookmark 收藏开关
// @Summary 收藏/取消收藏
// @Tags 收藏
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/bookmark [post]
func (h *Handler) ToggleBookmark(c *gin.Context) {
	bookmarked, err := h.engage.ToggleBookmark(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"bookmarked": bookmarked})
}

// TogglePostLike 帖子点赞开关
// @Summary 点赞/取消点赞帖子
// @Tags 点赞
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/like [post]
func (h *Handler) TogglePostLike(c *gin.Context) {
	liked, err := h.engage.TogglePostLike(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// ToggleCommentLike 评论点赞开关
// @Summary 点赞/取消点赞评论
// @Tags 点赞
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{id}/like [post]
func (h *Handler) ToggleCommentLike(c *gin.Context) {
	liked, err := h.engage.ToggleCommentLike(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// ToggleReplyLike 回复点赞开关
// @Summary 点赞/取消点赞回复
// @Tags 点赞
// @Param id path string true "回复ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/replies/{id}/like [post]
func (h *Handler) ToggleReplyLike(c *gin.Context) {
	liked, err := h.engage.ToggleReplyLike(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

type voteRequest struct {
	PollID       string `json:"poll_id" binding:"required"`
	PollOptionID string `json:"poll_option_id" binding:"required"`
}

// Vote 投票；同选项重复投票报冲突，换选项视为改票
// @Summary 投票
// @Tags 投票
// @Param request body voteRequest true "投票信息"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/polls/vote [post]
func (h *Handler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	if err := h.engage.Vote(c.Request.Context(), middleware.UserID(c), req.PollID, req.PollOptionID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
