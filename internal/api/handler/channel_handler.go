package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/unmask/internal/api/middleware"
	"github.com/d60-Lab/unmask/internal/service"
	"github.com/d60-Lab/unmask/pkg/response"
)

// ListChannels 频道列表（关注数仅展示）
// @Summary 频道列表
// @Tags 频道
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/channels [get]
func (h *Handler) ListChannels(c *gin.Context) {
	page, limit, ok := h.pageQuery(c)
	if !ok {
		return
	}
	items, hasNext, err := h.channels.List(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"channels": items, "has_next_page": hasNext})
}

type createChannelRequest struct {
	Name        string `json:"name" binding:"required,max=64"`
	Description string `json:"description"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=public private"`
	Type        string `json:"type" binding:"omitempty,max=32"`
}

// CreateChannel 建频道；私有频道返回邀请码
// @Summary 创建频道
// @Tags 频道
// @Param request body createChannelRequest true "频道信息"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/channels [post]
func (h *Handler) CreateChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	item, err := h.channels.Create(c.Request.Context(), middleware.UserID(c), service.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		Type:        req.Type,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"channel": item})
}

type followChannelRequest struct {
	InviteCode string `json:"invite_code"`
}

// ToggleFollow 关注开关；私有频道首次关注需邀请码
// @Summary 关注/取消关注频道
// @Tags 频道
// @Param id path string true "频道ID"
// @Param request body followChannelRequest false "邀请码"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/channels/{id}/follow [post]
func (h *Handler) ToggleFollow(c *gin.Context) {
	var req followChannelRequest
	// body 可为空
	_ = c.ShouldBindJSON(&req)
	followed, err := h.channels.ToggleFollow(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.InviteCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"followed": followed})
}
