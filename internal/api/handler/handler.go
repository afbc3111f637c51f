package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/unmask/config"
	"github.com/d60-Lab/unmask/internal/service"
	"github.com/d60-Lab/unmask/pkg/response"
)

// Handler 聚合全部 HTTP 入口
type Handler struct {
	cfg      config.FeedConfig
	auth     service.AuthService
	feed     service.FeedService
	posts    service.PostService
	comments service.CommentService
	engage   service.EngagementService
	channels service.ChannelService
}

func New(
	cfg config.FeedConfig,
	auth service.AuthService,
	feed service.FeedService,
	posts service.PostService,
	comments service.CommentService,
	engage service.EngagementService,
	channels service.ChannelService,
) *Handler {
	return &Handler{cfg: cfg, auth: auth, feed: feed, posts: posts, comments: comments, engage: engage, channels: channels}
}

// pageQuery 解析 page/limit；非正整数按非法入参拒绝
func (h *Handler) pageQuery(c *gin.Context) (page, limit int, ok bool) {
	var err error
	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		response.BadRequest(c, "Invalid fields")
		return 0, 0, false
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.cfg.DefaultLimit)))
	if err != nil || limit < 1 {
		response.BadRequest(c, "Invalid fields")
		return 0, 0, false
	}
	if limit > h.cfg.MaxLimit {
		limit = h.cfg.MaxLimit
	}
	return page, limit, true
}
