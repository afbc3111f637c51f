package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/unmask/config"
	_ "github.com/d60-Lab/unmask/docs"
	"github.com/d60-Lab/unmask/internal/api/handler"
	"github.com/d60-Lab/unmask/internal/api/middleware"
	"github.com/d60-Lab/unmask/pkg/response"
)

// NewRouter 组装 gin 引擎与路由表
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery(), gzip.Gzip(gzip.DefaultCompression), otelgin.Middleware("unmask"))

	r.GET("/healthz", func(c *gin.Context) { response.Success(c, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	optional := middleware.OptionalAuth(cfg.JWT.Secret)
	required := middleware.RequireAuth(cfg.JWT.Secret)
	// 写接口限速，读接口不限
	writeLimit := middleware.RateLimit(rate.Limit(5), 10)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth", writeLimit)
		{
			auth.POST("/signup/start", h.SignupStart)
			auth.POST("/signup/profile", h.SignupProfile)
			auth.POST("/signup/verify", h.SignupVerify)
			auth.POST("/signin", h.SignIn)
		}

		v1.GET("/posts", optional, h.ListPosts)
		v1.GET("/posts/:id", optional, h.GetPost)
		v1.GET("/posts/:id/comments", optional, h.ListComments)
		v1.GET("/comments/:id/replies", optional, h.ListMoreReplies)
		v1.GET("/channels", optional, h.ListChannels)

		authed := v1.Group("", required, writeLimit)
		{
			authed.POST("/posts", h.CreatePost)
			authed.PUT("/posts/:id", h.UpdatePost)
			authed.DELETE("/posts/:id", h.DeletePost)
			authed.POST("/posts/:id/bookmark", h.ToggleBookmark)
			authed.POST("/posts/:id/like", h.TogglePostLike)

			authed.POST("/comments", h.CreateComment)
			authed.PUT("/comments/:id", h.UpdateComment)
			authed.DELETE("/comments/:id", h.DeleteComment)
			authed.POST("/comments/:id/like", h.ToggleCommentLike)

			authed.POST("/replies", h.CreateReply)
			authed.PUT("/replies/:id", h.UpdateReply)
			authed.DELETE("/replies/:id", h.DeleteReply)
			authed.POST("/replies/:id/like", h.ToggleReplyLike)

			authed.POST("/polls/vote", h.Vote)

			authed.POST("/channels", h.CreateChannel)
			authed.POST("/channels/:id/follow", h.ToggleFollow)
		}

		bookmarks := v1.Group("/bookmarks", required)
		{
			bookmarks.GET("", h.ListBookmarks)
		}
	}

	return r
}
