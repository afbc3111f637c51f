package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/unmask/config"
	"github.com/d60-Lab/unmask/internal/api"
	"github.com/d60-Lab/unmask/internal/api/handler"
	"github.com/d60-Lab/unmask/internal/cache"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/internal/service"
	"github.com/d60-Lab/unmask/pkg/database"
	"github.com/d60-Lab/unmask/pkg/logger"
	"github.com/d60-Lab/unmask/pkg/mailer"
	"github.com/d60-Lab/unmask/pkg/tracing"
	"github.com/d60-Lab/unmask/pkg/uploader"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	cfg := must(config.Load())
	mustDo(logger.Init(cfg.Server.Mode))
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		mustDo(sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}))
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := must(tracing.Init(ctx, "unmask", cfg.Trace.Endpoint))
	defer func() { _ = shutdownTracing(context.Background()) }()

	db := must(database.InitDB(cfg))
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})

	// repositories
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	replies := repository.NewReplyRepository(db)
	likes := repository.NewLikeRepository(db)
	bookmarks := repository.NewBookmarkRepository(db)
	follows := repository.NewFollowRepository(db)
	channels := repository.NewChannelRepository(db)
	polls := repository.NewPollRepository(db)

	// caches & workers
	views := cache.NewViewCounter(rdb, posts, cfg.Feed.ViewFlush)
	stopViews := views.Start()
	defer func() { _ = stopViews(context.Background()) }()
	pages := cache.NewPageCache(rdb, 30*time.Second)

	// services
	mail := mailer.New(cfg.Mail)
	uploads := uploader.NewLocal("uploads", "/uploads")
	authSvc := service.NewAuthService(users, rdb, mail, cfg.JWT.Secret, cfg.JWT.TTL)
	feedSvc := service.NewFeedService(posts, users, likes, bookmarks, polls, views, pages)
	postSvc := service.NewPostService(db, posts, channels, uploads, pages)
	commentSvc := service.NewCommentService(db, posts, comments, replies, likes, users)
	engageSvc := service.NewEngagementService(posts, comments, replies, likes, bookmarks, polls)
	channelSvc := service.NewChannelService(channels, follows)

	h := handler.New(cfg.Feed, authSvc, feedSvc, postSvc, commentSvc, engageSvc, channelSvc)
	r := api.NewRouter(cfg, h)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
