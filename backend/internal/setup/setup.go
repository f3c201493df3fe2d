package setup

import (
	"context"

	"github.com/agora-dev/agora/backend/internal/handler"
	"github.com/agora-dev/agora/backend/internal/llm"
	"github.com/agora-dev/agora/backend/internal/service"
	"github.com/agora-dev/agora/backend/internal/service/utils"
	"github.com/agora-dev/agora/backend/internal/storage/pg"
	"github.com/agora-dev/agora/shared/config"
	"github.com/agora-dev/agora/shared/jwt"
	"github.com/agora-dev/agora/shared/logger"
	mw "github.com/agora-dev/agora/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *mw.Auth
	CacheGC        *service.CacheGarbageCollector
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	scorer := service.NewTrendingScorer(nil)
	hub := service.NewNotificationHub(cfg.Public.Notifications.BufferSize, nil)

	reaction := service.NewReaction(storage, scorer, hub)
	views := service.NewViewTracker(storage)
	thread := service.NewThread(storage, views, reaction, scorer)
	feed := service.NewFeed(storage, reaction, scorer, cfg.Public.Feed)
	comment := service.NewComment(storage, storage, hub, cfg.Public.Aggregation.CommentMaxLength)

	aggregator := service.NewAggregator(storage, cfg.Public.Aggregation)
	gateway := service.NewGateway(storage, generator, cfg.Public.Generation, nil)
	ai := service.NewAIContent(aggregator, gateway, utils.NewRenderer(), cfg.Public.Aggregation.HistoryPageLimit)

	h := handler.New(handler.Services{
		Feed:          feed,
		Thread:        thread,
		Reaction:      reaction,
		Comment:       comment,
		AI:            ai,
		Notifications: hub,
		Health:        storage,
	}, cfg)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		Jwt:            jwtService,
		AuthMiddleware: mw.NewAuth(jwtService, cfg.Public.Http.SecureCookies),
		CacheGC:        service.NewCacheGarbageCollector(storage, nil),
	}, nil
}

func newGenerator(ctx context.Context, cfg *config.Config) (service.Generator, error) {
	if cfg.Private.LLMApiKey == "" {
		logger.Log.Warn("llm_api_key is empty, AI endpoints will return fallback messages",
			"component", "setup",
			"provider", cfg.Public.Generation.Provider)
		return llm.Unconfigured(), nil
	}
	return llm.New(ctx, cfg.Public.Generation, cfg.Private.LLMApiKey)
}
