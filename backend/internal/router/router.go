package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agora-dev/agora/backend/internal/setup"
	mw "github.com/agora-dev/agora/shared/middleware"
	"github.com/agora-dev/agora/shared/middleware/metrics"
	rl "github.com/agora-dev/agora/shared/middleware/ratelimiter"
)

// New creates a chi router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints of that group combined
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.Http.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(deps.Config.Public.Http.SecureCookies, mw.APIContentSecurityPolicy))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.GlobalRateLimit(rl.New(1000, 1000, time.Hour)))

		// Read endpoints, anonymous allowed
		r.Group(func(r chi.Router) {
			r.Use(authMw.OptionalAuth())
			r.Use(mw.RateLimit(rl.Rps10(), mw.GetUserOrIP))

			r.Get("/feed/{kind}", h.GetFeed)
			r.Get("/threads/{thread}", h.GetThread)
			r.Get("/threads/{thread}/reaction", h.GetReaction)
			r.Post("/threads/reactions", h.BatchReactions)
		})

		// Logged-in user routes
		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Use(mw.RateLimit(rl.Rps10(), mw.GetUserOrIP))

			r.Post("/threads/{thread}/like", h.LikeThread)
			r.Post("/threads/{thread}/dislike", h.DislikeThread)
			r.Post("/threads/{thread}/pin", h.TogglePinnedThread)
			r.Post("/threads/{thread}/lock", h.ToggleLockedThread)
			r.Delete("/comments/{comment}", h.DeleteComment)
			r.Get("/ai/requests", h.GenerationHistory)
			r.Get("/notifications/stream", h.StreamNotifications)

			// CreateComment: 1 per second per user
			r.With(mw.RateLimit(rl.OnceInSecond(), mw.GetUserOrIP)).Post("/threads/{thread}/comments", h.CreateComment)

			// Generation is upstream-bound: 10 per minute per user
			r.Group(func(r chi.Router) {
				r.Use(mw.RateLimit(rl.PerMinute(10), mw.GetUserOrIP))
				r.Post("/ai/summary", h.Summarize)
				r.Post("/ai/quiz", h.GenerateQuiz)
			})
		})
	})

	return r
}
