package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agora-dev/agora/backend/internal/service"
	"github.com/agora-dev/agora/shared/config"
	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// NotificationStream is the subscriber side of the notification hub.
type NotificationStream interface {
	Subscribe(userId domain.UserId) *service.Subscription
	Unsubscribe(sub *service.Subscription)
}

type Handler struct {
	feed          service.FeedService
	thread        service.ThreadService
	reaction      service.ReactionService
	comment       service.CommentService
	ai            service.AIContentService
	notifications NotificationStream
	health        HealthChecker
	cfg           *config.Config
}

type Services struct {
	Feed          service.FeedService
	Thread        service.ThreadService
	Reaction      service.ReactionService
	Comment       service.CommentService
	AI            service.AIContentService
	Notifications NotificationStream
	Health        HealthChecker
}

func New(s Services, cfg *config.Config) *Handler {
	return &Handler{
		feed:          s.Feed,
		thread:        s.Thread,
		reaction:      s.Reaction,
		comment:       s.Comment,
		ai:            s.AI,
		notifications: s.Notifications,
		health:        s.Health,
		cfg:           cfg,
	}
}

// parseIdParam reads a positive int64 chi URL parameter.
func parseIdParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal_errors.InvalidInput(fmt.Sprintf("invalid %s id: must be a positive integer", name))
	}
	return id, nil
}

// parseIntQuery returns def when the query parameter is absent.
func parseIntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, internal_errors.InvalidInput(fmt.Sprintf("invalid %s: must be an integer", name))
	}
	return v, nil
}
