package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agora-dev/agora/backend/internal/service"
	"github.com/agora-dev/agora/shared/api"
	"github.com/agora-dev/agora/shared/domain"
	mw "github.com/agora-dev/agora/shared/middleware"
	"github.com/agora-dev/agora/shared/utils"
)

type feedFunc func(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error)

func (h *Handler) feedByKind(kind string) (feedFunc, bool) {
	switch service.FeedKind(kind) {
	case service.FeedPersonalized:
		return h.feed.Personalized, true
	case service.FeedTrending:
		return h.feed.Trending, true
	case service.FeedHot:
		return h.feed.Hot, true
	case service.FeedNew:
		return h.feed.New, true
	}
	return nil, false
}

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	compose, ok := h.feedByKind(chi.URLParam(r, "kind"))
	if !ok {
		http.Error(w, "Unknown feed", http.StatusNotFound)
		return
	}

	page, err := parseIntQuery(r, "page", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	size, err := parseIntQuery(r, "size", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := compose(r.Context(), mw.UserIdFromContext(r), page, size)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.FeedResponse{Page: result})
}
