package handler

import (
	"context"
	"net/http"

	"github.com/agora-dev/agora/shared/api"
	"github.com/agora-dev/agora/shared/domain"
	mw "github.com/agora-dev/agora/shared/middleware"
	"github.com/agora-dev/agora/shared/utils"
)

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIdParam(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, counted, err := h.thread.Get(r.Context(), threadId, mw.GetUserFromContext(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ThreadResponse{RankedThread: thread, ViewCounted: counted})
}

func (h *Handler) TogglePinnedThread(w http.ResponseWriter, r *http.Request) {
	h.toggleThread(w, r, h.thread.TogglePinned)
}

func (h *Handler) ToggleLockedThread(w http.ResponseWriter, r *http.Request) {
	h.toggleThread(w, r, h.thread.ToggleLocked)
}

func (h *Handler) toggleThread(w http.ResponseWriter, r *http.Request, toggle func(ctx context.Context, actor *domain.User, id domain.ThreadId) (bool, error)) {
	threadId, err := parseIdParam(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	value, err := toggle(r.Context(), mw.GetUserFromContext(r), threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ToggleResponse{Value: value})
}
