package handler

import (
	"context"
	"net/http"

	"github.com/agora-dev/agora/shared/api"
	"github.com/agora-dev/agora/shared/domain"
	mw "github.com/agora-dev/agora/shared/middleware"
	"github.com/agora-dev/agora/shared/utils"
)

func (h *Handler) LikeThread(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.reaction.Like)
}

func (h *Handler) DislikeThread(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.reaction.Dislike)
}

func (h *Handler) react(w http.ResponseWriter, r *http.Request, press func(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error)) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return
	}
	threadId, err := parseIdParam(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := press(r.Context(), threadId, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetReaction(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseIdParam(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.reaction.GetReaction(r.Context(), threadId, mw.UserIdFromContext(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) BatchReactions(w http.ResponseWriter, r *http.Request) {
	var body api.BatchReactionsRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	results, err := h.reaction.BatchGetReactions(r.Context(), body.ThreadIds, mw.UserIdFromContext(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.BatchReactionsResponse{Reactions: results})
}
