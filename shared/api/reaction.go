package api

import "github.com/agora-dev/agora/shared/domain"

type BatchReactionsRequest struct {
	ThreadIds []domain.ThreadId `json:"thread_ids" validate:"required,min=1,max=200"`
}

type BatchReactionsResponse struct {
	Reactions map[domain.ThreadId]domain.ReactionResult `json:"reactions"`
}
