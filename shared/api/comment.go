package api

import "github.com/agora-dev/agora/shared/domain"

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required"`
}

type CreateCommentResponse struct {
	domain.Comment
}
