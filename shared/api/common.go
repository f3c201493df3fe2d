package api

import "github.com/agora-dev/agora/shared/domain"

// ResultBase is embedded by every AI result.
// Success is false when the generator was unavailable and Message carries the fallback text.
type ResultBase struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type FeedResponse struct {
	domain.Page[domain.RankedThread]
}

type ThreadResponse struct {
	domain.RankedThread
	ViewCounted bool `json:"view_counted"`
}

type ToggleResponse struct {
	Value bool `json:"value"`
}
