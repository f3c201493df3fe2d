package domain

import (
	"time"
)

// Thread is the unit of content that is viewed, reacted to and ranked.
type Thread struct {
	Id             ThreadId    `json:"id"`
	ClubId         *ClubId     `json:"club_id"`
	AuthorId       UserId      `json:"author_id"`
	Title          ThreadTitle `json:"title"`
	Body           string      `json:"body"`
	CreatedAt      time.Time   `json:"created_at"`
	LastActivityAt *time.Time  `json:"last_activity_at,omitempty"`
	ViewCount      int         `json:"view_count"`
	LikeCount      int         `json:"like_count"`
	DislikeCount   int         `json:"dislike_count"`
	CommentCount   int         `json:"comment_count"`
	IsPinned       bool        `json:"is_pinned"`
	IsLocked       bool        `json:"is_locked"`
}

// ActivityAt returns the last activity time, falling back to creation time.
func (t *Thread) ActivityAt() time.Time {
	if t.LastActivityAt != nil && !t.LastActivityAt.IsZero() {
		return *t.LastActivityAt
	}
	return t.CreatedAt
}

// HasClub reports whether the thread belongs to a community.
func (t *Thread) HasClub() bool {
	return t.ClubId != nil
}

// RankedThread is a thread decorated with its ranking and the viewer's reaction.
type RankedThread struct {
	Thread
	Score    float64        `json:"score"`
	IsHot    bool           `json:"is_hot"`
	Reaction ReactionResult `json:"reaction"`
}

// Page is one slice of a sorted result set.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}
