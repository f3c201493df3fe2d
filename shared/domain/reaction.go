package domain

type ReactionType string

const (
	ReactionNone    ReactionType = "NONE"
	ReactionLike    ReactionType = "LIKE"
	ReactionDislike ReactionType = "DISLIKE"
)

// ReactionCounters is the aggregate engagement stored on a thread.
type ReactionCounters struct {
	LikeCount    int
	DislikeCount int
}

// ReactionResult is what a viewer sees after (or instead of) reacting.
type ReactionResult struct {
	IsLiked      bool `json:"is_liked"`
	IsDisliked   bool `json:"is_disliked"`
	LikeCount    int  `json:"like_count"`
	DislikeCount int  `json:"dislike_count"`
}

func NewReactionResult(state ReactionType, counters ReactionCounters) ReactionResult {
	return ReactionResult{
		IsLiked:      state == ReactionLike,
		IsDisliked:   state == ReactionDislike,
		LikeCount:    counters.LikeCount,
		DislikeCount: counters.DislikeCount,
	}
}
