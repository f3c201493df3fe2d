package service

import (
	"math"
	"time"

	"github.com/agora-dev/agora/shared/domain"
)

const (
	likeWeight      = 1.0
	dislikeWeight   = 0.5
	commentWeight   = 2.0
	viewWeight      = 0.1
	halfLifeHours   = 24.0
	minDecay        = 0.01
	undatedDecay    = 0.1
	hotWindowHours  = 6.0
	hotMinReactions = 5
)

// Clock is the source of "now" for ranking. Sample it once per operation
// so every item in one ranking pass is scored against the same instant.
type Clock func() time.Time

type TrendingScorer struct {
	clock Clock
}

func NewTrendingScorer(clock Clock) *TrendingScorer {
	if clock == nil {
		clock = time.Now
	}
	return &TrendingScorer{clock: clock}
}

func (s *TrendingScorer) Now() time.Time {
	return s.clock()
}

// Rank decorates t with its score and hot flag as of now.
func (s *TrendingScorer) Rank(t domain.Thread, now time.Time) domain.RankedThread {
	return domain.RankedThread{
		Thread: t,
		Score:  Score(&t, now),
		IsHot:  IsHot(&t, now),
		Reaction: domain.ReactionResult{
			LikeCount:    t.LikeCount,
			DislikeCount: t.DislikeCount,
		},
	}
}

// hoursSinceActivity returns ok=false when the thread carries no timestamp at all.
// Timestamps in the future count as zero hours.
func hoursSinceActivity(t *domain.Thread, now time.Time) (float64, bool) {
	at := t.ActivityAt()
	if at.IsZero() {
		return 0, false
	}
	hours := now.Sub(at).Hours()
	if hours < 0 {
		hours = 0
	}
	return hours, true
}

// Score is engagement decayed by a 24h half-life, never negative.
func Score(t *domain.Thread, now time.Time) float64 {
	engagement := (float64(t.LikeCount)-float64(t.DislikeCount)*dislikeWeight)*likeWeight +
		float64(t.CommentCount)*commentWeight +
		float64(t.ViewCount)*viewWeight

	decay := undatedDecay
	if hours, ok := hoursSinceActivity(t, now); ok {
		decay = math.Max(minDecay, math.Pow(0.5, hours/halfLifeHours))
	}
	return math.Max(0, engagement*decay)
}

func IsHot(t *domain.Thread, now time.Time) bool {
	hours, ok := hoursSinceActivity(t, now)
	if !ok || hours > hotWindowHours {
		return false
	}
	return t.LikeCount+t.CommentCount >= hotMinReactions
}

// TouchActivity only mutates t; persisting it is up to the caller.
func TouchActivity(t *domain.Thread, now time.Time) {
	at := now
	t.LastActivityAt = &at
}
