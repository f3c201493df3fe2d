package service

import (
	"context"
	"fmt"

	"github.com/agora-dev/agora/shared/domain"
	"github.com/agora-dev/agora/shared/logger"
)

type ReactionService interface {
	Like(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error)
	Dislike(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error)
	GetReaction(ctx context.Context, threadId domain.ThreadId, userId *domain.UserId) (domain.ReactionResult, error)
	BatchGetReactions(ctx context.Context, threadIds []domain.ThreadId, userId *domain.UserId) (map[domain.ThreadId]domain.ReactionResult, error)
}

// ReactionTransition receives the caller's stored reaction and the locked
// thread, mutates the thread counters and returns the reaction to store.
type ReactionTransition func(current domain.ReactionType, thread *domain.Thread) (domain.ReactionType, error)

type ReactionStorage interface {
	// UpdateReaction holds a row lock on the thread while apply runs, then
	// persists the returned reaction and the thread's counters and activity
	// time in the same transaction. Returns the updated thread.
	UpdateReaction(ctx context.Context, threadId domain.ThreadId, userId domain.UserId, apply ReactionTransition) (domain.Thread, error)
	// GetCounters returns counters for the ids that exist; unknown ids are absent.
	GetCounters(ctx context.Context, threadIds []domain.ThreadId) (map[domain.ThreadId]domain.ReactionCounters, error)
	// GetUserReactions returns only non-NONE reactions.
	GetUserReactions(ctx context.Context, threadIds []domain.ThreadId, userId domain.UserId) (map[domain.ThreadId]domain.ReactionType, error)
}

type Reaction struct {
	storage  ReactionStorage
	scorer   *TrendingScorer
	notifier Notifier
}

func NewReaction(storage ReactionStorage, scorer *TrendingScorer, notifier Notifier) ReactionService {
	return &Reaction{storage: storage, scorer: scorer, notifier: notifier}
}

// nextReaction is the per-(user, thread) state machine. Pressing the active
// button clears it; pressing the other one switches.
func nextReaction(current, pressed domain.ReactionType) (next domain.ReactionType, likeDelta, dislikeDelta int) {
	if current == pressed {
		next = domain.ReactionNone
	} else {
		next = pressed
	}
	switch current {
	case domain.ReactionLike:
		likeDelta--
	case domain.ReactionDislike:
		dislikeDelta--
	}
	switch next {
	case domain.ReactionLike:
		likeDelta++
	case domain.ReactionDislike:
		dislikeDelta++
	}
	return next, likeDelta, dislikeDelta
}

func clampCounter(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func (r *Reaction) Like(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error) {
	return r.react(ctx, threadId, userId, domain.ReactionLike)
}

func (r *Reaction) Dislike(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error) {
	return r.react(ctx, threadId, userId, domain.ReactionDislike)
}

func (r *Reaction) react(ctx context.Context, threadId domain.ThreadId, userId domain.UserId, pressed domain.ReactionType) (domain.ReactionResult, error) {
	var previous, next domain.ReactionType
	apply := func(current domain.ReactionType, t *domain.Thread) (domain.ReactionType, error) {
		var likeDelta, dislikeDelta int
		previous = current
		next, likeDelta, dislikeDelta = nextReaction(current, pressed)
		t.LikeCount = clampCounter(t.LikeCount + likeDelta)
		t.DislikeCount = clampCounter(t.DislikeCount + dislikeDelta)
		TouchActivity(t, r.scorer.Now())
		return next, nil
	}

	thread, err := r.storage.UpdateReaction(ctx, threadId, userId, apply)
	if err != nil {
		return domain.ReactionResult{}, err
	}
	reactionsTotal.WithLabelValues(string(pressed), string(next)).Inc()

	if next == domain.ReactionLike && previous != domain.ReactionLike && thread.AuthorId != userId && r.notifier != nil {
		r.notifier.Notify(domain.Notification{
			Type:      domain.NotificationThreadLiked,
			Recipient: thread.AuthorId,
			ActorId:   userId,
			ThreadId:  threadId,
			Message:   fmt.Sprintf("Your thread %q got a like", thread.Title),
		})
	}

	return domain.NewReactionResult(next, domain.ReactionCounters{
		LikeCount:    thread.LikeCount,
		DislikeCount: thread.DislikeCount,
	}), nil
}

func (r *Reaction) GetReaction(ctx context.Context, threadId domain.ThreadId, userId *domain.UserId) (domain.ReactionResult, error) {
	results, err := r.BatchGetReactions(ctx, []domain.ThreadId{threadId}, userId)
	if err != nil {
		return domain.ReactionResult{}, err
	}
	res, ok := results[threadId]
	if !ok {
		return domain.ReactionResult{}, notFoundThread(threadId)
	}
	return res, nil
}

// BatchGetReactions costs at most two storage lookups whatever len(threadIds) is.
// Unknown thread ids are left out of the result.
func (r *Reaction) BatchGetReactions(ctx context.Context, threadIds []domain.ThreadId, userId *domain.UserId) (map[domain.ThreadId]domain.ReactionResult, error) {
	results := make(map[domain.ThreadId]domain.ReactionResult, len(threadIds))
	if len(threadIds) == 0 {
		return results, nil
	}

	counters, err := r.storage.GetCounters(ctx, threadIds)
	if err != nil {
		return nil, err
	}

	var states map[domain.ThreadId]domain.ReactionType
	if userId != nil {
		states, err = r.storage.GetUserReactions(ctx, threadIds, *userId)
		if err != nil {
			return nil, err
		}
	}

	for id, c := range counters {
		state, ok := states[id]
		if !ok {
			state = domain.ReactionNone
		}
		c.LikeCount = clampCounter(c.LikeCount)
		c.DislikeCount = clampCounter(c.DislikeCount)
		results[id] = domain.NewReactionResult(state, c)
	}
	logger.Log.Debug("batch reactions resolved", "component", "reactions", "requested", len(threadIds), "found", len(results))
	return results, nil
}
