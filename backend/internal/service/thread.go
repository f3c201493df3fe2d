package service

import (
	"context"
	"fmt"

	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

type ThreadService interface {
	Get(ctx context.Context, id domain.ThreadId, viewer *domain.User) (domain.RankedThread, bool, error)
	TogglePinned(ctx context.Context, actor *domain.User, id domain.ThreadId) (bool, error)
	ToggleLocked(ctx context.Context, actor *domain.User, id domain.ThreadId) (bool, error)
}

type ThreadFlag string

const (
	ThreadFlagPinned ThreadFlag = "is_pinned"
	ThreadFlagLocked ThreadFlag = "is_locked"
)

type ThreadStorage interface {
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	// ToggleThreadFlag flips the flag atomically and returns its new value.
	ToggleThreadFlag(ctx context.Context, id domain.ThreadId, flag ThreadFlag) (bool, error)
}

type Thread struct {
	storage   ThreadStorage
	views     *ViewTracker
	reactions ReactionService
	scorer    *TrendingScorer
}

func NewThread(storage ThreadStorage, views *ViewTracker, reactions ReactionService, scorer *TrendingScorer) ThreadService {
	return &Thread{storage: storage, views: views, reactions: reactions, scorer: scorer}
}

func notFoundThread(id domain.ThreadId) error {
	return internal_errors.NotFound(fmt.Sprintf("Thread %d not found", id))
}

func viewerId(u *domain.User) *domain.UserId {
	if u == nil {
		return nil
	}
	id := u.Id
	return &id
}

// Get records the viewer's view first so the returned counters include it.
func (b *Thread) Get(ctx context.Context, id domain.ThreadId, viewer *domain.User) (domain.RankedThread, bool, error) {
	uid := viewerId(viewer)
	counted, err := b.views.RecordView(ctx, id, uid)
	if err != nil {
		return domain.RankedThread{}, false, err
	}

	thread, err := b.storage.GetThread(ctx, id)
	if err != nil {
		return domain.RankedThread{}, false, err
	}
	ranked := b.scorer.Rank(thread, b.scorer.Now())

	reaction, err := b.reactions.GetReaction(ctx, id, uid)
	if err != nil {
		return domain.RankedThread{}, false, err
	}
	ranked.Reaction = reaction
	return ranked, counted, nil
}

func (b *Thread) TogglePinned(ctx context.Context, actor *domain.User, id domain.ThreadId) (bool, error) {
	return b.toggle(ctx, actor, id, ThreadFlagPinned)
}

func (b *Thread) ToggleLocked(ctx context.Context, actor *domain.User, id domain.ThreadId) (bool, error) {
	return b.toggle(ctx, actor, id, ThreadFlagLocked)
}

func (b *Thread) toggle(ctx context.Context, actor *domain.User, id domain.ThreadId, flag ThreadFlag) (bool, error) {
	if actor == nil {
		return false, Authorize(nil, 0)
	}
	thread, err := b.storage.GetThread(ctx, id)
	if err != nil {
		return false, err
	}
	if err := Authorize(actor, thread.AuthorId); err != nil {
		return false, err
	}
	return b.storage.ToggleThreadFlag(ctx, id, flag)
}
