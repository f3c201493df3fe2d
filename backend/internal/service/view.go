package service

import (
	"context"

	"github.com/agora-dev/agora/shared/domain"
)

type ViewStorage interface {
	// RecordView inserts the (user, thread) view row and bumps view_count in one
	// transaction. Returns false if the user had already viewed the thread.
	RecordView(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (bool, error)
}

// ViewTracker counts unique authenticated views. Anonymous views are not counted.
type ViewTracker struct {
	storage ViewStorage
}

func NewViewTracker(storage ViewStorage) *ViewTracker {
	return &ViewTracker{storage: storage}
}

func (v *ViewTracker) RecordView(ctx context.Context, threadId domain.ThreadId, userId *domain.UserId) (bool, error) {
	if userId == nil {
		return false, nil
	}
	counted, err := v.storage.RecordView(ctx, threadId, *userId)
	if err != nil {
		return false, err
	}
	if counted {
		viewsCountedTotal.Inc()
	}
	return counted, nil
}
