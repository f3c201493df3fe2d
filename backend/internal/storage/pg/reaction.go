package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/agora-dev/agora/backend/internal/service"
	"github.com/agora-dev/agora/shared/domain"
	sharedpg "github.com/agora-dev/agora/shared/storage/pg"
)

// UpdateReaction serializes reactions on one thread through the thread row lock.
// The whole transaction is retried once on serialization failure or deadlock,
// so apply may run twice.
func (s *Storage) UpdateReaction(ctx context.Context, threadId domain.ThreadId, userId domain.UserId, apply service.ReactionTransition) (domain.Thread, error) {
	var updated domain.Thread
	err := sharedpg.WithRetryableTx(ctx, s.db, func(tx *sql.Tx) error {
		thread, err := getThread(ctx, tx, threadId, true)
		if err != nil {
			return err
		}

		current := domain.ReactionNone
		err = tx.QueryRowContext(ctx,
			`SELECT reaction_type FROM thread_reactions WHERE thread_id = $1 AND user_id = $2`,
			threadId, userId,
		).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read reaction: %w", err)
		}

		next, err := apply(current, &thread)
		if err != nil {
			return err
		}

		if next == domain.ReactionNone {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM thread_reactions WHERE thread_id = $1 AND user_id = $2`,
				threadId, userId)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO thread_reactions (thread_id, user_id, reaction_type)
				VALUES ($1, $2, $3)
				ON CONFLICT (thread_id, user_id)
				DO UPDATE SET reaction_type = EXCLUDED.reaction_type, updated_at = NOW()
			`, threadId, userId, next)
		}
		if err != nil {
			return fmt.Errorf("failed to store reaction: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE threads
			SET like_count = GREATEST($2, 0),
			    dislike_count = GREATEST($3, 0),
			    last_activity_at = $4
			WHERE id = $1
		`, threadId, thread.LikeCount, thread.DislikeCount, thread.LastActivityAt)
		if err != nil {
			return fmt.Errorf("failed to update thread counters: %w", err)
		}
		updated = thread
		return nil
	})
	if err != nil {
		return domain.Thread{}, err
	}
	return updated, nil
}

func (s *Storage) GetCounters(ctx context.Context, threadIds []domain.ThreadId) (map[domain.ThreadId]domain.ReactionCounters, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, like_count, dislike_count FROM threads WHERE id = ANY($1)`,
		pq.Array(threadIds))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch counters: %w", err)
	}
	defer rows.Close()

	counters := make(map[domain.ThreadId]domain.ReactionCounters, len(threadIds))
	for rows.Next() {
		var (
			id domain.ThreadId
			c  domain.ReactionCounters
		)
		if err := rows.Scan(&id, &c.LikeCount, &c.DislikeCount); err != nil {
			return nil, fmt.Errorf("failed to scan counters: %w", err)
		}
		counters[id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return counters, nil
}

func (s *Storage) GetUserReactions(ctx context.Context, threadIds []domain.ThreadId, userId domain.UserId) (map[domain.ThreadId]domain.ReactionType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, reaction_type FROM thread_reactions WHERE user_id = $1 AND thread_id = ANY($2)`,
		userId, pq.Array(threadIds))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user reactions: %w", err)
	}
	defer rows.Close()

	states := make(map[domain.ThreadId]domain.ReactionType)
	for rows.Next() {
		var (
			id    domain.ThreadId
			state domain.ReactionType
		)
		if err := rows.Scan(&id, &state); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		states[id] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return states, nil
}
