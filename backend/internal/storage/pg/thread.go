package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/agora-dev/agora/backend/internal/service"
	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	return getThread(ctx, s.db, id, false)
}

func (s *Storage) ToggleThreadFlag(ctx context.Context, id domain.ThreadId, flag service.ThreadFlag) (bool, error) {
	switch flag {
	case service.ThreadFlagPinned, service.ThreadFlagLocked:
	default:
		return false, fmt.Errorf("unknown thread flag %q", flag)
	}
	column := pq.QuoteIdentifier(string(flag))

	var value bool
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE threads SET %[1]s = NOT %[1]s WHERE id = $1 RETURNING %[1]s`, column),
		id,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, internal_errors.NotFound(fmt.Sprintf("Thread %d not found", id))
		}
		return false, fmt.Errorf("failed to toggle %s: %w", flag, err)
	}
	return value, nil
}

// ListCandidateThreads returns up to limit threads, most recently active first.
func (s *Storage) ListCandidateThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+threadColumns+`
		FROM threads
		ORDER BY COALESCE(last_activity_at, created_at) DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return scanThreads(rows)
}
