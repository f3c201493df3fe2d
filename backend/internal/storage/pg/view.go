package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agora-dev/agora/shared/domain"
	sharedpg "github.com/agora-dev/agora/shared/storage/pg"
)

// RecordView counts only the first view of a user on a thread.
func (s *Storage) RecordView(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (bool, error) {
	var counted bool
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := getThread(ctx, tx, threadId, false); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO thread_views (thread_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (thread_id, user_id) DO NOTHING
		`, threadId, userId)
		if err != nil {
			return fmt.Errorf("failed to insert view: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if inserted == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE threads SET view_count = view_count + 1 WHERE id = $1`, threadId); err != nil {
			return fmt.Errorf("failed to bump view count: %w", err)
		}
		counted = true
		return nil
	})
	return counted, err
}
