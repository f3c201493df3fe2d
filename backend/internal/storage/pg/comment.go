package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
	sharedpg "github.com/agora-dev/agora/shared/storage/pg"
)

const commentColumns = `id, thread_id, author_id, body, created_at`

func scanComments(rows *sql.Rows) ([]domain.Comment, error) {
	defer rows.Close()
	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.Id, &c.ThreadId, &c.AuthorId, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return comments, nil
}

func (s *Storage) CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.Comment, error) {
	var c domain.Comment
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO comments (thread_id, author_id, body)
			VALUES ($1, $2, $3)
			RETURNING `+commentColumns,
			data.ThreadId, data.AuthorId, data.Body,
		).Scan(&c.Id, &c.ThreadId, &c.AuthorId, &c.Body, &c.CreatedAt)
		if err != nil {
			if sharedpg.IsForeignKeyViolation(err) {
				return internal_errors.NotFound(fmt.Sprintf("Thread %d not found", data.ThreadId))
			}
			return fmt.Errorf("failed to insert comment: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE threads
			SET comment_count = comment_count + 1,
			    last_activity_at = GREATEST(COALESCE(last_activity_at, created_at), $2)
			WHERE id = $1
		`, data.ThreadId, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to update thread activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

func (s *Storage) GetComment(ctx context.Context, id domain.CommentId) (domain.Comment, error) {
	var c domain.Comment
	err := s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id,
	).Scan(&c.Id, &c.ThreadId, &c.AuthorId, &c.Body, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Comment{}, internal_errors.NotFound(fmt.Sprintf("Comment %d not found", id))
		}
		return domain.Comment{}, fmt.Errorf("failed to fetch comment: %w", err)
	}
	return c, nil
}

func (s *Storage) DeleteComment(ctx context.Context, id domain.CommentId) error {
	return sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var threadId domain.ThreadId
		err := tx.QueryRowContext(ctx, `DELETE FROM comments WHERE id = $1 RETURNING thread_id`, id).Scan(&threadId)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return internal_errors.NotFound(fmt.Sprintf("Comment %d not found", id))
			}
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE threads SET comment_count = GREATEST(comment_count - 1, 0) WHERE id = $1`, threadId,
		); err != nil {
			return fmt.Errorf("failed to update comment count: %w", err)
		}
		return nil
	})
}

// GetThreadComments returns comments oldest first; limit <= 0 means all.
func (s *Storage) GetThreadComments(ctx context.Context, threadId domain.ThreadId, limit int) ([]domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE thread_id = $1 ORDER BY created_at, id`
	args := []any{threadId}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return scanComments(rows)
}
