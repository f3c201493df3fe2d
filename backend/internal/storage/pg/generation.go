package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

func (s *Storage) CreateGenerationRequest(ctx context.Context, req domain.GenerationRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_requests (id, user_id, request_type, request_payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, req.Id, req.UserId, req.RequestType, req.RequestPayload, req.Status, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert generation request: %w", err)
	}
	return nil
}

// finishGenerationRequest moves a PENDING request; a second transition is a conflict.
func (s *Storage) finishGenerationRequest(ctx context.Context, id string, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update generation request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return internal_errors.Conflict(fmt.Sprintf("Generation request %s is not pending", id))
	}
	return nil
}

func (s *Storage) CompleteGenerationRequest(ctx context.Context, id string, response string, processingMs int64, fromCache bool) error {
	return s.finishGenerationRequest(ctx, id, `
		UPDATE generation_requests
		SET status = 'COMPLETED', response_payload = $2, processing_time_ms = $3, from_cache = $4
		WHERE id = $1 AND status = 'PENDING'
	`, response, processingMs, fromCache)
}

func (s *Storage) FailGenerationRequest(ctx context.Context, id string, errMsg string, processingMs int64) error {
	return s.finishGenerationRequest(ctx, id, `
		UPDATE generation_requests
		SET status = 'FAILED', error_message = $2, processing_time_ms = $3
		WHERE id = $1 AND status = 'PENDING'
	`, errMsg, processingMs)
}

func (s *Storage) ListGenerationRequests(ctx context.Context, userId domain.UserId, limit int) ([]domain.GenerationRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, request_type, request_payload, status, response_payload,
		       error_message, processing_time_ms, from_cache, created_at
		FROM generation_requests
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userId, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generation requests: %w", err)
	}
	defer rows.Close()

	requests := []domain.GenerationRequest{}
	for rows.Next() {
		var (
			r          domain.GenerationRequest
			response   sql.NullString
			errMsg     sql.NullString
			processing sql.NullInt64
		)
		if err := rows.Scan(&r.Id, &r.UserId, &r.RequestType, &r.RequestPayload, &r.Status, &response,
			&errMsg, &processing, &r.FromCache, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation request: %w", err)
		}
		if response.Valid {
			r.ResponsePayload = &response.String
		}
		if errMsg.Valid {
			r.ErrorMessage = &errMsg.String
		}
		if processing.Valid {
			r.ProcessingTimeMs = &processing.Int64
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return requests, nil
}

func (s *Storage) GetCachedContent(ctx context.Context, hash string, contentType domain.ContentType, now time.Time) (*domain.CachedContent, error) {
	c := domain.CachedContent{ContentHash: hash, ContentType: contentType}
	err := s.db.QueryRowContext(ctx, `
		SELECT response_text, created_at, expires_at
		FROM generated_content_cache
		WHERE content_hash = $1 AND content_type = $2 AND expires_at > $3
	`, hash, contentType, now).Scan(&c.ResponseText, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached content: %w", err)
	}
	return &c, nil
}

// PutCachedContent is last-write-wins for concurrent writers of one key.
func (s *Storage) PutCachedContent(ctx context.Context, entry domain.CachedContent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generated_content_cache (content_hash, content_type, response_text, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (content_hash, content_type)
		DO UPDATE SET response_text = EXCLUDED.response_text,
		              created_at = EXCLUDED.created_at,
		              expires_at = EXCLUDED.expires_at
	`, entry.ContentHash, entry.ContentType, entry.ResponseText, entry.CreatedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to store cached content: %w", err)
	}
	return nil
}

func (s *Storage) DeleteCachedContent(ctx context.Context, hash string, contentType domain.ContentType) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM generated_content_cache WHERE content_hash = $1 AND content_type = $2
	`, hash, contentType)
	if err != nil {
		return fmt.Errorf("failed to delete cached content: %w", err)
	}
	return nil
}

func (s *Storage) DeleteExpiredGeneratedContent(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generated_content_cache WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache rows: %w", err)
	}
	return res.RowsAffected()
}
