package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

func (s *Storage) GetClub(ctx context.Context, id domain.ClubId) (domain.Club, error) {
	var (
		c       domain.Club
		mediaId sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, media_id, created_at
		FROM clubs WHERE id = $1
	`, id).Scan(&c.Id, &c.Name, &c.Description, &c.OwnerId, &mediaId, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Club{}, internal_errors.NotFound(fmt.Sprintf("Club %d not found", id))
		}
		return domain.Club{}, fmt.Errorf("failed to fetch club: %w", err)
	}
	if mediaId.Valid {
		m := mediaId.Int64
		c.MediaId = &m
	}
	return c, nil
}

// GetClubThreads returns the newest threads of a club first.
func (s *Storage) GetClubThreads(ctx context.Context, clubId domain.ClubId, limit int) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+threadColumns+`
		FROM threads
		WHERE club_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, clubId, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch club threads: %w", err)
	}
	return scanThreads(rows)
}

func (s *Storage) ClubThreadCount(ctx context.Context, clubId domain.ClubId) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM threads WHERE club_id = $1`, clubId).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count club threads: %w", err)
	}
	return n, nil
}

func (s *Storage) GetUserClubIds(ctx context.Context, userId domain.UserId) ([]domain.ClubId, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT club_id FROM club_members WHERE user_id = $1 ORDER BY club_id`, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memberships: %w", err)
	}
	defer rows.Close()

	ids := []domain.ClubId{}
	for rows.Next() {
		var id domain.ClubId
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return ids, nil
}

func (s *Storage) GetMedia(ctx context.Context, id domain.MediaId) (domain.Media, error) {
	var m domain.Media
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, created_at FROM media WHERE id = $1`, id,
	).Scan(&m.Id, &m.Title, &m.Description, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Media{}, internal_errors.NotFound(fmt.Sprintf("Media %d not found", id))
		}
		return domain.Media{}, fmt.Errorf("failed to fetch media: %w", err)
	}
	return m, nil
}

// GetMediaClubs returns the newest clubs linked to a media title first.
func (s *Storage) GetMediaClubs(ctx context.Context, mediaId domain.MediaId, limit int) ([]domain.Club, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, owner_id, created_at
		FROM clubs
		WHERE media_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, mediaId, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media clubs: %w", err)
	}
	defer rows.Close()

	clubs := []domain.Club{}
	for rows.Next() {
		c := domain.Club{MediaId: &mediaId}
		if err := rows.Scan(&c.Id, &c.Name, &c.Description, &c.OwnerId, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return clubs, nil
}
