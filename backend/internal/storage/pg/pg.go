package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agora-dev/agora/shared/config"
	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
	"github.com/agora-dev/agora/shared/logger"
	sharedpg "github.com/agora-dev/agora/shared/storage/pg"
)

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

func New(cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to db", "component", "storage", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := sharedpg.Connect(cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to db", "component", "storage")
	return &Storage{db: db, cfg: cfg}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

const threadColumns = `
	id, club_id, author_id, title, body, created_at, last_activity_at,
	view_count, like_count, dislike_count, comment_count, is_pinned, is_locked`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (domain.Thread, error) {
	var (
		t            domain.Thread
		clubId       sql.NullInt64
		lastActivity sql.NullTime
	)
	err := row.Scan(
		&t.Id, &clubId, &t.AuthorId, &t.Title, &t.Body, &t.CreatedAt, &lastActivity,
		&t.ViewCount, &t.LikeCount, &t.DislikeCount, &t.CommentCount, &t.IsPinned, &t.IsLocked,
	)
	if err != nil {
		return domain.Thread{}, err
	}
	if clubId.Valid {
		id := clubId.Int64
		t.ClubId = &id
	}
	if lastActivity.Valid {
		at := lastActivity.Time
		t.LastActivityAt = &at
	}
	return t, nil
}

func scanThreads(rows *sql.Rows) ([]domain.Thread, error) {
	defer rows.Close()
	threads := []domain.Thread{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}

// getThread reads a thread through q; forUpdate locks the row until q's transaction ends.
func getThread(ctx context.Context, q sharedpg.Querier, id domain.ThreadId, forUpdate bool) (domain.Thread, error) {
	query := `SELECT ` + threadColumns + ` FROM threads WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanThread(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, internal_errors.NotFound(fmt.Sprintf("Thread %d not found", id))
		}
		return domain.Thread{}, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return t, nil
}
