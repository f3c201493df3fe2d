package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agora-dev/agora/backend/internal/service/utils"
	"github.com/agora-dev/agora/shared/config"
	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

type AggregatorService interface {
	Aggregate(ctx context.Context, scope domain.AggregationScope) (domain.AggregatedContent, error)
}

type AggregatorStorage interface {
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	// GetThreadComments returns comments oldest first; limit <= 0 means all.
	GetThreadComments(ctx context.Context, threadId domain.ThreadId, limit int) ([]domain.Comment, error)
	GetClub(ctx context.Context, id domain.ClubId) (domain.Club, error)
	// GetClubThreads returns the newest threads of a club first.
	GetClubThreads(ctx context.Context, clubId domain.ClubId, limit int) ([]domain.Thread, error)
	ClubThreadCount(ctx context.Context, clubId domain.ClubId) (int, error)
	GetMedia(ctx context.Context, id domain.MediaId) (domain.Media, error)
	// GetMediaClubs returns the newest clubs linked to a media title first.
	GetMediaClubs(ctx context.Context, mediaId domain.MediaId, limit int) ([]domain.Club, error)
}

type Aggregator struct {
	storage AggregatorStorage
	cfg     config.Aggregation
}

func NewAggregator(storage AggregatorStorage, cfg config.Aggregation) AggregatorService {
	return &Aggregator{storage: storage, cfg: cfg}
}

// Aggregate honors one scope id: thread, then club, then media.
func (a *Aggregator) Aggregate(ctx context.Context, scope domain.AggregationScope) (domain.AggregatedContent, error) {
	var (
		content domain.AggregatedContent
		parts   []string
		err     error
	)
	switch {
	case scope.ThreadId != nil:
		content, parts, err = a.thread(ctx, *scope.ThreadId)
	case scope.ClubId != nil:
		content, parts, err = a.club(ctx, *scope.ClubId)
	case scope.MediaId != nil:
		content, parts, err = a.media(ctx, *scope.MediaId)
	default:
		return domain.AggregatedContent{}, internal_errors.InvalidScope("One of media_id, club_id or thread_id is required")
	}
	if err != nil {
		return domain.AggregatedContent{}, err
	}

	content.Text = utils.Truncate(utils.Sanitize(strings.Join(parts, "\n")), a.cfg.MaxTokens)
	return content, nil
}

func (a *Aggregator) thread(ctx context.Context, id domain.ThreadId) (domain.AggregatedContent, []string, error) {
	thread, err := a.storage.GetThread(ctx, id)
	if err != nil {
		return domain.AggregatedContent{}, nil, err
	}
	comments, err := a.storage.GetThreadComments(ctx, id, 0)
	if err != nil {
		return domain.AggregatedContent{}, nil, err
	}

	parts := []string{string(thread.Title), thread.Body}
	for _, c := range comments {
		parts = append(parts, string(c.Body))
	}
	return domain.AggregatedContent{
		SourceType:  domain.SourceThread,
		SourceId:    thread.Id,
		SourceTitle: string(thread.Title),
		ItemCount:   1 + len(comments),
	}, parts, nil
}

func (a *Aggregator) club(ctx context.Context, id domain.ClubId) (domain.AggregatedContent, []string, error) {
	club, err := a.storage.GetClub(ctx, id)
	if err != nil {
		return domain.AggregatedContent{}, nil, err
	}
	threads, err := a.storage.GetClubThreads(ctx, id, a.cfg.ClubThreadLimit)
	if err != nil {
		return domain.AggregatedContent{}, nil, err
	}
	total, err := a.storage.ClubThreadCount(ctx, id)
	if err != nil {
		return domain.AggregatedContent{}, nil, err
	}

	// comment lists are independent; fetch them together and stitch in thread order
	comments := make([][]domain.Comment, len(threads))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range threads {
		g.Go(func() error {
			cs, err := a.storage.GetThreadComments(gctx, t.Id, a.cfg.ClubCommentLimit)
			if err != nil {
				return err
			}
			comments[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.AggregatedContent{}, nil, err
	}

	parts := []string{club.Name, club.Description}
	for i, t := range threads {
		parts = append(parts, string(t.Title), t.Body)
		for _, c := range comments[i] {
			parts = append(parts, string(c.Body))
		}
	}
	return domain.AggregatedContent{
		SourceType:  domain.SourceClub,
		SourceId:    club.Id,
		SourceTitle: club.Name,
		ItemCount:   total,
	}, parts, nil
}

func (a *Aggregator) media(ctx context.Context, id domain.MediaId) (domain.AggregatedContent, []string, error) {
	media, err := a.storage.GetMedia(ctx, id)
	if err != nil {
		return domain.AggregatedContent{}, nil, err
	}
	clubs, err := a.storage.GetMediaClubs(ctx, id, a.cfg.MediaClubLimit)
	if err != nil {
		return domain.AggregatedContent{}, nil, err
	}

	threads := make([][]domain.Thread, len(clubs))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range clubs {
		g.Go(func() error {
			ts, err := a.storage.GetClubThreads(gctx, c.Id, a.cfg.MediaThreadLimit)
			if err != nil {
				return err
			}
			threads[i] = ts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.AggregatedContent{}, nil, err
	}

	parts := []string{media.Title, media.Description}
	items := 0
	for i, c := range clubs {
		parts = append(parts, c.Name, c.Description)
		items++
		for _, t := range threads[i] {
			parts = append(parts, string(t.Title), t.Body)
			items++
		}
	}
	return domain.AggregatedContent{
		SourceType:  domain.SourceMedia,
		SourceId:    media.Id,
		SourceTitle: media.Title,
		ItemCount:   items,
	}, parts, nil
}
