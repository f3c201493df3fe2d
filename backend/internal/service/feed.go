package service

import (
	"context"
	"sort"

	"github.com/agora-dev/agora/shared/config"
	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

type FeedKind string

const (
	FeedPersonalized FeedKind = "personalized"
	FeedTrending     FeedKind = "trending"
	FeedHot          FeedKind = "hot"
	FeedNew          FeedKind = "new"
)

type FeedService interface {
	Personalized(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error)
	Trending(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error)
	Hot(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error)
	New(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error)
}

type FeedStorage interface {
	// ListCandidateThreads returns up to limit threads, most recently active first.
	ListCandidateThreads(ctx context.Context, limit int) ([]domain.Thread, error)
	GetUserClubIds(ctx context.Context, userId domain.UserId) ([]domain.ClubId, error)
}

type Feed struct {
	storage   FeedStorage
	reactions ReactionService
	scorer    *TrendingScorer
	cfg       config.Feed
}

func NewFeed(storage FeedStorage, reactions ReactionService, scorer *TrendingScorer, cfg config.Feed) FeedService {
	return &Feed{storage: storage, reactions: reactions, scorer: scorer, cfg: cfg}
}

// Personalized puts threads from the viewer's clubs first (most recently active
// first) and the rest after them by score. Viewers without clubs get Trending.
func (f *Feed) Personalized(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	if viewer == nil {
		return f.Trending(ctx, viewer, page, size)
	}
	clubIds, err := f.storage.GetUserClubIds(ctx, *viewer)
	if err != nil {
		return domain.Page[domain.RankedThread]{}, err
	}
	if len(clubIds) == 0 {
		return f.Trending(ctx, viewer, page, size)
	}
	joined := make(map[domain.ClubId]struct{}, len(clubIds))
	for _, id := range clubIds {
		joined[id] = struct{}{}
	}

	return f.compose(ctx, viewer, page, size, func(ranked []domain.RankedThread) []domain.RankedThread {
		var member, other []domain.RankedThread
		for _, r := range ranked {
			if !r.HasClub() {
				continue
			}
			if _, ok := joined[*r.ClubId]; ok {
				member = append(member, r)
			} else {
				other = append(other, r)
			}
		}
		sortByActivity(member)
		sortByScore(other)
		return append(member, other...)
	})
}

func (f *Feed) Trending(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	return f.compose(ctx, viewer, page, size, func(ranked []domain.RankedThread) []domain.RankedThread {
		items := filterRanked(ranked, func(r *domain.RankedThread) bool { return r.HasClub() })
		sortByScore(items)
		return items
	})
}

func (f *Feed) Hot(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	return f.compose(ctx, viewer, page, size, func(ranked []domain.RankedThread) []domain.RankedThread {
		items := filterRanked(ranked, func(r *domain.RankedThread) bool { return r.IsHot })
		sortByScore(items)
		return items
	})
}

func (f *Feed) New(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	return f.compose(ctx, viewer, page, size, func(ranked []domain.RankedThread) []domain.RankedThread {
		items := filterRanked(ranked, func(r *domain.RankedThread) bool { return r.HasClub() })
		sortByCreation(items)
		return items
	})
}

// compose loads candidates, ranks them against a single "now", lets order
// select and sort them, then paginates and attaches the viewer's reactions.
// Only the CandidateLimit most recently active threads are ranked, and Total
// counts within that window.
func (f *Feed) compose(ctx context.Context, viewer *domain.UserId, page, size int, order func([]domain.RankedThread) []domain.RankedThread) (domain.Page[domain.RankedThread], error) {
	if page < 0 {
		return domain.Page[domain.RankedThread]{}, internal_errors.InvalidInput("page must be >= 0")
	}
	size = f.pageSize(size)

	threads, err := f.storage.ListCandidateThreads(ctx, f.cfg.CandidateLimit)
	if err != nil {
		return domain.Page[domain.RankedThread]{}, err
	}

	now := f.scorer.Now()
	ranked := make([]domain.RankedThread, len(threads))
	for i, t := range threads {
		ranked[i] = f.scorer.Rank(t, now)
	}

	result := Paginate(order(ranked), page, size)
	if err := f.attachReactions(ctx, viewer, result.Items); err != nil {
		return domain.Page[domain.RankedThread]{}, err
	}
	return result, nil
}

func (f *Feed) attachReactions(ctx context.Context, viewer *domain.UserId, items []domain.RankedThread) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]domain.ThreadId, len(items))
	for i, it := range items {
		ids[i] = it.Id
	}
	reactions, err := f.reactions.BatchGetReactions(ctx, ids, viewer)
	if err != nil {
		return err
	}
	for i := range items {
		if r, ok := reactions[items[i].Id]; ok {
			items[i].Reaction = r
		}
	}
	return nil
}

func (f *Feed) pageSize(size int) int {
	if size <= 0 {
		size = f.cfg.DefaultPageSize
	}
	if f.cfg.MaxPageSize > 0 && size > f.cfg.MaxPageSize {
		size = f.cfg.MaxPageSize
	}
	return size
}

// Paginate returns items [page*size, page*size+size) and the total.
// Out-of-range pages are empty but keep the total.
func Paginate[T any](items []T, page, size int) domain.Page[T] {
	result := domain.Page[T]{Items: []T{}, Page: page, Size: size, Total: len(items)}
	if size <= 0 || page < 0 {
		return result
	}
	// compare before multiplying so a huge page cannot overflow
	if page >= (len(items)+size-1)/size {
		return result
	}
	start := page * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	result.Items = items[start:end]
	return result
}

func filterRanked(items []domain.RankedThread, keep func(*domain.RankedThread) bool) []domain.RankedThread {
	out := make([]domain.RankedThread, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// All orderings break ties by descending id so equal inputs give identical pages.

func sortByScore(items []domain.RankedThread) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Id > items[j].Id
	})
}

func sortByActivity(items []domain.RankedThread) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].ActivityAt(), items[j].ActivityAt()
		if !a.Equal(b) {
			return a.After(b)
		}
		return items[i].Id > items[j].Id
	})
}

func sortByCreation(items []domain.RankedThread) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].CreatedAt, items[j].CreatedAt
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		if !a.Equal(b) {
			return a.After(b)
		}
		return items[i].Id > items[j].Id
	})
}
