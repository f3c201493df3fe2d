package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/agora-dev/agora/shared/api"
	"github.com/agora-dev/agora/shared/domain"
	mw "github.com/agora-dev/agora/shared/middleware"
)

type feedCall struct {
	Kind   string
	Viewer *domain.UserId
	Page   int
	Size   int
}

type MockFeedService struct {
	MockCompose func(kind string, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error)

	mu    sync.Mutex
	calls []feedCall
}

func (m *MockFeedService) compose(kind string, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	m.mu.Lock()
	m.calls = append(m.calls, feedCall{Kind: kind, Viewer: viewer, Page: page, Size: size})
	m.mu.Unlock()
	if m.MockCompose != nil {
		return m.MockCompose(kind, viewer, page, size)
	}
	return domain.Page[domain.RankedThread]{Items: []domain.RankedThread{}, Page: page, Size: size}, nil
}

func (m *MockFeedService) Personalized(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	return m.compose("personalized", viewer, page, size)
}

func (m *MockFeedService) Trending(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	return m.compose("trending", viewer, page, size)
}

func (m *MockFeedService) Hot(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	return m.compose("hot", viewer, page, size)
}

func (m *MockFeedService) New(ctx context.Context, viewer *domain.UserId, page, size int) (domain.Page[domain.RankedThread], error) {
	return m.compose("new", viewer, page, size)
}

type MockThreadService struct {
	MockGet          func(id domain.ThreadId, viewer *domain.User) (domain.RankedThread, bool, error)
	MockTogglePinned func(actor *domain.User, id domain.ThreadId) (bool, error)
	MockToggleLocked func(actor *domain.User, id domain.ThreadId) (bool, error)
}

func (m *MockThreadService) Get(ctx context.Context, id domain.ThreadId, viewer *domain.User) (domain.RankedThread, bool, error) {
	if m.MockGet != nil {
		return m.MockGet(id, viewer)
	}
	return domain.RankedThread{Thread: domain.Thread{Id: id}}, false, nil
}

func (m *MockThreadService) TogglePinned(ctx context.Context, actor *domain.User, id domain.ThreadId) (bool, error) {
	if m.MockTogglePinned != nil {
		return m.MockTogglePinned(actor, id)
	}
	return true, nil
}

func (m *MockThreadService) ToggleLocked(ctx context.Context, actor *domain.User, id domain.ThreadId) (bool, error) {
	if m.MockToggleLocked != nil {
		return m.MockToggleLocked(actor, id)
	}
	return true, nil
}

type MockReactionService struct {
	MockLike        func(threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error)
	MockDislike     func(threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error)
	MockGetReaction func(threadId domain.ThreadId, userId *domain.UserId) (domain.ReactionResult, error)
	MockBatch       func(threadIds []domain.ThreadId, userId *domain.UserId) (map[domain.ThreadId]domain.ReactionResult, error)
}

func (m *MockReactionService) Like(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error) {
	if m.MockLike != nil {
		return m.MockLike(threadId, userId)
	}
	return domain.ReactionResult{}, nil
}

func (m *MockReactionService) Dislike(ctx context.Context, threadId domain.ThreadId, userId domain.UserId) (domain.ReactionResult, error) {
	if m.MockDislike != nil {
		return m.MockDislike(threadId, userId)
	}
	return domain.ReactionResult{}, nil
}

func (m *MockReactionService) GetReaction(ctx context.Context, threadId domain.ThreadId, userId *domain.UserId) (domain.ReactionResult, error) {
	if m.MockGetReaction != nil {
		return m.MockGetReaction(threadId, userId)
	}
	return domain.ReactionResult{}, nil
}

func (m *MockReactionService) BatchGetReactions(ctx context.Context, threadIds []domain.ThreadId, userId *domain.UserId) (map[domain.ThreadId]domain.ReactionResult, error) {
	if m.MockBatch != nil {
		return m.MockBatch(threadIds, userId)
	}
	return map[domain.ThreadId]domain.ReactionResult{}, nil
}

type MockCommentService struct {
	MockCreate func(threadId domain.ThreadId, author *domain.User, body string) (domain.Comment, error)
	MockDelete func(actor *domain.User, id domain.CommentId) error
}

func (m *MockCommentService) Create(ctx context.Context, threadId domain.ThreadId, author *domain.User, body string) (domain.Comment, error) {
	if m.MockCreate != nil {
		return m.MockCreate(threadId, author, body)
	}
	return domain.Comment{}, nil
}

func (m *MockCommentService) Delete(ctx context.Context, actor *domain.User, id domain.CommentId) error {
	if m.MockDelete != nil {
		return m.MockDelete(actor, id)
	}
	return nil
}

type MockAIContentService struct {
	MockSummarize    func(user *domain.User, req api.SummaryRequest) (*api.SummaryResult, error)
	MockGenerateQuiz func(user *domain.User, req api.QuizRequest) (*api.QuizResult, error)
	MockHistory      func(user *domain.User, limit int) ([]domain.GenerationRequest, error)
}

func (m *MockAIContentService) Summarize(ctx context.Context, user *domain.User, req api.SummaryRequest) (*api.SummaryResult, error) {
	if m.MockSummarize != nil {
		return m.MockSummarize(user, req)
	}
	return &api.SummaryResult{ResultBase: api.ResultBase{Success: true}}, nil
}

func (m *MockAIContentService) GenerateQuiz(ctx context.Context, user *domain.User, req api.QuizRequest) (*api.QuizResult, error) {
	if m.MockGenerateQuiz != nil {
		return m.MockGenerateQuiz(user, req)
	}
	return &api.QuizResult{ResultBase: api.ResultBase{Success: true}, Questions: []domain.QuizQuestion{}}, nil
}

func (m *MockAIContentService) History(ctx context.Context, user *domain.User, limit int) ([]domain.GenerationRequest, error) {
	if m.MockHistory != nil {
		return m.MockHistory(user, limit)
	}
	return []domain.GenerationRequest{}, nil
}

// withUser injects user into the request context the way the auth middleware does.
// A nil user leaves the request anonymous.
func withUser(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user != nil {
				r = r.WithContext(context.WithValue(r.Context(), mw.UserClaimsKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// newTestRouter mounts h's routes behind a fixed identity.
func newTestRouter(h *Handler, user *domain.User) *chi.Mux {
	router := chi.NewRouter()
	router.Use(withUser(user))

	router.Get("/v1/feed/{kind}", h.GetFeed)
	router.Get("/v1/threads/{thread}", h.GetThread)
	router.Post("/v1/threads/{thread}/pin", h.TogglePinnedThread)
	router.Post("/v1/threads/{thread}/lock", h.ToggleLockedThread)
	router.Post("/v1/threads/{thread}/like", h.LikeThread)
	router.Post("/v1/threads/{thread}/dislike", h.DislikeThread)
	router.Get("/v1/threads/{thread}/reaction", h.GetReaction)
	router.Post("/v1/threads/reactions", h.BatchReactions)
	router.Post("/v1/threads/{thread}/comments", h.CreateComment)
	router.Delete("/v1/comments/{comment}", h.DeleteComment)
	router.Post("/v1/ai/summary", h.Summarize)
	router.Post("/v1/ai/quiz", h.GenerateQuiz)
	router.Get("/v1/ai/requests", h.GenerationHistory)
	return router
}

var (
	testMember = &domain.User{Id: 7}
	testAdmin  = &domain.User{Id: 1, Admin: true}
)
