package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agora-dev/agora/backend/internal/service/utils"
	"github.com/agora-dev/agora/shared/config"
	"github.com/agora-dev/agora/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type cacheKey struct {
	hash        string
	contentType domain.ContentType
}

// MockGenerationStorage keeps audit rows and cache entries in memory and
// enforces the PENDING-only transitions of the real storage.
type MockGenerationStorage struct {
	getCachedContentErr error
	createErr           error

	mu       sync.Mutex
	requests map[string]*domain.GenerationRequest
	order    []string
	cache    map[cacheKey]domain.CachedContent
	ctxErrs  []error
}

func NewMockGenerationStorage() *MockGenerationStorage {
	return &MockGenerationStorage{
		requests: make(map[string]*domain.GenerationRequest),
		cache:    make(map[cacheKey]domain.CachedContent),
	}
}

func (m *MockGenerationStorage) CreateGenerationRequest(ctx context.Context, req domain.GenerationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	if m.createErr != nil {
		return m.createErr
	}
	r := req
	m.requests[req.Id] = &r
	m.order = append(m.order, req.Id)
	return nil
}

func (m *MockGenerationStorage) CompleteGenerationRequest(ctx context.Context, id string, response string, processingMs int64, fromCache bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	r, ok := m.requests[id]
	if !ok || r.Status != domain.GenerationPending {
		return errors.New("request is not pending")
	}
	r.Status = domain.GenerationCompleted
	r.ResponsePayload = &response
	r.ProcessingTimeMs = &processingMs
	r.FromCache = fromCache
	return nil
}

func (m *MockGenerationStorage) FailGenerationRequest(ctx context.Context, id string, errMsg string, processingMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	r, ok := m.requests[id]
	if !ok || r.Status != domain.GenerationPending {
		return errors.New("request is not pending")
	}
	r.Status = domain.GenerationFailed
	r.ErrorMessage = &errMsg
	r.ProcessingTimeMs = &processingMs
	return nil
}

func (m *MockGenerationStorage) ListGenerationRequests(ctx context.Context, userId domain.UserId, limit int) ([]domain.GenerationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GenerationRequest
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.requests[m.order[i]]
		if r.UserId == userId {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MockGenerationStorage) GetCachedContent(ctx context.Context, hash string, contentType domain.ContentType, now time.Time) (*domain.CachedContent, error) {
	if m.getCachedContentErr != nil {
		return nil, m.getCachedContentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cache[cacheKey{hash, contentType}]
	if !ok || !e.ExpiresAt.After(now) {
		return nil, nil
	}
	return &e, nil
}

func (m *MockGenerationStorage) PutCachedContent(ctx context.Context, entry domain.CachedContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[cacheKey{entry.ContentHash, entry.ContentType}] = entry
	return nil
}

func (m *MockGenerationStorage) DeleteCachedContent(ctx context.Context, hash string, contentType domain.ContentType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, cacheKey{hash, contentType})
	return nil
}

func (m *MockGenerationStorage) DeleteExpiredGeneratedContent(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, e := range m.cache {
		if !e.ExpiresAt.After(now) {
			delete(m.cache, k)
			n++
		}
	}
	return n, nil
}

func (m *MockGenerationStorage) request(id string) domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.requests[id]
}

// MockGenerator answers from generateFunc and counts calls.
type MockGenerator struct {
	generateFunc func(ctx context.Context, prompt string, call int) (string, error)

	mu    sync.Mutex
	calls int
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt, call)
	}
	return "generated: " + prompt, nil
}

func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testGenerationConfig() config.Generation {
	cfg := config.Default().Public.Generation
	cfg.BackoffUnit = time.Millisecond
	return cfg
}

// newTestGateway records backoff waits instead of sleeping.
func newTestGateway(gen Generator) (*Gateway, *MockGenerationStorage, *[]time.Duration) {
	storage := NewMockGenerationStorage()
	gw := NewGateway(storage, gen, testGenerationConfig(), fixedClock())
	var waits []time.Duration
	gw.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return gw, storage, &waits
}

// --- Tests ---

func TestGenerateCachesIdenticalPrompts(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{}
	gw, storage, _ := newTestGateway(gen)

	first := gw.Generate(ctx, "summarize this", 1, domain.RequestSummary)
	second := gw.Generate(ctx, "summarize this", 1, domain.RequestSummary)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, gen.Calls())
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)

	r1 := storage.request(first.RequestId)
	assert.Equal(t, domain.GenerationCompleted, r1.Status)
	assert.False(t, r1.FromCache)

	r2 := storage.request(second.RequestId)
	assert.Equal(t, domain.GenerationCompleted, r2.Status)
	assert.True(t, r2.FromCache)
	require.NotNil(t, r2.ProcessingTimeMs)
	assert.Equal(t, int64(0), *r2.ProcessingTimeMs)

	entry := storage.cache[cacheKey{utils.Digest("summarize this"), domain.ContentSummary}]
	assert.Equal(t, testNow.Add(7*24*time.Hour), entry.ExpiresAt)
}

func TestInvalidateForcesRegeneration(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{}
	gw, _, _ := newTestGateway(gen)

	gw.Generate(ctx, "quiz me", 1, domain.RequestQuiz)
	require.NoError(t, gw.Invalidate(ctx, "quiz me", domain.RequestQuiz))
	again := gw.Generate(ctx, "quiz me", 1, domain.RequestQuiz)

	assert.False(t, again.FromCache)
	assert.Equal(t, 2, gen.Calls())
}

func TestGenerateCacheBucketsByContentType(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{}
	gw, storage, _ := newTestGateway(gen)

	gw.Generate(ctx, "same prompt", 1, domain.RequestQuiz)
	gw.Generate(ctx, "same prompt", 1, domain.RequestSummary)
	assert.Equal(t, 2, gen.Calls())

	_, ok := storage.cache[cacheKey{utils.Digest("same prompt"), domain.ContentQuizQuestions}]
	assert.True(t, ok, "quiz requests use the QUIZ_QUESTIONS bucket")
}

func TestGenerateIgnoresExpiredCache(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{}
	gw, storage, _ := newTestGateway(gen)
	storage.cache[cacheKey{utils.Digest("p"), domain.ContentSummary}] = domain.CachedContent{
		ResponseText: "stale", ExpiresAt: testNow.Add(-time.Second),
	}

	res := gw.Generate(ctx, "p", 1, domain.RequestSummary)
	assert.Equal(t, "generated: p", res.Text)
	assert.Equal(t, 1, gen.Calls())
}

func TestGenerateRetriesWithLinearBackoff(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{generateFunc: func(ctx context.Context, prompt string, call int) (string, error) {
		switch call {
		case 1:
			return "", errors.New("quota")
		case 2:
			return "   ", nil
		default:
			return "third time lucky", nil
		}
	}}
	gw, storage, waits := newTestGateway(gen)

	res := gw.Generate(ctx, "p", 1, domain.RequestSummary)
	assert.Equal(t, "third time lucky", res.Text)
	assert.False(t, res.Fallback)
	assert.Equal(t, 3, gen.Calls())
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, *waits)
	assert.Equal(t, domain.GenerationCompleted, storage.request(res.RequestId).Status)
}

func TestGenerateFallsBackAfterExhaustion(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{generateFunc: func(ctx context.Context, prompt string, call int) (string, error) {
		return "", errors.New("upstream 503")
	}}
	gw, storage, waits := newTestGateway(gen)

	res := gw.Generate(ctx, "p", 1, domain.RequestQuiz)
	assert.True(t, res.Fallback)
	assert.Equal(t, FallbackMessage(domain.RequestQuiz), res.Text)
	assert.Equal(t, 3, gen.Calls())
	assert.Len(t, *waits, 2, "no wait after the last attempt")

	r := storage.request(res.RequestId)
	assert.Equal(t, domain.GenerationFailed, r.Status)
	require.NotNil(t, r.ErrorMessage)
	assert.Contains(t, *r.ErrorMessage, "upstream 503")
	assert.Empty(t, storage.cache, "failures are not cached")
}

func TestGenerateTimeoutCoversAllAttempts(t *testing.T) {
	gen := &MockGenerator{generateFunc: func(ctx context.Context, prompt string, call int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	storage := NewMockGenerationStorage()
	cfg := testGenerationConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.BackoffUnit = time.Second
	gw := NewGateway(storage, gen, cfg, fixedClock())

	start := time.Now()
	res := gw.Generate(context.Background(), "p", 1, domain.RequestAnalysis)
	assert.Less(t, time.Since(start), time.Second, "backoff must not outlive the timeout")

	assert.True(t, res.Fallback)
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, domain.GenerationFailed, storage.request(res.RequestId).Status)
	for _, err := range storage.ctxErrs {
		assert.NoError(t, err, "audit writes run on a live context")
	}
}

func TestGenerateAuditSurvivesCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &MockGenerator{generateFunc: func(c context.Context, prompt string, call int) (string, error) {
		cancel()
		return "", c.Err()
	}}
	gw, storage, _ := newTestGateway(gen)

	res := gw.Generate(ctx, "p", 1, domain.RequestSummary)
	assert.True(t, res.Fallback)
	assert.Equal(t, domain.GenerationFailed, storage.request(res.RequestId).Status)
}

func TestGenerateFiltersOutput(t *testing.T) {
	gen := &MockGenerator{generateFunc: func(ctx context.Context, prompt string, call int) (string, error) {
		return "  the plot has no Error  \n", nil
	}}
	gw, _, _ := newTestGateway(gen)

	res := gw.Generate(context.Background(), "p", 1, domain.RequestSummary)
	assert.Equal(t, "the plot has no unable to analyze", res.Text)
}

func TestGenerateCacheLookupErrorFallsThrough(t *testing.T) {
	gen := &MockGenerator{}
	gw, storage, _ := newTestGateway(gen)
	storage.getCachedContentErr = errors.New("cache table missing")

	res := gw.Generate(context.Background(), "p", 1, domain.RequestSummary)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, gen.Calls())
}

func TestGenerationHistory(t *testing.T) {
	gw, _, _ := newTestGateway(&MockGenerator{})
	ctx := context.Background()
	gw.Generate(ctx, "a", 1, domain.RequestSummary)
	gw.Generate(ctx, "b", 2, domain.RequestSummary)
	gw.Generate(ctx, "c", 1, domain.RequestQuiz)

	history, err := gw.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RequestQuiz, history[0].RequestType)
}
