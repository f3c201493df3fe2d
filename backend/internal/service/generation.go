package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agora-dev/agora/backend/internal/service/utils"
	"github.com/agora-dev/agora/shared/config"
	"github.com/agora-dev/agora/shared/domain"
	"github.com/agora-dev/agora/shared/logger"
)

// Generator is an upstream text model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GenerationStorage interface {
	CreateGenerationRequest(ctx context.Context, req domain.GenerationRequest) error
	// CompleteGenerationRequest and FailGenerationRequest only move PENDING rows.
	CompleteGenerationRequest(ctx context.Context, id string, response string, processingMs int64, fromCache bool) error
	FailGenerationRequest(ctx context.Context, id string, errMsg string, processingMs int64) error
	ListGenerationRequests(ctx context.Context, userId domain.UserId, limit int) ([]domain.GenerationRequest, error)

	// GetCachedContent returns nil when there is no entry alive at now.
	GetCachedContent(ctx context.Context, hash string, contentType domain.ContentType, now time.Time) (*domain.CachedContent, error)
	// PutCachedContent overwrites an existing entry for the same key.
	PutCachedContent(ctx context.Context, entry domain.CachedContent) error
	DeleteExpiredGeneratedContent(ctx context.Context, now time.Time) (int64, error)
	DeleteCachedContent(ctx context.Context, hash string, contentType domain.ContentType) error
}

type GenerationService interface {
	// Generate never fails on upstream trouble: it falls back to a canned
	// message and reports that through GenerationResult.Fallback.
	Generate(ctx context.Context, prompt string, userId domain.UserId, requestType domain.RequestType) GenerationResult
	History(ctx context.Context, userId domain.UserId, limit int) ([]domain.GenerationRequest, error)
	// Invalidate drops the cached response for prompt so the next call regenerates.
	Invalidate(ctx context.Context, prompt string, requestType domain.RequestType) error
}

type GenerationResult struct {
	RequestId string
	Text      string
	FromCache bool
	Fallback  bool
}

var errBlankResponse = errors.New("generator returned blank text")

const auditTimeout = 5 * time.Second

var fallbackMessages = map[domain.RequestType]string{
	domain.RequestSummary:        "Summary generation is temporarily unavailable. Please try again later.",
	domain.RequestQuiz:           "Quiz generation is temporarily unavailable. Please try again later.",
	domain.RequestAnalysis:       "Sentiment analysis is temporarily unavailable. Please try again later.",
	domain.RequestRecommendation: "Recommendations are temporarily unavailable. Please try again later.",
}

func FallbackMessage(rt domain.RequestType) string {
	if msg, ok := fallbackMessages[rt]; ok {
		return msg
	}
	return "AI features are temporarily unavailable. Please try again later."
}

type Gateway struct {
	storage   GenerationStorage
	generator Generator
	cfg       config.Generation
	now       Clock
	// sleep waits d or until ctx is done; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewGateway(storage GenerationStorage, generator Generator, cfg config.Generation, clock Clock) *Gateway {
	if clock == nil {
		clock = time.Now
	}
	return &Gateway{storage: storage, generator: generator, cfg: cfg, now: clock, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// auditCtx outlives the request deadline so a timed-out call still leaves PENDING.
func auditCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
}

func (g *Gateway) Generate(ctx context.Context, prompt string, userId domain.UserId, requestType domain.RequestType) GenerationResult {
	log := logger.Log.With("component", "generation", "request_type", requestType, "user_id", userId)
	started := time.Now()

	req := domain.GenerationRequest{
		Id:             uuid.NewString(),
		UserId:         userId,
		RequestType:    requestType,
		RequestPayload: prompt,
		Status:         domain.GenerationPending,
		CreatedAt:      g.now(),
	}
	g.audit(ctx, log, "create", func(ctx context.Context) error {
		return g.storage.CreateGenerationRequest(ctx, req)
	})

	hash := utils.Digest(prompt)
	contentType := domain.ContentTypeFor(requestType)

	cached, err := g.storage.GetCachedContent(ctx, hash, contentType, g.now())
	if err != nil {
		log.Warn("cache lookup failed, calling generator", "error", err)
	}
	if cached != nil {
		g.audit(ctx, log, "complete", func(ctx context.Context) error {
			return g.storage.CompleteGenerationRequest(ctx, req.Id, cached.ResponseText, 0, true)
		})
		generationRequestsTotal.WithLabelValues(string(requestType), "cache_hit").Inc()
		return GenerationResult{RequestId: req.Id, Text: cached.ResponseText, FromCache: true}
	}

	raw, err := g.callWithRetry(ctx, prompt)
	elapsed := time.Since(started)
	generationDuration.WithLabelValues(string(requestType)).Observe(elapsed.Seconds())
	if err != nil {
		g.audit(ctx, log, "fail", func(ctx context.Context) error {
			return g.storage.FailGenerationRequest(ctx, req.Id, err.Error(), elapsed.Milliseconds())
		})
		generationRequestsTotal.WithLabelValues(string(requestType), "failed").Inc()
		generationFailuresTotal.WithLabelValues(string(requestType)).Inc()
		log.Warn("generation failed, returning fallback", "request_id", req.Id, "error", err, "elapsed", elapsed)
		return GenerationResult{RequestId: req.Id, Text: FallbackMessage(requestType), Fallback: true}
	}

	text := utils.FilterOutput(raw)
	now := g.now()
	g.audit(ctx, log, "cache", func(ctx context.Context) error {
		return g.storage.PutCachedContent(ctx, domain.CachedContent{
			ContentHash:  hash,
			ContentType:  contentType,
			ResponseText: text,
			CreatedAt:    now,
			ExpiresAt:    now.Add(g.cfg.CacheTTL),
		})
	})
	g.audit(ctx, log, "complete", func(ctx context.Context) error {
		return g.storage.CompleteGenerationRequest(ctx, req.Id, text, elapsed.Milliseconds(), false)
	})
	generationRequestsTotal.WithLabelValues(string(requestType), "generated").Inc()
	log.Info("generation completed", "request_id", req.Id, "elapsed", elapsed)
	return GenerationResult{RequestId: req.Id, Text: text}
}

// callWithRetry makes up to MaxAttempts calls under one overall timeout.
// After failed attempt k it waits k*BackoffUnit.
func (g *Gateway) callWithRetry(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	attempts := g.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := g.generator.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errBlankResponse
		}
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.Log.Debug("generation attempt failed", "component", "generation", "attempt", attempt, "error", err)

		if attempt == attempts {
			break
		}
		if err := g.sleep(ctx, time.Duration(attempt)*g.cfg.BackoffUnit); err != nil {
			return "", fmt.Errorf("timed out after %d attempts: %w", attempt, lastErr)
		}
	}
	return "", fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

func (g *Gateway) audit(ctx context.Context, log *slog.Logger, op string, fn func(ctx context.Context) error) {
	actx, cancel := auditCtx(ctx)
	defer cancel()
	if err := fn(actx); err != nil {
		log.Error("generation audit write failed", "op", op, "error", err)
	}
}

func (g *Gateway) History(ctx context.Context, userId domain.UserId, limit int) ([]domain.GenerationRequest, error) {
	return g.storage.ListGenerationRequests(ctx, userId, limit)
}

func (g *Gateway) Invalidate(ctx context.Context, prompt string, requestType domain.RequestType) error {
	return g.storage.DeleteCachedContent(ctx, utils.Digest(prompt), domain.ContentTypeFor(requestType))
}
