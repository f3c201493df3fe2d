package service

import (
	"context"
	"fmt"

	"github.com/agora-dev/agora/backend/internal/service/utils"
	"github.com/agora-dev/agora/shared/api"
	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
	"github.com/agora-dev/agora/shared/logger"
)

type AIContentService interface {
	Summarize(ctx context.Context, user *domain.User, req api.SummaryRequest) (*api.SummaryResult, error)
	GenerateQuiz(ctx context.Context, user *domain.User, req api.QuizRequest) (*api.QuizResult, error)
	History(ctx context.Context, user *domain.User, limit int) ([]domain.GenerationRequest, error)
}

type AIContent struct {
	aggregator   AggregatorService
	gateway      GenerationService
	renderer     *utils.Renderer
	historyLimit int
}

func NewAIContent(aggregator AggregatorService, gateway GenerationService, renderer *utils.Renderer, historyLimit int) AIContentService {
	return &AIContent{aggregator: aggregator, gateway: gateway, renderer: renderer, historyLimit: historyLimit}
}

func requireUser(user *domain.User) error {
	if user == nil {
		return internal_errors.Unauthorized("Please sign-in")
	}
	return nil
}

func (s *AIContent) Summarize(ctx context.Context, user *domain.User, req api.SummaryRequest) (*api.SummaryResult, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	summaryType := req.SummaryType
	if summaryType == "" {
		summaryType = domain.SummaryBrief
	}
	maxWords := req.MaxWords
	if maxWords == 0 {
		maxWords = defaultMaxWords
	}
	if maxWords < minMaxWords || maxWords > maxMaxWords {
		return nil, internal_errors.InvalidScope(fmt.Sprintf("max_words must be between %d and %d", minMaxWords, maxMaxWords))
	}

	content, err := s.aggregator.Aggregate(ctx, req.Scope())
	if err != nil {
		return nil, err
	}

	gen := s.gateway.Generate(ctx, summaryPrompt(content, summaryType, maxWords), user.Id, domain.RequestSummary)
	result := &api.SummaryResult{SummaryType: summaryType, Source: content}
	if gen.Fallback {
		result.Message = gen.Text
		return result, nil
	}

	summary := stripTopicsLine(gen.Text)
	result.Success = true
	result.Summary = summary
	result.SummaryHTML = s.renderer.Render(summary)
	result.WordCount = summaryWordCount(gen.Text)
	result.KeyTopics = extractKeyTopics(gen.Text)
	return result, nil
}

func (s *AIContent) GenerateQuiz(ctx context.Context, user *domain.User, req api.QuizRequest) (*api.QuizResult, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}
	count := req.NumberOfQuestions
	if count == 0 {
		count = defaultQuestionCount
	}
	if count < minQuestionCount || count > maxQuestionCount {
		return nil, internal_errors.InvalidScope(fmt.Sprintf("number_of_questions must be between %d and %d", minQuestionCount, maxQuestionCount))
	}

	content, err := s.aggregator.Aggregate(ctx, req.Scope())
	if err != nil {
		return nil, err
	}

	prompt := quizPrompt(content, difficulty, count)
	gen := s.gateway.Generate(ctx, prompt, user.Id, domain.RequestQuiz)
	result := &api.QuizResult{Difficulty: difficulty, Questions: []domain.QuizQuestion{}, Source: content}
	if gen.Fallback {
		result.Message = gen.Text
		return result, nil
	}

	result.Success = true
	result.Questions = parseQuiz(gen.Text, count)
	if len(result.Questions) == 0 {
		logger.Log.Warn("quiz response had no parseable questions",
			"component", "ai_content", "request_id", gen.RequestId, "from_cache", gen.FromCache)
		// unreadable text must not be served again from the cache
		if err := s.gateway.Invalidate(ctx, prompt, domain.RequestQuiz); err != nil {
			logger.Log.Error("failed to drop unreadable quiz from cache",
				"component", "ai_content", "request_id", gen.RequestId, "error", err)
		}
		result.Message = "The generated quiz could not be read. Please try again."
	}
	return result, nil
}

func (s *AIContent) History(ctx context.Context, user *domain.User, limit int) ([]domain.GenerationRequest, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	return s.gateway.History(ctx, user.Id, limit)
}
