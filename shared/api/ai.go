package api

import "github.com/agora-dev/agora/shared/domain"

// GenerationParams selects the content to generate from.
// Exactly one id is honored: thread, then club, then media.
type GenerationParams struct {
	MediaId  *domain.MediaId  `json:"media_id,omitempty" validate:"omitempty,gt=0"`
	ClubId   *domain.ClubId   `json:"club_id,omitempty" validate:"omitempty,gt=0"`
	ThreadId *domain.ThreadId `json:"thread_id,omitempty" validate:"omitempty,gt=0"`
}

func (p GenerationParams) Scope() domain.AggregationScope {
	return domain.AggregationScope{MediaId: p.MediaId, ClubId: p.ClubId, ThreadId: p.ThreadId}
}

type SummaryRequest struct {
	GenerationParams
	SummaryType domain.SummaryType `json:"summary_type,omitempty" validate:"omitempty,oneof=BRIEF DETAILED BULLET_POINTS"`
	MaxWords    int                `json:"max_words,omitempty"`
}

// Counts (MaxWords, NumberOfQuestions) are range-checked by the service,
// which reports them as an invalid scope.
type QuizRequest struct {
	GenerationParams
	Difficulty        domain.Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	NumberOfQuestions int               `json:"number_of_questions,omitempty"`
}

type SummaryResult struct {
	ResultBase
	Summary     string                   `json:"summary,omitempty"`
	SummaryHTML string                   `json:"summary_html,omitempty"`
	SummaryType domain.SummaryType       `json:"summary_type"`
	WordCount   int                      `json:"word_count"`
	KeyTopics   []string                 `json:"key_topics,omitempty"`
	Source      domain.AggregatedContent `json:"source"`
}

type QuizResult struct {
	ResultBase
	Difficulty domain.Difficulty        `json:"difficulty"`
	Questions  []domain.QuizQuestion    `json:"questions"`
	Source     domain.AggregatedContent `json:"source"`
}

type GenerationHistoryResponse struct {
	Requests []domain.GenerationRequest `json:"requests"`
}
