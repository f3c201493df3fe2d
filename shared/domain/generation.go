package domain

import "time"

type RequestType string

const (
	RequestSummary        RequestType = "SUMMARY"
	RequestQuiz           RequestType = "QUIZ"
	RequestAnalysis       RequestType = "ANALYSIS"
	RequestRecommendation RequestType = "RECOMMENDATION"
)

type ContentType string

const (
	ContentSummary           ContentType = "SUMMARY"
	ContentQuizQuestions     ContentType = "QUIZ_QUESTIONS"
	ContentSentimentAnalysis ContentType = "SENTIMENT_ANALYSIS"
	ContentRecommendations   ContentType = "RECOMMENDATIONS"
)

// ContentTypeFor maps a request type to its cache bucket.
// QUIZ requests share the QUIZ_QUESTIONS bucket.
func ContentTypeFor(rt RequestType) ContentType {
	switch rt {
	case RequestQuiz:
		return ContentQuizQuestions
	case RequestAnalysis:
		return ContentSentimentAnalysis
	case RequestRecommendation:
		return ContentRecommendations
	default:
		return ContentSummary
	}
}

type GenerationStatus string

const (
	GenerationPending   GenerationStatus = "PENDING"
	GenerationCompleted GenerationStatus = "COMPLETED"
	GenerationFailed    GenerationStatus = "FAILED"
)

// GenerationRequest is the audit record of one generation call.
// It leaves PENDING exactly once.
type GenerationRequest struct {
	Id               string           `json:"id"`
	UserId           UserId           `json:"user_id"`
	RequestType      RequestType      `json:"request_type"`
	RequestPayload   string           `json:"-"`
	Status           GenerationStatus `json:"status"`
	ResponsePayload  *string          `json:"-"`
	ErrorMessage     *string          `json:"error_message,omitempty"`
	ProcessingTimeMs *int64           `json:"processing_time_ms,omitempty"`
	FromCache        bool             `json:"from_cache"`
	CreatedAt        time.Time        `json:"created_at"`
}

// CachedContent is a stored generation result keyed by (ContentHash, ContentType).
type CachedContent struct {
	ContentHash  string
	ContentType  ContentType
	ResponseText string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
