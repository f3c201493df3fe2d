// Package llm holds the upstream text generation providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agora-dev/agora/shared/config"
)

// Generator turns a prompt into text. It matches service.Generator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// New builds the configured provider behind a circuit breaker.
func New(ctx context.Context, cfg config.Generation, apiKey string) (Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("llm api key is required")
	}

	var (
		provider Generator
		err      error
	)
	name := strings.ToLower(cfg.Provider)
	if name == "" {
		name = ProviderOpenAI
	}
	switch name {
	case ProviderOpenAI:
		provider = NewOpenAI(cfg, apiKey)
	case ProviderGemini:
		provider, err = NewGemini(ctx, cfg, apiKey)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	return NewBreaker(name, provider, DefaultBreakerSettings()), nil
}

// ErrNotConfigured is returned by the generator used when no api key is set.
var ErrNotConfigured = errors.New("llm provider not configured")

type unconfigured struct{}

func (unconfigured) Generate(ctx context.Context, prompt string) (string, error) {
	return "", ErrNotConfigured
}

// Unconfigured returns a generator that always fails, so AI endpoints answer
// with their fallback messages instead of the server refusing to start.
func Unconfigured() Generator { return unconfigured{} }
