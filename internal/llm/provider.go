package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderConfig selects and configures a Generator.
type ProviderConfig struct {
	Provider string // gemini, openai or mock
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
}

// New builds the Generator named by cfg.Provider. On error the returned
// Generator is nil.
func New(ctx context.Context, cfg ProviderConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		c, err := NewClient(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		c, err := NewOpenAIClient(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "mock":
		return &Mock{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q (supported: gemini, openai, mock)", cfg.Provider)
	}
}
