package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for post generation.
	DefaultModel = "gemini-flash-lite-latest"
	// DefaultMaxTokens leaves room for a 1200 word body plus JSON framing.
	DefaultMaxTokens = int32(8192)
	// DefaultTemperature keeps posts varied without drifting off format.
	DefaultTemperature = float32(0.8)
)

// ErrMissingAPIKey is returned when a provider is constructed without credentials.
var ErrMissingAPIKey = errors.New("llm: API key is required")

// Generator produces raw text for a prompt. Implementations make exactly one
// request per call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Provider names the backend, e.g. "gemini".
	Provider() string
}

// Client talks to Google Gemini.
type Client struct {
	modelName string
	options   TextGenerationOptions
	gClient   *genai.Client
}

// TextGenerationOptions contains options for text generation
type TextGenerationOptions struct {
	MaxTokens   int32   // Maximum number of tokens to generate
	Temperature float32 // Temperature for randomness (0.0 to 1.0)
	Model       string  // Model to use (optional, defaults to client's model)
	JSON        bool    // Ask for an application/json response
}

// GeminiConfig configures NewClient.
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
}

// NewClient creates a Gemini client. An empty API key yields ErrMissingAPIKey.
func NewClient(ctx context.Context, cfg GeminiConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName: cfg.Model,
		options: TextGenerationOptions{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			JSON:        true,
		},
		gClient: gClient,
	}, nil
}

// Provider implements Generator.
func (c *Client) Provider() string { return "gemini" }

// Generate implements Generator using the client's default options.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.GenerateText(ctx, prompt, c.options)
}

// GenerateText generates text using the LLM with specified options
func (c *Client) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	modelName := c.modelName
	if options.Model != "" {
		modelName = options.Model
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = options.MaxTokens
	}
	if options.Temperature > 0 {
		temp := options.Temperature
		config.Temperature = &temp
	}
	if options.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from LLM")
	}

	return text, nil
}
