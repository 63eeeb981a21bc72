package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio/internal/apierr"
	"portfolio/internal/blocks"
	"portfolio/internal/cms"
	"portfolio/internal/core"
	"portfolio/internal/llm"
	"portfolio/internal/logger"
)

// BodyFormat selects how generated bodies are stored.
type BodyFormat string

const (
	BodyMarkdown BodyFormat = "markdown"
	BodyBlocks   BodyFormat = "blocks"
)

// ParseBodyFormat validates a configured body format. Empty means markdown.
func ParseBodyFormat(s string) (BodyFormat, error) {
	switch BodyFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", BodyMarkdown:
		return BodyMarkdown, nil
	case BodyBlocks:
		return BodyBlocks, nil
	default:
		return "", fmt.Errorf("unknown body format %q (supported: markdown, blocks)", s)
	}
}

// Tracker receives generation analytics events.
type Tracker interface {
	TrackPostGenerated(ctx context.Context, postID, slug, provider string, topics []string, durationMs int64) error
	TrackGenerationFailed(ctx context.Context, code, provider string) error
}

// ServiceConfig wires a Service. Gateway and AI may be nil when the
// corresponding credentials are missing; Generate then reports a
// configuration error instead of failing at startup.
type ServiceConfig struct {
	Gateway    cms.Gateway
	AI         llm.Generator
	Selector   *TopicSelector
	Prompt     PromptOptions
	Parse      ParseOptions
	BodyFormat BodyFormat
	Tracker    Tracker
	Now        func() time.Time

	// AITimeout bounds a single model call; zero leaves only the caller's deadline.
	AITimeout time.Duration
}

// Service generates blog posts with an AI model and stores them in the CMS.
type Service struct {
	gateway  cms.Gateway
	ai       llm.Generator
	selector *TopicSelector
	prompt   PromptOptions
	parse    ParseOptions
	format   BodyFormat
	tracker  Tracker
	now      func() time.Time
	timeout  time.Duration
	log      *slog.Logger
}

// NewService creates a Service, filling unset options with defaults.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		gateway:  cfg.Gateway,
		ai:       cfg.AI,
		selector: cfg.Selector,
		prompt:   cfg.Prompt,
		parse:    cfg.Parse,
		format:   cfg.BodyFormat,
		tracker:  cfg.Tracker,
		now:      cfg.Now,
		timeout:  cfg.AITimeout,
		log:      logger.Get(),
	}
	if s.selector == nil {
		s.selector = NewTopicSelector(0)
	}
	if s.prompt == (PromptOptions{}) {
		s.prompt = DefaultPromptOptions()
	}
	if s.parse == (ParseOptions{}) {
		s.parse = DefaultParseOptions()
	}
	if s.format == "" {
		s.format = BodyMarkdown
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// GenerateOptions adjusts a single generation run.
type GenerateOptions struct {
	// Topics replaces the random selection when non-empty.
	Topics []string
	// DryRun skips persistence; the returned post has no id.
	DryRun bool
}

// Result is a generated post with the inputs that produced it.
type Result struct {
	Post     *core.Post
	Topics   []string
	Provider string
	Duration time.Duration
}

// Generate runs one generation: select topics, prompt the model, recover the
// post from its output, convert the body and store the document.
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) (*Result, error) {
	start := s.now()

	if s.ai == nil {
		return nil, apierr.Configuration(apierr.CodeMissingAIKey, "AI provider is not configured")
	}
	if s.gateway == nil && !opts.DryRun {
		return nil, apierr.Configuration(apierr.CodeMissingCMSConfig, "CMS is not configured")
	}
	provider := s.ai.Provider()

	sel := s.selector.Select()
	if len(opts.Topics) > 0 {
		sel = TopicSelection{General: opts.Topics}
	}
	topics := sel.All()
	s.log.Info("Generating blog post", "provider", provider, "topics", topics)

	raw, err := s.callAI(ctx, BuildPrompt(sel, s.prompt))
	if err != nil {
		return nil, s.fail(ctx, provider, classifyAIError(err))
	}

	generated, err := ParseResponseWith(raw, s.parse)
	if err != nil {
		s.log.Warn("Failed to parse AI response", "provider", provider, "response_bytes", len(raw), "error", err)
		return nil, s.fail(ctx, provider, err)
	}

	doc := core.NewDocument(*generated, s.body(generated.Body), core.SourceAutomatedPrefix+provider, true, s.now())
	if doc.Slug.Current == "" {
		return nil, s.fail(ctx, provider, apierr.Generation(apierr.CodeMissingRequiredFields,
			fmt.Sprintf("title %q does not produce a slug", generated.Title), nil))
	}

	var post *core.Post
	if opts.DryRun {
		post = doc.ToPost("")
	} else {
		post, err = s.gateway.CreatePost(ctx, doc)
		if err != nil {
			return nil, s.fail(ctx, provider, err)
		}
	}

	elapsed := s.now().Sub(start)
	s.log.Info("Generated blog post",
		"id", post.ID, "slug", post.Slug.Current, "title", post.Title,
		"provider", provider, "dry_run", opts.DryRun, "duration_ms", elapsed.Milliseconds())

	if s.tracker != nil && !opts.DryRun {
		if err := s.tracker.TrackPostGenerated(ctx, post.ID, post.Slug.Current, provider, topics, elapsed.Milliseconds()); err != nil {
			s.log.Warn("Failed to track generated post", "error", err)
		}
	}

	return &Result{Post: post, Topics: topics, Provider: provider, Duration: elapsed}, nil
}

func (s *Service) callAI(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.ai.Generate(ctx, prompt)
}

func (s *Service) body(markdown string) core.Body {
	if s.format == BodyBlocks {
		return core.BlocksBody(blocks.ToPortableText(blocks.Convert(markdown)))
	}
	return core.MarkdownBody(markdown)
}

func (s *Service) fail(ctx context.Context, provider string, err error) error {
	if s.tracker != nil {
		if terr := s.tracker.TrackGenerationFailed(ctx, string(apierr.From(err).Code), provider); terr != nil {
			s.log.Warn("Failed to track generation failure", "error", terr)
		}
	}
	return err
}

func classifyAIError(err error) error {
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return apierr.Wrap(apierr.KindConfiguration, apierr.CodeMissingAIKey, "AI provider API key is not configured", err)
	}
	return apierr.Generation(apierr.CodeAIGenerationFailed, "AI generation failed", err)
}
