package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"portfolio/internal/apierr"
	"portfolio/internal/blocks"
	"portfolio/internal/core"
	"portfolio/internal/llm"
)

type fakeGateway struct {
	mu      sync.Mutex
	created []core.Document
	err     error
}

func (g *fakeGateway) FetchPosts(ctx context.Context, limit, offset int) ([]core.PostSummary, error) {
	return nil, nil
}

func (g *fakeGateway) FetchPostBySlug(ctx context.Context, slug string) (*core.Post, error) {
	return nil, apierr.NotFound(apierr.CodePostNotFound, slug)
}

func (g *fakeGateway) CountPosts(ctx context.Context) (int, error) { return 0, nil }

func (g *fakeGateway) CreatePost(ctx context.Context, doc core.Document) (*core.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, doc)
	return doc.ToPost(fmt.Sprintf("post-%d", len(g.created))), nil
}

type fakeTracker struct {
	generated []string
	failed    []string
}

func (f *fakeTracker) TrackPostGenerated(ctx context.Context, postID, slug, provider string, topics []string, durationMs int64) error {
	f.generated = append(f.generated, slug)
	return nil
}

func (f *fakeTracker) TrackGenerationFailed(ctx context.Context, code, provider string) error {
	f.failed = append(f.failed, code)
	return nil
}

var fixedNow = time.Date(2025, 10, 8, 9, 30, 0, 0, time.UTC)

func newTestService(gw *fakeGateway, ai llm.Generator, format BodyFormat, tracker Tracker) *Service {
	cfg := ServiceConfig{
		AI:         ai,
		Selector:   NewTopicSelector(42),
		BodyFormat: format,
		Now:        func() time.Time { return fixedNow },
	}
	if gw != nil {
		cfg.Gateway = gw
	}
	if tracker != nil {
		cfg.Tracker = tracker
	}
	return NewService(cfg)
}

func TestService_Generate(t *testing.T) {
	gw := &fakeGateway{}
	tracker := &fakeTracker{}
	mock := &llm.Mock{}
	svc := newTestService(gw, mock, BodyMarkdown, tracker)

	res, err := svc.Generate(context.Background(), GenerateOptions{Topics: []string{"Go"}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	post := res.Post
	if post.ID != "post-1" {
		t.Errorf("ID = %q, want post-1", post.ID)
	}
	if post.Title != "A Practical Look at Go" {
		t.Errorf("Title = %q", post.Title)
	}
	if post.Slug.Current != "a-practical-look-at-go" {
		t.Errorf("Slug = %q", post.Slug.Current)
	}
	if post.Source != "automated/mock" || !post.Generated {
		t.Errorf("Source = %q, Generated = %v", post.Source, post.Generated)
	}
	if !post.PublishedAt.Equal(fixedNow) {
		t.Errorf("PublishedAt = %v, want %v", post.PublishedAt, fixedNow)
	}
	if res.Provider != "mock" {
		t.Errorf("Provider = %q", res.Provider)
	}
	if len(res.Topics) != 1 || res.Topics[0] != "Go" {
		t.Errorf("Topics = %v", res.Topics)
	}

	if len(gw.created) != 1 {
		t.Fatalf("created = %d, want 1", len(gw.created))
	}
	if gw.created[0].Body.IsBlocks() {
		t.Error("markdown format should store a markdown body")
	}
	if !strings.Contains(gw.created[0].Body.Markdown, "## Why Go matters") {
		t.Errorf("body = %q", gw.created[0].Body.Markdown)
	}

	if len(mock.Prompts()) != 1 || !strings.Contains(mock.Prompts()[0], "- Go\n") {
		t.Errorf("prompt should list the requested topic: %v", mock.Prompts())
	}
	if len(tracker.generated) != 1 || tracker.generated[0] != "a-practical-look-at-go" {
		t.Errorf("tracked = %v", tracker.generated)
	}
}

func TestService_Generate_BlocksFormat(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(gw, &llm.Mock{}, BodyBlocks, nil)

	if _, err := svc.Generate(context.Background(), GenerateOptions{Topics: []string{"Astro"}}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	body := gw.created[0].Body
	if !body.IsBlocks() {
		t.Fatal("blocks format should store portable text")
	}
	if body.Blocks[0].Style != "h2" {
		t.Errorf("first block style = %q, want h2", body.Blocks[0].Style)
	}

	var sawCode bool
	for _, b := range body.Blocks {
		if b.Type == blocks.TypeCode {
			sawCode = true
			if b.Language != "typescript" {
				t.Errorf("code language = %q, want typescript", b.Language)
			}
		}
	}
	if !sawCode {
		t.Error("expected a code block")
	}
}

func TestService_Generate_RandomTopics(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(gw, &llm.Mock{}, BodyMarkdown, nil)

	res, err := svc.Generate(context.Background(), GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(res.Topics) == 0 {
		t.Error("random selection should yield at least one topic")
	}
}

func TestService_Generate_DryRun(t *testing.T) {
	svc := newTestService(nil, &llm.Mock{}, BodyMarkdown, nil)

	res, err := svc.Generate(context.Background(), GenerateOptions{Topics: []string{"Go"}, DryRun: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Post.ID != "" {
		t.Errorf("dry run ID = %q, want empty", res.Post.ID)
	}
	if res.Post.Title == "" {
		t.Error("dry run should still return the generated post")
	}
}

func TestService_Generate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		ai       llm.Generator
		gw       *fakeGateway
		wantKind apierr.Kind
		wantCode apierr.Code
	}{
		{
			name:     "no AI provider",
			ai:       nil,
			gw:       &fakeGateway{},
			wantKind: apierr.KindConfiguration,
			wantCode: apierr.CodeMissingAIKey,
		},
		{
			name:     "no CMS",
			ai:       &llm.Mock{},
			gw:       nil,
			wantKind: apierr.KindConfiguration,
			wantCode: apierr.CodeMissingCMSConfig,
		},
		{
			name:     "missing API key at call time",
			ai:       &llm.Mock{Err: fmt.Errorf("gemini: %w", llm.ErrMissingAPIKey)},
			gw:       &fakeGateway{},
			wantKind: apierr.KindConfiguration,
			wantCode: apierr.CodeMissingAIKey,
		},
		{
			name:     "model failure",
			ai:       &llm.Mock{Err: errors.New("quota exceeded")},
			gw:       &fakeGateway{},
			wantKind: apierr.KindGeneration,
			wantCode: apierr.CodeAIGenerationFailed,
		},
		{
			name:     "missing fields",
			ai:       &llm.Mock{Response: `{"title":"Only a title"}`},
			gw:       &fakeGateway{},
			wantKind: apierr.KindGeneration,
			wantCode: apierr.CodeMissingRequiredFields,
		},
		{
			name:     "title without slug characters",
			ai:       &llm.Mock{Response: `{"title":"!!!","summary":"s","body":"b","tags":["x"]}`},
			gw:       &fakeGateway{},
			wantKind: apierr.KindGeneration,
			wantCode: apierr.CodeMissingRequiredFields,
		},
		{
			name:     "persistence failure",
			ai:       &llm.Mock{},
			gw:       &fakeGateway{err: apierr.Persistence("sanity down", errors.New("503"))},
			wantKind: apierr.KindPersistence,
			wantCode: apierr.CodeFetchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &fakeTracker{}
			svc := newTestService(tt.gw, tt.ai, BodyMarkdown, tracker)

			_, err := svc.Generate(context.Background(), GenerateOptions{Topics: []string{"Go"}})
			if err == nil {
				t.Fatal("Expected error")
			}
			got := apierr.From(err)
			if got.Kind != tt.wantKind || got.Code != tt.wantCode {
				t.Errorf("got %s/%s, want %s/%s", got.Kind, got.Code, tt.wantKind, tt.wantCode)
			}
			if len(tracker.generated) != 0 {
				t.Errorf("failed generation should not be tracked as generated")
			}
		})
	}
}

func TestService_Generate_TracksFailure(t *testing.T) {
	tracker := &fakeTracker{}
	svc := newTestService(&fakeGateway{}, &llm.Mock{Err: errors.New("boom")}, BodyMarkdown, tracker)

	_, _ = svc.Generate(context.Background(), GenerateOptions{})
	if len(tracker.failed) != 1 || tracker.failed[0] != string(apierr.CodeAIGenerationFailed) {
		t.Errorf("failed = %v", tracker.failed)
	}
}

func TestParseBodyFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    BodyFormat
		wantErr bool
	}{
		{"", BodyMarkdown, false},
		{"markdown", BodyMarkdown, false},
		{" Blocks ", BodyBlocks, false},
		{"html", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBodyFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBodyFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
