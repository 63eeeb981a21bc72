package cms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio/internal/apierr"
	"portfolio/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *SanityClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewSanityClient(SanityConfig{
		ProjectID: "abc123",
		Dataset:   "production",
		Token:     token,
		BaseURL:   srv.URL,
	})
	if err != nil {
		t.Fatalf("NewSanityClient failed: %v", err)
	}
	return c
}

func TestNewSanityClient_MissingConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  SanityConfig
	}{
		{"no project", SanityConfig{Dataset: "production"}},
		{"no dataset", SanityConfig{ProjectID: "abc123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSanityClient(tt.cfg)
			if !apierr.IsKind(err, apierr.KindConfiguration) {
				t.Errorf("err = %v, want configuration error", err)
			}
		})
	}
}

func TestNewSanityClient_Hosts(t *testing.T) {
	c, err := NewSanityClient(SanityConfig{ProjectID: "abc123", Dataset: "production", UseCDN: true})
	if err != nil {
		t.Fatalf("NewSanityClient failed: %v", err)
	}
	if c.readBase != "https://abc123.apicdn.sanity.io" {
		t.Errorf("readBase = %q", c.readBase)
	}
	if c.writeBase != "https://abc123.api.sanity.io" {
		t.Errorf("writeBase = %q", c.writeBase)
	}
	if c.cfg.APIVersion != DefaultAPIVersion {
		t.Errorf("APIVersion = %q, want %q", c.cfg.APIVersion, DefaultAPIVersion)
	}
}

func TestFetchPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v"+DefaultAPIVersion+"/data/query/production") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if !strings.Contains(q.Get("query"), `_type == "blogPost"`) {
			t.Errorf("query missing type filter: %s", q.Get("query"))
		}
		if q.Get("$offset") != "10" || q.Get("$end") != "15" {
			t.Errorf("params = %s..%s, want 10..15", q.Get("$offset"), q.Get("$end"))
		}
		_, _ = io.WriteString(w, `{"result":[
			{"_id":"p1","title":"First","slug":{"_type":"slug","current":"first"},"summary":"s","publishedAt":"2025-10-08T12:00:00.000Z","tags":["go"],"generated":true,"readTime":4}
		],"ms":3}`)
	}, "")

	posts, err := c.FetchPosts(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("FetchPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len(posts) = %d, want 1", len(posts))
	}
	p := posts[0]
	if p.ID != "p1" || p.Slug.Current != "first" || !p.Generated || p.ReadTime != 4 {
		t.Errorf("unexpected post: %+v", p)
	}
	want := time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
	if !p.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", p.PublishedAt, want)
	}
}

func TestFetchPosts_EmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"result":[]}`)
	}, "")

	posts, err := c.FetchPosts(context.Background(), 25, 0)
	if err != nil {
		t.Fatalf("FetchPosts failed: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("posts = %#v, want empty non-nil slice", posts)
	}
}

func TestFetchPostBySlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("$slug") {
		case `"hello-world"`:
			_, _ = io.WriteString(w, `{"result":{"_id":"p1","title":"Hello","slug":{"current":"hello-world"},
				"body":[{"_type":"block","_key":"block-0","style":"normal","children":[{"_type":"span","_key":"block-0-s0","text":"Hi","marks":[]}]}],
				"source":"automated/gemini"}}`)
		default:
			_, _ = io.WriteString(w, `{"result":null}`)
		}
	}, "")

	post, err := c.FetchPostBySlug(context.Background(), "hello-world")
	if err != nil {
		t.Fatalf("FetchPostBySlug failed: %v", err)
	}
	if post.Title != "Hello" || post.Source != "automated/gemini" {
		t.Errorf("unexpected post: %+v", post)
	}
	if !post.Body.IsBlocks() || len(post.Body.Blocks) != 1 {
		t.Errorf("body should decode as blocks: %+v", post.Body)
	}

	_, err = c.FetchPostBySlug(context.Background(), "missing")
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestCountPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Query().Get("query"), "count(") {
			t.Errorf("unexpected query %q", r.URL.Query().Get("query"))
		}
		_, _ = io.WriteString(w, `{"result":42}`)
	}, "")

	n, err := c.CountPosts(context.Background())
	if err != nil {
		t.Fatalf("CountPosts failed: %v", err)
	}
	if n != 42 {
		t.Errorf("CountPosts = %d, want 42", n)
	}
}

func TestQuery_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"description":"param $end referenced, but not provided","type":"queryParseError"}}`)
	}, "")

	_, err := c.CountPosts(context.Background())
	if !apierr.IsKind(err, apierr.KindPersistence) {
		t.Fatalf("err = %v, want persistence error", err)
	}
	if !strings.Contains(err.Error(), "not provided") {
		t.Errorf("error should carry the Sanity description: %v", err)
	}
}

func TestCreatePost(t *testing.T) {
	var got struct {
		Mutations []struct {
			Create map[string]any `json:"create"`
		} `json:"mutations"`
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if !strings.Contains(r.URL.Path, "/data/mutate/production") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"transactionId":"tx1","results":[{"id":"new-id","operation":"create"}]}`)
	}, "secret-token")

	now := time.Date(2025, 10, 8, 9, 0, 0, 0, time.UTC)
	doc := core.NewDocument(core.GeneratedPost{
		Title:    "Hello World",
		Summary:  "A summary",
		Body:     "Body",
		Tags:     []string{"go"},
		ReadTime: 3,
	}, core.MarkdownBody("Body"), "automated/gemini", true, now)

	post, err := c.CreatePost(context.Background(), doc)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID != "new-id" {
		t.Errorf("ID = %q, want new-id", post.ID)
	}
	if post.Slug.Current != "hello-world" {
		t.Errorf("Slug = %q, want hello-world", post.Slug.Current)
	}

	if len(got.Mutations) != 1 {
		t.Fatalf("mutations = %d, want 1", len(got.Mutations))
	}
	created := got.Mutations[0].Create
	if created["_type"] != core.DocumentType {
		t.Errorf("_type = %v, want %s", created["_type"], core.DocumentType)
	}
	if created["generated"] != true {
		t.Errorf("generated = %v, want true", created["generated"])
	}
}

func TestCreatePost_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a token")
	}, "")

	_, err := c.CreatePost(context.Background(), core.Document{Title: "x"})
	var ae *apierr.Error
	if !apierr.IsKind(err, apierr.KindConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if ae = apierr.From(err); ae.Code != apierr.CodeMissingCMSConfig {
		t.Errorf("Code = %s, want %s", ae.Code, apierr.CodeMissingCMSConfig)
	}
}

func TestFetchExperience(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if !strings.Contains(q, `_type == "experience"`) || !strings.Contains(q, "order(order asc)") {
			t.Errorf("unexpected query: %s", q)
		}
		_, _ = io.WriteString(w, `{"result":[
			{"_id":"e1","title":"Engineer","company":"Acme","location":"Remote","range":"2024 - Present","duties":["Ship"],"order":0},
			{"_id":"e2","title":"Developer","company":"Initech","location":"Austin","range":"2022 - 2024","duties":[],"order":1}
		]}`)
	}, "")

	entries, err := c.FetchExperience(context.Background())
	if err != nil {
		t.Fatalf("FetchExperience failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Company != "Acme" || entries[0].Duties[0] != "Ship" || entries[1].Order != 1 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestFetchExperience_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"result":null}`)
	}, "")

	entries, err := c.FetchExperience(context.Background())
	if err != nil {
		t.Fatalf("FetchExperience failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("entries = %#v, want empty slice", entries)
	}
}

func TestCreateExperience(t *testing.T) {
	var got struct {
		Mutations []struct {
			Create map[string]any `json:"create"`
		} `json:"mutations"`
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"transactionId":"tx2","results":[{"id":"exp-1","operation":"create"}]}`)
	}, "secret-token")

	e, err := c.CreateExperience(context.Background(), core.Experience{
		ID:      "ignored",
		Title:   "Engineer",
		Company: "Acme",
		Range:   "2024 - Present",
		Order:   2,
	})
	if err != nil {
		t.Fatalf("CreateExperience failed: %v", err)
	}
	if e.ID != "exp-1" {
		t.Errorf("ID = %q, want exp-1", e.ID)
	}

	if len(got.Mutations) != 1 {
		t.Fatalf("mutations = %d, want 1", len(got.Mutations))
	}
	created := got.Mutations[0].Create
	if created["_type"] != core.ExperienceType {
		t.Errorf("_type = %v, want %s", created["_type"], core.ExperienceType)
	}
	if _, ok := created["_id"]; ok {
		t.Error("_id should be left to the CMS")
	}
	if created["order"] != float64(2) || created["company"] != "Acme" {
		t.Errorf("document = %v", created)
	}
	if duties, ok := created["duties"].([]any); !ok || len(duties) != 0 {
		t.Errorf("duties = %v, want empty array", created["duties"])
	}
}
