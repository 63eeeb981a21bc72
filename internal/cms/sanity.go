package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio/internal/apierr"
	"portfolio/internal/core"
	"portfolio/internal/logger"
)

// DefaultAPIVersion is the dated API version sent to Sanity.
const DefaultAPIVersion = "2025-10-08"

const (
	listQuery = `*[_type == "blogPost"] | order(publishedAt desc) [$offset...$end] {
  _id, title, slug, summary, publishedAt, tags, generated, readTime
}`
	slugQuery = `*[_type == "blogPost" && slug.current == $slug][0] {
  _id, title, slug, summary, publishedAt, modifiedAt, body, tags, source, generated, readTime
}`
	countQuery      = `count(*[_type == "blogPost"])`
	experienceQuery = `*[_type == "experience"] | order(order asc) {
  _id, title, company, location, range, duties, order
}`
)

// SanityConfig configures the Sanity gateway.
type SanityConfig struct {
	ProjectID  string
	Dataset    string
	Token      string // required for writes only
	APIVersion string
	UseCDN     bool
	Timeout    time.Duration
	// BaseURL replaces https://<project>.api.sanity.io, mainly for tests.
	BaseURL string
}

// SanityClient is a Gateway backed by the Sanity HTTP API.
type SanityClient struct {
	cfg        SanityConfig
	httpClient *http.Client
	readBase   string
	writeBase  string
	log        *slog.Logger
}

// NewSanityClient validates cfg and returns a client. Project and dataset are
// required; the token is checked lazily on the first write.
func NewSanityClient(cfg SanityConfig) (*SanityClient, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, apierr.Configuration(apierr.CodeMissingCMSConfig, "sanity project id and dataset are required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	writeBase := fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	readBase := writeBase
	if cfg.UseCDN {
		readBase = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
	}
	if cfg.BaseURL != "" {
		readBase = strings.TrimRight(cfg.BaseURL, "/")
		writeBase = readBase
	}

	return &SanityClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		readBase:   readBase,
		writeBase:  writeBase,
		log:        logger.Get(),
	}, nil
}

// FetchPosts implements Gateway.
func (c *SanityClient) FetchPosts(ctx context.Context, limit, offset int) ([]core.PostSummary, error) {
	var posts []core.PostSummary
	params := map[string]any{"offset": offset, "end": offset + limit}
	if err := c.query(ctx, listQuery, params, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []core.PostSummary{}
	}
	return posts, nil
}

// FetchPostBySlug implements Gateway.
func (c *SanityClient) FetchPostBySlug(ctx context.Context, slug string) (*core.Post, error) {
	var post *core.Post
	if err := c.query(ctx, slugQuery, map[string]any{"slug": slug}, &post); err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apierr.NotFound(apierr.CodePostNotFound, fmt.Sprintf("no post with slug %q", slug))
	}
	return post, nil
}

// CountPosts implements Gateway.
func (c *SanityClient) CountPosts(ctx context.Context) (int, error) {
	var n int
	if err := c.query(ctx, countQuery, nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

type mutationResponse struct {
	TransactionID string           `json:"transactionId"`
	Results       []mutationResult `json:"results"`
}

// CreatePost implements Gateway.
func (c *SanityClient) CreatePost(ctx context.Context, doc core.Document) (*core.Post, error) {
	result, txID, err := c.create(ctx, doc)
	if err != nil {
		return nil, err
	}
	c.log.Info("Created post in Sanity", "id", result.ID, "slug", doc.Slug.Current, "transaction", txID)

	if len(result.Document) > 0 {
		var stored core.Post
		if err := json.Unmarshal(result.Document, &stored); err == nil && stored.ID != "" {
			return &stored, nil
		}
	}
	return doc.ToPost(result.ID), nil
}

// FetchExperience implements ExperienceSource.
func (c *SanityClient) FetchExperience(ctx context.Context) ([]core.Experience, error) {
	var entries []core.Experience
	if err := c.query(ctx, experienceQuery, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []core.Experience{}
	}
	return entries, nil
}

type experienceDocument struct {
	Type string `json:"_type"`
	core.Experience
}

// CreateExperience implements ExperienceSource.
func (c *SanityClient) CreateExperience(ctx context.Context, e core.Experience) (*core.Experience, error) {
	e.ID = ""
	if e.Duties == nil {
		e.Duties = []string{}
	}
	result, txID, err := c.create(ctx, experienceDocument{Type: core.ExperienceType, Experience: e})
	if err != nil {
		return nil, err
	}
	c.log.Info("Created experience in Sanity", "id", result.ID, "company", e.Company, "transaction", txID)

	e.ID = result.ID
	return &e, nil
}

type mutationResult struct {
	ID        string          `json:"id"`
	Operation string          `json:"operation"`
	Document  json.RawMessage `json:"document"`
}

// create runs a single create mutation and returns its first result.
func (c *SanityClient) create(ctx context.Context, doc any) (mutationResult, string, error) {
	if c.cfg.Token == "" {
		return mutationResult{}, "", apierr.Configuration(apierr.CodeMissingCMSConfig, "sanity write token is not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"mutations": []map[string]any{{"create": doc}},
	})
	if err != nil {
		return mutationResult{}, "", apierr.Persistence("failed to encode mutation", err)
	}

	endpoint := fmt.Sprintf("%s/v%s/data/mutate/%s?returnIds=true&returnDocuments=true",
		c.writeBase, c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return mutationResult{}, "", apierr.Persistence("failed to build mutation request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	var resp mutationResponse
	if err := c.do(req, &resp); err != nil {
		return mutationResult{}, "", err
	}
	if len(resp.Results) == 0 || resp.Results[0].ID == "" {
		return mutationResult{}, "", apierr.Persistence("sanity mutation returned no document id", nil)
	}
	return resp.Results[0], resp.TransactionID, nil
}

func (c *SanityClient) query(ctx context.Context, groq string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", groq)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return apierr.Persistence("failed to encode query parameter "+name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s",
		c.readBase, c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apierr.Persistence("failed to build query request", err)
	}
	if c.cfg.Token != "" && !c.cfg.UseCDN {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.do(req, &envelope); err != nil {
		return err
	}
	if len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return apierr.Persistence("failed to decode query result", err)
	}
	return nil
}

type sanityError struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *SanityClient) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.Persistence("sanity request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return apierr.Persistence("failed to read sanity response", err)
	}

	c.log.Debug("Sanity request", "method", req.Method, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var se sanityError
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &se) == nil {
			if se.Error.Description != "" {
				msg = se.Error.Description
			} else if se.Message != "" {
				msg = se.Message
			}
		}
		return apierr.Persistence(fmt.Sprintf("sanity returned %d", resp.StatusCode), fmt.Errorf("%s", msg))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apierr.Persistence("failed to decode sanity response", err)
	}
	return nil
}
