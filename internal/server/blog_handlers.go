package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"portfolio/internal/apierr"
	"portfolio/internal/core"
	"portfolio/internal/generator"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxGenerateBody = 64 << 10
	maxTopics       = 6
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// listQuery is the validated form of the /api/blog query string.
type listQuery struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (q listQuery) validate(maxLimit int) error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Limit,
			validation.Required.Error("must be no less than 1"),
			validation.Min(1),
			validation.Max(maxLimit),
		),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

// parseListQuery reads limit and offset, defaulting the limit to defaultLimit.
func parseListQuery(values url.Values, defaultLimit, maxLimit int) (listQuery, error) {
	q := listQuery{Limit: defaultLimit}
	details := map[string]string{}

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			details["limit"] = "must be an integer"
		}
		q.Limit = n
	}
	if raw := values.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			details["offset"] = "must be an integer"
		}
		q.Offset = n
	}
	if len(details) > 0 {
		return q, apierr.Validation("invalid pagination parameters", details)
	}

	if err := q.validate(maxLimit); err != nil {
		return q, apierr.Validation("invalid pagination parameters", validationDetails(err))
	}
	return q, nil
}

// validationDetails flattens ozzo field errors into field → message.
func validationDetails(err error) map[string]string {
	details := map[string]string{}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fe := range errs {
			details[field] = fe.Error()
		}
		return details
	}
	details["request"] = err.Error()
	return details
}

type listPostsResponse struct {
	Posts      []core.PostSummary `json:"posts"`
	Pagination core.Pagination    `json:"pagination"`
}

// handleListPosts handles GET /api/blog
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query(), s.blog.PageSize, s.blog.MaxPageSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if s.gateway == nil {
		s.respondError(w, r, apierr.Configuration(apierr.CodeMissingCMSConfig, "no CMS gateway configured"))
		return
	}

	posts, err := s.gateway.FetchPosts(r.Context(), q.Limit, q.Offset)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	total, err := s.gateway.CountPosts(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if posts == nil {
		posts = []core.PostSummary{}
	}

	s.respondJSON(w, http.StatusOK, listPostsResponse{
		Posts:      posts,
		Pagination: core.NewPagination(q.Limit, q.Offset, total),
	})
}

// handleGetPost handles GET /api/blog/{slug}
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := validation.Validate(slug,
		validation.Required,
		validation.Length(1, 200),
		validation.Match(slugPattern),
	); err != nil {
		s.respondError(w, r, apierr.Validation("invalid slug", map[string]string{"slug": err.Error()}))
		return
	}
	if s.gateway == nil {
		s.respondError(w, r, apierr.Configuration(apierr.CodeMissingCMSConfig, "no CMS gateway configured"))
		return
	}

	post, err := s.gateway.FetchPostBySlug(r.Context(), slug)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]*core.Post{"post": post})
}

// generateRequest is the optional JSON body of /api/blog/generate.
type generateRequest struct {
	AIGenerated *bool    `json:"aiGenerated,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	DryRun      bool     `json:"dryRun,omitempty"`
}

func (req generateRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.AIGenerated, validation.By(func(v interface{}) error {
			if b, ok := v.(*bool); ok && b != nil && !*b {
				return errors.New("only AI-generated posts can be created here")
			}
			return nil
		})),
		validation.Field(&req.Topics,
			validation.Length(0, maxTopics),
			validation.Each(validation.Required, validation.Length(1, 100)),
		),
	)
}

// decodeGenerateRequest reads an optional body. An empty body means defaults.
func decodeGenerateRequest(r *http.Request) (generateRequest, error) {
	var req generateRequest
	if r.Body == nil || r.Method == http.MethodGet {
		return req, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxGenerateBody))
	if err != nil {
		return req, apierr.Wrap(apierr.KindValidation, apierr.CodeInvalidRequestData, "could not read request body", err)
	}
	if len(data) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, apierr.Wrap(apierr.KindValidation, apierr.CodeInvalidRequestData, "request body is not valid JSON", err)
	}
	if err := req.Validate(); err != nil {
		e := apierr.New(apierr.KindValidation, apierr.CodeInvalidRequestData, "request body failed validation")
		e.Details = validationDetails(err)
		return req, e
	}
	return req, nil
}

// generateResponse mirrors the post fields a caller needs after generation.
type generateResponse struct {
	Success bool           `json:"success"`
	Post    generatedEntry `json:"post"`
}

type generatedEntry struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        core.Slug `json:"slug"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"publishedAt"`
	Tags        []string  `json:"tags"`
	Generated   bool      `json:"generated"`
	ReadTime    int       `json:"readTime"`
}

// handleGenerate handles GET|POST /api/blog/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.requireGenerationSecret(s.generate)(w, r)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if s.generator == nil {
		s.respondError(w, r, apierr.Configuration(apierr.CodeMissingAIKey, "generation service is not configured"))
		return
	}

	res, err := s.generator.Generate(r.Context(), generator.GenerateOptions{
		Topics: req.Topics,
		DryRun: req.DryRun,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	p := res.Post
	s.respondJSON(w, http.StatusOK, generateResponse{
		Success: true,
		Post: generatedEntry{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Summary:     p.Summary,
			PublishedAt: p.PublishedAt,
			Tags:        p.Tags,
			Generated:   p.Generated,
			ReadTime:    p.ReadTime,
		},
	})
}
