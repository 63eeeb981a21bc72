package server

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strconv"

	"portfolio/internal/apierr"
	"portfolio/internal/core"
	"portfolio/internal/render"

	"github.com/go-chi/chi/v5"
)

const (
	homePostCount   = 3
	defaultPageSize = 25
)

// pageData is shared by every HTML page; each page fills what it uses.
type pageData struct {
	Title       string
	Description string
	SiteName    string
	Author      string
	Bio         string
	CurrentYear int

	PostHogEnabled bool
	PostHogAPIKey  string
	PostHogHost    string

	Notice string

	Experience []core.Experience
	Projects   []core.Project

	Posts      []core.PostSummary
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool

	Post     *core.Post
	Body     template.HTML
	ReadTime int

	Status  int
	Message string
}

func (s *Server) newPageData(title string) pageData {
	return pageData{
		Title:          title,
		SiteName:       s.app.Name,
		Author:         s.app.Author,
		Bio:            s.app.Bio,
		CurrentYear:    s.now().Year(),
		PostHogEnabled: s.posthog.Enabled && s.posthog.APIKey != "",
		PostHogAPIKey:  s.posthog.APIKey,
		PostHogHost:    s.posthog.Host,
	}
}

// handleHomePage renders the bio, work history, projects and latest posts
func (s *Server) handleHomePage(w http.ResponseWriter, r *http.Request) {
	data := s.newPageData("")
	data.Description = s.app.Bio
	data.Experience = s.loadExperience(r.Context())
	data.Projects = core.DefaultProjects()

	if s.gateway == nil {
		data.Notice = "The blog is not configured yet."
	} else {
		posts, err := s.gateway.FetchPosts(r.Context(), homePostCount, 0)
		if err != nil {
			s.log.Warn("Failed to load latest posts", "error", err)
			data.Notice = "Posts are unavailable right now."
		}
		data.Posts = posts
	}

	s.renderPage(w, r, http.StatusOK, "home", data)
}

// loadExperience returns the stored work history, or the built-in list when
// the source is missing, empty or failing.
func (s *Server) loadExperience(ctx context.Context) []core.Experience {
	if s.experience == nil {
		return core.DefaultExperience()
	}
	entries, err := s.experience.FetchExperience(ctx)
	if err != nil {
		s.log.Warn("Failed to load experience, using built-in list", "error", err)
		return core.DefaultExperience()
	}
	if len(entries) == 0 {
		return core.DefaultExperience()
	}
	core.SortExperience(entries)
	return entries
}

// handleBlogPage renders one page of the post listing (?page=N, 1-based)
func (s *Server) handleBlogPage(w http.ResponseWriter, r *http.Request) {
	data := s.newPageData("Blog")
	data.Page = 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.renderErrorPage(w, r, http.StatusBadRequest, "Invalid page number")
			return
		}
		data.Page = n
	}

	if s.gateway == nil {
		data.Notice = "The blog is not configured yet."
		s.renderPage(w, r, http.StatusOK, "blog", data)
		return
	}

	size := s.blog.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	offset := (data.Page - 1) * size

	posts, err := s.gateway.FetchPosts(r.Context(), size, offset)
	if err != nil {
		s.log.Warn("Failed to load posts", "page", data.Page, "error", err)
		s.renderErrorPage(w, r, http.StatusInternalServerError, "Posts are unavailable right now.")
		return
	}
	total, err := s.gateway.CountPosts(r.Context())
	if err != nil {
		s.log.Warn("Failed to count posts", "error", err)
		s.renderErrorPage(w, r, http.StatusInternalServerError, "Posts are unavailable right now.")
		return
	}

	p := core.NewPagination(size, offset, total)
	data.Posts = posts
	data.TotalPages = max((total+size-1)/size, 1)
	data.HasPrev = data.Page > 1
	data.HasNext = p.HasMore

	s.renderPage(w, r, http.StatusOK, "blog", data)
}

// handlePostPage renders a single post
func (s *Server) handlePostPage(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		s.renderErrorPage(w, r, http.StatusNotFound, "Post not found")
		return
	}

	post, err := s.gateway.FetchPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if apierr.IsKind(err, apierr.KindNotFound) {
			s.renderErrorPage(w, r, http.StatusNotFound, "Post not found")
			return
		}
		s.log.Warn("Failed to load post", "slug", chi.URLParam(r, "slug"), "error", err)
		s.renderErrorPage(w, r, http.StatusInternalServerError, "This post is unavailable right now.")
		return
	}

	data := s.newPageData(post.Title)
	data.Description = post.Summary
	data.Post = post
	data.Body = render.Body(post.Body)
	data.ReadTime = post.ReadTime
	if data.ReadTime == 0 {
		data.ReadTime = render.ReadTime(post.Body)
	}

	s.renderPage(w, r, http.StatusOK, "post", data)
}

func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := s.newPageData(http.StatusText(status))
	data.Status = status
	data.Message = message
	s.renderPage(w, r, status, "error", data)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, name, data); err != nil {
		s.log.Error("Failed to render page", "page", name, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Debug("Failed to write page", "page", name, "error", err)
	}
}
