// Package cms defines the boundary to the content store that holds blog posts.
package cms

import (
	"context"

	"portfolio/internal/core"
)

// Gateway reads and writes blog posts. Implementations return *apierr.Error
// values: NotFound for a missing slug, Persistence for backend failures and
// Configuration when credentials are missing.
type Gateway interface {
	// FetchPosts returns a page of posts, newest first.
	FetchPosts(ctx context.Context, limit, offset int) ([]core.PostSummary, error)
	FetchPostBySlug(ctx context.Context, slug string) (*core.Post, error)
	CountPosts(ctx context.Context) (int, error)
	// CreatePost persists doc and returns it with its generated id.
	CreatePost(ctx context.Context, doc core.Document) (*core.Post, error)
}

// ExperienceSource stores the work history entries shown on the home page.
// Both the Sanity client and the SQL store implement it.
type ExperienceSource interface {
	// FetchExperience returns every entry ordered by Order ascending.
	FetchExperience(ctx context.Context) ([]core.Experience, error)
	CreateExperience(ctx context.Context, e core.Experience) (*core.Experience, error)
}
