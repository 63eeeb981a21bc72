package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"portfolio/internal/blocks"
)

// DocumentType is the CMS type name shared by every blog post document.
const DocumentType = "blogPost"

// Source values recorded on persisted posts.
const (
	SourceManual          = "manual"
	SourceAutomatedPrefix = "automated/"
)

// GeneratedPost is the validated result of one AI generation attempt.
type GeneratedPost struct {
	Title    string   `json:"title"`    // Bounded title, truncated when the model overshoots
	Summary  string   `json:"summary"`  // Bounded preview/SEO summary
	Body     string   `json:"body"`     // Markdown body exactly as produced by the model
	Tags     []string `json:"tags"`     // Short lowercase labels, never empty
	ReadTime int      `json:"readTime"` // Estimated minutes to read
}

// Slug is the CMS slug object.
type Slug struct {
	Type    string `json:"_type,omitempty"` // Always "slug" when written
	Current string `json:"current"`         // The URL-safe identifier
}

// NewSlug wraps a slug string in the CMS slug shape.
func NewSlug(current string) Slug {
	return Slug{Type: "slug", Current: current}
}

// Body is a post body stored either as raw markdown or as a rich-text block array.
type Body struct {
	Markdown string                 // Raw markdown, set when the body was stored as a string
	Blocks   []blocks.PortableBlock // Rich-text blocks, set when the body was stored as an array
}

// MarkdownBody returns a Body holding raw markdown.
func MarkdownBody(md string) Body {
	return Body{Markdown: md}
}

// BlocksBody returns a Body holding rich-text blocks.
func BlocksBody(b []blocks.PortableBlock) Body {
	return Body{Blocks: b}
}

// IsBlocks reports whether the body is a block array.
func (b Body) IsBlocks() bool {
	return b.Blocks != nil
}

// IsEmpty reports whether the body carries no content.
func (b Body) IsEmpty() bool {
	return b.Markdown == "" && len(b.Blocks) == 0
}

// MarshalJSON writes the body in whichever shape it holds.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.IsBlocks() {
		return json.Marshal(b.Blocks)
	}
	return json.Marshal(b.Markdown)
}

// UnmarshalJSON accepts a markdown string, a block array, or null.
func (b *Body) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = Body{}
		return nil
	}

	switch data[0] {
	case '"':
		var md string
		if err := json.Unmarshal(data, &md); err != nil {
			return fmt.Errorf("failed to decode markdown body: %w", err)
		}
		*b = Body{Markdown: md}
	case '[':
		var blks []blocks.PortableBlock
		if err := json.Unmarshal(data, &blks); err != nil {
			return fmt.Errorf("failed to decode block body: %w", err)
		}
		if blks == nil {
			blks = []blocks.PortableBlock{}
		}
		*b = Body{Blocks: blks}
	default:
		return fmt.Errorf("unsupported body type starting with %q", data[0])
	}
	return nil
}

// PostSummary is the list projection of a post.
type PostSummary struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        Slug      `json:"slug"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"publishedAt"`
	Tags        []string  `json:"tags"`
	Generated   bool      `json:"generated"`
	ReadTime    int       `json:"readTime,omitempty"`
}

// Post is a full blog post as stored in the CMS.
type Post struct {
	PostSummary
	ModifiedAt *time.Time `json:"modifiedAt,omitempty"`
	Body       Body       `json:"body"`
	Source     string     `json:"source,omitempty"`
}

// Document is the shape handed to the CMS when creating a post.
type Document struct {
	Type        string    `json:"_type"`
	Title       string    `json:"title"`
	Slug        Slug      `json:"slug"`
	Summary     string    `json:"summary"`
	Body        Body      `json:"body"`
	PublishedAt time.Time `json:"publishedAt"`
	Tags        []string  `json:"tags"`
	Source      string    `json:"source"`
	Generated   bool      `json:"generated"`
	ReadTime    int       `json:"readTime"`
}

// NewDocument builds a blogPost document from a generated post. The slug is
// derived from the title.
func NewDocument(p GeneratedPost, body Body, source string, generated bool, now time.Time) Document {
	return Document{
		Type:        DocumentType,
		Title:       p.Title,
		Slug:        NewSlug(Slugify(p.Title)),
		Summary:     p.Summary,
		Body:        body,
		PublishedAt: now.UTC(),
		Tags:        p.Tags,
		Source:      source,
		Generated:   generated,
		ReadTime:    p.ReadTime,
	}
}

// ToPost converts a document into the post it becomes once stored under id.
func (d Document) ToPost(id string) *Post {
	return &Post{
		PostSummary: PostSummary{
			ID:          id,
			Title:       d.Title,
			Slug:        d.Slug,
			Summary:     d.Summary,
			PublishedAt: d.PublishedAt,
			Tags:        d.Tags,
			Generated:   d.Generated,
			ReadTime:    d.ReadTime,
		},
		Body:   d.Body,
		Source: d.Source,
	}
}

// Pagination describes one page of a post listing.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// NewPagination computes HasMore from the window and total.
func NewPagination(limit, offset, total int) Pagination {
	return Pagination{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasMore: offset+limit < total,
	}
}
