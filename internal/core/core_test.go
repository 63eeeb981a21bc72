package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"portfolio/internal/blocks"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"punctuation and apostrophes", "Next.js 15: What's New?", "nextjs-15-whats-new"},
		{"plain words", "Hello World", "hello-world"},
		{"edge punctuation trimmed", "  --Go Generics!--  ", "go-generics"},
		{"repeated separators collapse", "React    &&   Vue", "react-vue"},
		{"dotted chain", "Node.js vs. Deno", "nodejs-vs-deno"},
		{"version numbers", "Go 1.22 release notes", "go-122-release-notes"},
		{"curly apostrophe", "Don’t Panic", "dont-panic"},
		{"empty", "", ""},
		{"only symbols", "???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestBody_UnmarshalMarkdown(t *testing.T) {
	var b Body
	if err := json.Unmarshal([]byte(`"## Hello\n\nworld"`), &b); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if b.IsBlocks() {
		t.Error("Expected markdown body, got blocks")
	}
	if b.Markdown != "## Hello\n\nworld" {
		t.Errorf("Markdown = %q", b.Markdown)
	}
}

func TestBody_UnmarshalBlocks(t *testing.T) {
	raw := `[{"_type":"block","_key":"block-0","style":"h2","children":[{"_type":"span","_key":"block-0-s0","text":"Hi","marks":[]}],"markDefs":[]},
	{"_type":"code","_key":"code-1","language":"go","code":"fmt.Println()"}]`

	var b Body
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !b.IsBlocks() {
		t.Fatal("Expected block body")
	}
	if len(b.Blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(b.Blocks))
	}
	if b.Blocks[1].Type != blocks.TypeCode || b.Blocks[1].Code != "fmt.Println()" {
		t.Errorf("Unexpected code block: %+v", b.Blocks[1])
	}
}

func TestBody_UnmarshalNullAndInvalid(t *testing.T) {
	var b Body
	if err := json.Unmarshal([]byte(`null`), &b); err != nil {
		t.Fatalf("null should decode: %v", err)
	}
	if !b.IsEmpty() {
		t.Error("null body should be empty")
	}

	if err := json.Unmarshal([]byte(`42`), &b); err == nil {
		t.Error("Expected error for numeric body")
	}
}

func TestBody_MarshalRoundTripShape(t *testing.T) {
	md, err := json.Marshal(MarkdownBody("text"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(md) != `"text"` {
		t.Errorf("markdown body marshaled to %s", md)
	}

	blk, err := json.Marshal(BlocksBody([]blocks.PortableBlock{}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(blk) != `[]` {
		t.Errorf("empty block body marshaled to %s", blk)
	}
}

func TestNewDocument(t *testing.T) {
	now := time.Date(2025, 10, 8, 12, 0, 0, 0, time.FixedZone("PDT", -7*3600))
	p := GeneratedPost{
		Title:    "Next.js 15: What's New?",
		Summary:  "A look at the release",
		Body:     "## Intro",
		Tags:     []string{"nextjs"},
		ReadTime: 7,
	}

	doc := NewDocument(p, MarkdownBody(p.Body), SourceAutomatedPrefix+"gemini", true, now)

	if doc.Type != DocumentType {
		t.Errorf("Type = %q, want %q", doc.Type, DocumentType)
	}
	if doc.Slug.Current != "nextjs-15-whats-new" || doc.Slug.Type != "slug" {
		t.Errorf("Unexpected slug: %+v", doc.Slug)
	}
	if doc.PublishedAt.Location() != time.UTC {
		t.Error("PublishedAt should be UTC")
	}
	if doc.Source != "automated/gemini" || !doc.Generated || doc.ReadTime != 7 {
		t.Errorf("Unexpected document: %+v", doc)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, want := range []string{`"_type":"blogPost"`, `"slug":{"_type":"slug","current":"nextjs-15-whats-new"}`, `"body":"## Intro"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("document JSON %s missing %s", data, want)
		}
	}

	post := doc.ToPost("abc")
	if post.ID != "abc" || post.Slug.Current != doc.Slug.Current {
		t.Errorf("Unexpected post: %+v", post)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		limit, offset, total int
		hasMore              bool
	}{
		{25, 0, 30, true},
		{25, 25, 30, false},
		{10, 0, 10, false},
		{10, 0, 0, false},
	}

	for _, tt := range tests {
		p := NewPagination(tt.limit, tt.offset, tt.total)
		if p.HasMore != tt.hasMore {
			t.Errorf("NewPagination(%d, %d, %d).HasMore = %v, want %v", tt.limit, tt.offset, tt.total, p.HasMore, tt.hasMore)
		}
	}
}

func TestSortExperience(t *testing.T) {
	entries := []Experience{
		{Company: "c", Order: 2},
		{Company: "a", Order: 0},
		{Company: "b1", Order: 1},
		{Company: "b2", Order: 1},
	}
	SortExperience(entries)

	var got []string
	for _, e := range entries {
		got = append(got, e.Company)
	}
	if strings.Join(got, ",") != "a,b1,b2,c" {
		t.Errorf("order = %v, want [a b1 b2 c]", got)
	}
}

func TestDefaultExperience(t *testing.T) {
	entries := DefaultExperience()
	if len(entries) == 0 {
		t.Fatal("built-in experience should not be empty")
	}
	for i, e := range entries {
		if e.Order != i {
			t.Errorf("entry %d (%s) has order %d", i, e.Company, e.Order)
		}
		if e.Title == "" || e.Company == "" || e.Range == "" {
			t.Errorf("entry %d is missing required fields: %+v", i, e)
		}
		if e.Duties == nil {
			t.Errorf("entry %d duties should be an empty slice, not nil", i)
		}
	}
}
