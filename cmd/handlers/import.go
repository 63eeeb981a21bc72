package handlers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"portfolio/internal/apierr"
	"portfolio/internal/blocks"
	"portfolio/internal/core"
	"portfolio/internal/generator"
	"portfolio/internal/render"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"
)

const excerptLength = 160

// postFrontMatter is the metadata block at the top of an imported markdown file.
type postFrontMatter struct {
	Title       string   `yaml:"title" toml:"title" json:"title"`
	Slug        string   `yaml:"slug" toml:"slug" json:"slug"`
	Summary     string   `yaml:"summary" toml:"summary" json:"summary"`
	Tags        []string `yaml:"tags" toml:"tags" json:"tags"`
	PublishedAt string   `yaml:"publishedAt" toml:"publishedAt" json:"publishedAt"`
	ReadTime    int      `yaml:"readTime" toml:"readTime" json:"readTime"`
}

func (fm postFrontMatter) Validate() error {
	return validation.ValidateStruct(&fm,
		validation.Field(&fm.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&fm.Slug, validation.Length(0, 200)),
		validation.Field(&fm.Summary, validation.Length(0, 500)),
		validation.Field(&fm.Tags, validation.Each(validation.Required, validation.Length(1, 40))),
		validation.Field(&fm.ReadTime, validation.Min(0), validation.Max(240)),
	)
}

var publishedAtLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parsePublishedAt(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback.UTC(), nil
	}
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("publishedAt %q is not a date (use YYYY-MM-DD or RFC 3339)", s)
}

// parseManualPost turns a markdown file with front matter into a manual post
// document. Missing summary and read time are derived from the body.
func parseManualPost(r io.Reader, format generator.BodyFormat, now time.Time) (core.Document, error) {
	var fm postFrontMatter
	rest, err := frontmatter.Parse(r, &fm)
	if err != nil {
		return core.Document{}, apierr.Wrap(apierr.KindValidation, apierr.CodeInvalidRequestData, "could not parse front matter", err)
	}
	if err := fm.Validate(); err != nil {
		return core.Document{}, apierr.Validation("invalid front matter", err.Error())
	}

	markdown := strings.TrimSpace(string(rest))
	if markdown == "" {
		return core.Document{}, apierr.Validation("post body is empty", nil)
	}

	publishedAt, err := parsePublishedAt(fm.PublishedAt, now)
	if err != nil {
		return core.Document{}, apierr.Validation(err.Error(), nil)
	}

	body := core.MarkdownBody(markdown)
	if format == generator.BodyBlocks {
		body = core.BlocksBody(blocks.ToPortableText(blocks.Convert(markdown)))
	}

	post := core.GeneratedPost{
		Title:    strings.TrimSpace(fm.Title),
		Summary:  strings.TrimSpace(fm.Summary),
		Body:     markdown,
		Tags:     fm.Tags,
		ReadTime: fm.ReadTime,
	}
	if post.Summary == "" {
		post.Summary = render.Excerpt(body, excerptLength)
	}
	if post.ReadTime == 0 {
		post.ReadTime = render.ReadTime(body)
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	doc := core.NewDocument(post, body, core.SourceManual, false, publishedAt)
	if fm.Slug != "" {
		doc.Slug = core.NewSlug(core.Slugify(fm.Slug))
	}
	if doc.Slug.Current == "" {
		return core.Document{}, apierr.Validation("title does not produce a slug", map[string]string{"title": fm.Title})
	}
	return doc, nil
}

// NewImportCmd creates the import command for publishing hand-written posts
func NewImportCmd() *cobra.Command {
	var (
		dryRun bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "import <file.md>...",
		Short: "Publish markdown files with front matter as blog posts",
		Long: `Import hand-written posts into the CMS.

Each file starts with YAML front matter:

  ---
  title: Shipping a Go service
  summary: What changed when we moved to chi.
  tags: [go, backend]
  publishedAt: 2025-10-08
  ---

  ## The body is markdown

Missing summaries and read times are derived from the body.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadedConfig()
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Blog.BodyFormat
			}
			bodyFormat, err := generator.ParseBodyFormat(format)
			if err != nil {
				return err
			}

			docs := make([]core.Document, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				doc, err := parseManualPost(bytes.NewReader(data), bodyFormat, time.Now())
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				docs = append(docs, doc)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, doc := range docs {
					fmt.Fprintln(out, boxStyle.Render(strings.Join([]string{
						titleStyle.Render(doc.Title),
						field("Status", warnStyle.Render("dry run, not stored")),
						field("Slug", doc.Slug.Current),
						field("Read time", fmt.Sprintf("%d min", doc.ReadTime)),
					}, "\n")))
				}
				return nil
			}

			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.gateway == nil {
				return apierr.Configuration(apierr.CodeMissingCMSConfig, "no CMS configured for import")
			}

			for _, doc := range docs {
				post, err := a.gateway.CreatePost(cmd.Context(), doc)
				if err != nil {
					return fmt.Errorf("failed to import %q: %w", doc.Title, err)
				}
				fmt.Fprintln(out, successStyle.Render("imported"), post.Slug.Current, labelStyle.Render(post.ID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate without storing")
	cmd.Flags().StringVar(&format, "format", "", "Body format: markdown or blocks (default from config)")

	return cmd
}
