package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"portfolio/internal/apierr"
	"portfolio/internal/generator"
	"portfolio/internal/render"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command for drafting a post with the AI provider
func NewGenerateCmd() *cobra.Command {
	var (
		topics []string
		dryRun bool
		asJSON bool
		seed   int64
		format string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft a blog post with the configured AI provider",
		Long: `Ask the AI provider for a new post and store it in the CMS.

Topics are picked at random from the built-in pools unless --topic is given.

Examples:
  # Generate and publish a post on random topics
  portfolio generate

  # Write about specific topics without storing the result
  portfolio generate --topic "Go generics" --topic "Postgres" --dry-run

  # Store the body as portable text blocks
  portfolio generate --format blocks`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadedConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Blog.TopicSeed = seed
			}
			if format != "" {
				cfg.Blog.BodyFormat = format
			}

			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.service()
			if err != nil {
				return err
			}
			if svc == nil {
				return apierr.Configuration(apierr.CodeMissingAIKey, "set GEMINI_API_KEY or OPENAI_API_KEY, or use ai.provider=mock")
			}

			res, err := svc.Generate(cmd.Context(), generator.GenerateOptions{Topics: topics, DryRun: dryRun})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Post)
			}
			printResult(cmd.OutOrStdout(), res, dryRun)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&topics, "topic", nil, "Topic to write about (repeatable); replaces the random selection")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate without storing the post")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the generated post as JSON")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for topic selection (default from config, 0 = random)")
	cmd.Flags().StringVar(&format, "format", "", "Body format: markdown or blocks (default from config)")

	return cmd
}

func printResult(w io.Writer, res *generator.Result, dryRun bool) {
	p := res.Post
	status := successStyle.Render("stored")
	if dryRun {
		status = warnStyle.Render("dry run, not stored")
	}

	readTime := p.ReadTime
	if readTime == 0 {
		readTime = render.ReadTime(p.Body)
	}

	lines := []string{
		titleStyle.Render(p.Title),
		"",
		field("Status", status),
		field("Slug", p.Slug.Current),
		field("Tags", strings.Join(p.Tags, ", ")),
		field("Read time", fmt.Sprintf("%d min", readTime)),
		field("Provider", res.Provider),
		field("Topics", strings.Join(res.Topics, ", ")),
		field("Duration", res.Duration.Round(time.Millisecond).String()),
	}
	if p.ID != "" {
		lines = append(lines, field("ID", p.ID))
	}
	lines = append(lines, "", p.Summary)

	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}
