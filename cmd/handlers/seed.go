package handlers

import (
	"context"
	"fmt"
	"io"

	"portfolio/internal/apierr"
	"portfolio/internal/cms"
	"portfolio/internal/core"

	"github.com/spf13/cobra"
)

// NewSeedExperienceCmd creates the command that writes the built-in work history to the CMS
func NewSeedExperienceCmd() *cobra.Command {
	var (
		dryRun bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "seed-experience",
		Short: "Write the built-in work history to the CMS",
		Long: `Create one experience document per built-in work history entry.

Seeding is skipped when the CMS already holds experience entries, so running
the command twice does not duplicate them. Use --force to add them anyway.

Examples:
  # Preview the entries
  portfolio seed-experience --dry-run

  # Seed an empty Sanity dataset (needs SANITY_API_TOKEN)
  portfolio seed-experience`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := core.DefaultExperience()
			out := cmd.OutOrStdout()

			if dryRun {
				for _, e := range entries {
					fmt.Fprintln(out, warnStyle.Render("dry run"), fmt.Sprintf("%d. %s at %s", e.Order, e.Title, e.Company))
				}
				return nil
			}

			cfg, err := loadedConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.experience == nil {
				return apierr.Configuration(apierr.CodeMissingCMSConfig, "no CMS configured for experience")
			}

			_, err = seedExperience(cmd.Context(), a.experience, entries, force, out)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the entries without storing them")
	cmd.Flags().BoolVar(&force, "force", false, "Seed even when experience entries already exist")

	return cmd
}

// seedExperience stores entries in src and returns how many were created.
// Nothing is written when src already has entries, unless force is set.
func seedExperience(ctx context.Context, src cms.ExperienceSource, entries []core.Experience, force bool, w io.Writer) (int, error) {
	if !force {
		existing, err := src.FetchExperience(ctx)
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			fmt.Fprintln(w, warnStyle.Render("skipped"), fmt.Sprintf("%d experience entries already stored (use --force to add more)", len(existing)))
			return 0, nil
		}
	}

	created := 0
	for _, e := range entries {
		stored, err := src.CreateExperience(ctx, e)
		if err != nil {
			return created, fmt.Errorf("failed to create %s at %s: %w", e.Title, e.Company, err)
		}
		created++
		fmt.Fprintln(w, successStyle.Render("created"), fmt.Sprintf("%s at %s", e.Title, e.Company), labelStyle.Render(stored.ID))
	}
	return created, nil
}
