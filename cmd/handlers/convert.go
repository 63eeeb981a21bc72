package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"portfolio/internal/blocks"
	"portfolio/internal/render"

	"github.com/spf13/cobra"
)

// NewConvertCmd creates the convert command for turning markdown into portable text
func NewConvertCmd() *cobra.Command {
	var (
		strict bool
		html   bool
	)

	cmd := &cobra.Command{
		Use:   "convert [file.md]",
		Short: "Convert markdown into portable text blocks",
		Long: `Convert markdown from a file (or stdin) into the block JSON stored in the CMS.

With --strict an unterminated code fence is an error instead of being dropped.
With --html the blocks are rendered as sanitized HTML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}
			return runConvert(in, cmd.OutOrStdout(), strict, html)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on an unterminated code fence")
	cmd.Flags().BoolVar(&html, "html", false, "Print sanitized HTML instead of JSON")

	return cmd
}

func runConvert(in io.Reader, out io.Writer, strict, html bool) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read markdown: %w", err)
	}

	var blks []blocks.Block
	if strict {
		blks, err = blocks.ConvertStrict(string(data))
		if err != nil {
			return err
		}
	} else {
		blks = blocks.Convert(string(data))
	}

	if html {
		_, err := fmt.Fprintln(out, render.Blocks(blks))
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(blocks.ToPortableText(blks))
}
