package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var strategy string

// highlightCmd represents the highlight command
var highlightCmd = &cobra.Command{
	Use:   "highlight <file|url|->",
	Short: "Render named entities and dates as highlighted HTML",
	Long: `Highlight marks every named entity the parser recognizes and every date
expression in the text. Entities carry a colored label; dates are wrapped
in a plain <mark> element.

Strategies:
  textual     wrap each date substring in the rendered entity markup (default)
  structural  merge entity and date spans before rendering; entities win overlaps

Example:
  clausescope highlight lease.txt --format html -o lease.html
  clausescope highlight lease.txt --strategy structural --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runHighlight,
}

func init() {
	rootCmd.AddCommand(highlightCmd)
	addRunFlags(highlightCmd)
	highlightCmd.Flags().StringVar(&strategy, "strategy", "", "merge strategy: textual, structural (default from config)")
}

func runHighlight(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}
	if strategy != "" {
		cfg.Highlight.Strategy = strategy
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}
	}

	p, done, err := newPipeline(cmd, cfg)
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	progress(cmd, cfg, "Highlighting: %s (strategy: %s)", args[0], p.Analyzer().Strategy())

	h, err := p.HighlightSource(ctx, args[0])
	if err != nil {
		return fmt.Errorf("highlight failed: %w", err)
	}

	progress(cmd, cfg, "✓ %d entities, %d dates", h.Entities, len(h.Dates))

	if err := withOutput(cmd, func(w io.Writer) error {
		return p.Renderer().RenderHighlight(w, h, cfg.Output.Format)
	}); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
