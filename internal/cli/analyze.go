package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausescope/internal/model"
	"github.com/ppiankov/clausescope/internal/pipeline"
)

var (
	outFormat   string
	outPath     string
	timeout     time.Duration
	parserName  string
	parserModel string
	noCache     bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url|->",
	Short: "Extract subject-verb-object clauses and dates from contract text",
	Long: `Analyze parses contract text and reports:
- One "subject verb object" clause per sentence that has both a subject and an object
- Every date expression found in the text, in order of appearance

The input is a file path, an http(s) URL, or "-" for stdin. HTML input is
reduced to its visible text first.

Example:
  clausescope analyze lease.txt
  clausescope analyze https://example.com/terms --format markdown -o terms.md
  cat lease.txt | clausescope analyze - --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addRunFlags(analyzeCmd)
}

// addRunFlags registers the flags analyze and highlight share
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outFormat, "format", "f", "", "output format: text, json, markdown, html (default from config)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	cmd.Flags().StringVar(&parserName, "parser", "", "parser backend: prose, openai (default from config)")
	cmd.Flags().StringVar(&parserModel, "model", "", "model name for the openai parser")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")
}

// runConfig loads configuration and applies the shared command flags
func runConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if outFormat != "" {
		cfg.Output.Format = outFormat
	}
	if parserName != "" {
		cfg.Parser.Provider = parserName
	}
	if parserModel != "" {
		cfg.Parser.Model = parserModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// newPipeline builds the logger and pipeline for a single run
func newPipeline(cmd *cobra.Command, cfg *model.Config) (*pipeline.Pipeline, func(), error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.NewPipeline(cfg, cmd.InOrStdin(), logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("create pipeline: %w", err)
	}
	return p, func() { _ = logger.Sync() }, nil
}

// withOutput calls write with stdout or the --output file
func withOutput(cmd *cobra.Command, write func(w io.Writer) error) (err error) {
	if outPath == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()
	return write(f)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Output.Format == pipeline.FormatHTML {
		return fmt.Errorf("format html is only available for highlight")
	}

	p, done, err := newPipeline(cmd, cfg)
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	progress(cmd, cfg, "Analyzing: %s (parser: %s)", args[0], p.Analyzer().ParserName())

	analysis, err := p.AnalyzeSource(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	progress(cmd, cfg, "✓ %d sentences, %d clauses, %d dates", analysis.Sentences, len(analysis.Clauses), len(analysis.Dates))

	if err := withOutput(cmd, func(w io.Writer) error {
		return p.Renderer().RenderAnalysis(w, analysis, cfg.Output.Format)
	}); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if outPath != "" {
		progress(cmd, cfg, "✓ Wrote %s", outPath)
	}
	return nil
}
