package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausescope/internal/pipeline"
	"github.com/ppiankov/clausescope/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchMode    string
	hostRate     float64
	hostBurst    int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Analyze many contracts from a list file in parallel",
	Long: `Batch processes many inputs concurrently:
- Read file paths and URLs from the list file (one per line, "#" comments allowed)
- Analyze each input independently with a pool of workers
- Throttle URL fetches per host
- Write one output file per input

Example:
  clausescope batch contracts.txt
  clausescope batch contracts.txt --concurrency 8 --output-dir ./out
  clausescope batch urls.txt --mode highlight --rate 1`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./clausescope-out", "output directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchMode, "mode", worker.ModeAnalyze, "what to produce per input: analyze, highlight")
	batchCmd.Flags().Float64Var(&hostRate, "rate", 2, "URL fetches per second per host (0 disables throttling)")
	batchCmd.Flags().IntVar(&hostBurst, "burst", 2, "URL fetch burst per host")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	if batchMode != worker.ModeAnalyze && batchMode != worker.ModeHighlight {
		return fmt.Errorf("unknown mode %q (supported: analyze, highlight)", batchMode)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  ClauseScope Batch Processing\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Mode:         %s\n", batchMode)
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, done, err := newPipeline(cmd, cfg)
	if err != nil {
		return err
	}
	defer done()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, worker.NewLimiter(hostRate, hostBurst))
	results, err := processor.ProcessFile(ctx, file, batchMode)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Ref, result.Error)
			continue
		}

		slug := sanitizeFilename(result.Ref)
		if n := used[slug]; n > 0 {
			slug = fmt.Sprintf("%s-%d", slug, n+1)
		}
		used[slug]++

		path, err := writeBatchResult(p.Renderer(), result, slug)
		if err != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Ref, err)
			continue
		}

		successCount++
		if result.Analysis != nil {
			fmt.Fprintf(stderr, "✓ %s (%d clauses, %d dates) → %s\n",
				result.Ref, len(result.Analysis.Clauses), len(result.Analysis.Dates), path)
		} else {
			fmt.Fprintf(stderr, "✓ %s (%d entities, %d dates) → %s\n",
				result.Ref, result.Highlight.Entities, len(result.Highlight.Dates), path)
		}
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d inputs\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d inputs failed", failureCount)
	}
	return nil
}

// writeBatchResult writes an analysis as JSON or a highlight as an HTML page
func writeBatchResult(r *pipeline.Renderer, result *worker.AnalysisResult, slug string) (path string, err error) {
	if result.Analysis != nil {
		path = filepath.Join(outputDir, slug+".json")
	} else {
		path = filepath.Join(outputDir, slug+".html")
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if result.Analysis != nil {
		err = r.RenderAnalysis(f, result.Analysis, pipeline.FormatJSON)
	} else {
		err = r.RenderHighlight(f, result.Highlight, pipeline.FormatHTML)
	}
	return path, err
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a file path or URL into a safe file name stem
func sanitizeFilename(ref string) string {
	if pipeline.IsURL(ref) {
		ref = strings.TrimPrefix(strings.TrimPrefix(ref, "https://"), "http://")
	} else {
		ref = strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	}
	s := strings.Trim(filenameReplacer.Replace(ref), "_.-")
	if s == "" {
		s = "input"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
