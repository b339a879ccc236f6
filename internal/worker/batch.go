package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/clausescope/internal/model"
)

// Modes of a batch run
const (
	ModeAnalyze   = "analyze"
	ModeHighlight = "highlight"
)

// Runner analyzes one input reference (file path, URL or "-")
type Runner interface {
	AnalyzeSource(ctx context.Context, ref string) (*model.Analysis, error)
	HighlightSource(ctx context.Context, ref string) (*model.Highlight, error)
}

// AnalysisJob analyzes a single input
type AnalysisJob struct {
	Index   int
	Ref     string
	Mode    string
	Runner  Runner
	Limiter *Limiter
}

// Execute runs the job
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	result := &AnalysisResult{Index: j.Index, Ref: j.Ref}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if j.Limiter != nil && isURL(j.Ref) {
		if err := j.Limiter.WaitURL(ctx, j.Ref); err != nil {
			result.Error = fmt.Errorf("rate limit: %w", err)
			return result
		}
	}

	if j.Mode == ModeHighlight {
		result.Highlight, result.Error = j.Runner.HighlightSource(ctx, j.Ref)
	} else {
		result.Analysis, result.Error = j.Runner.AnalyzeSource(ctx, j.Ref)
	}
	return result
}

// AnalysisResult is the outcome of one input in a batch
type AnalysisResult struct {
	Index     int
	Ref       string
	Analysis  *model.Analysis
	Highlight *model.Highlight
	Error     error
	Duration  time.Duration
}

// GetError returns the analysis error
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many inputs concurrently. Each input is analyzed
// independently; nothing is shared between analyses but the parser model.
type BatchProcessor struct {
	runner      Runner
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor. limiter may be nil; when set
// it throttles URL inputs per host.
func NewBatchProcessor(runner Runner, concurrency int, limiter *Limiter) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// Process analyzes refs and returns results in input order
func (b *BatchProcessor) Process(ctx context.Context, refs []string, mode string) []*AnalysisResult {
	if len(refs) == 0 {
		return []*AnalysisResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, ref := range refs {
		pool.Submit(&AnalysisJob{
			Index:   i,
			Ref:     ref,
			Mode:    mode,
			Runner:  b.runner,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*AnalysisResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.(*AnalysisResult))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads input references from a list file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, mode string) ([]*AnalysisResult, error) {
	refs, err := ReadInputList(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}
	return b.Process(ctx, refs, mode), nil
}

// ReadInputList reads one input reference per line, skipping blank lines,
// "#" comments and duplicates
func ReadInputList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var refs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			refs = append(refs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return refs, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
