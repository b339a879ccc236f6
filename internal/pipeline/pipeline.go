// Package pipeline loads contract text and runs clause, date and highlight
// analysis over it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/clausescope/internal/logging"
	"github.com/ppiankov/clausescope/internal/model"
)

// Pipeline ties input loading, analysis and rendering together
type Pipeline struct {
	loader   *SourceLoader
	analyzer *Analyzer
	renderer *Renderer
	logger   logging.Logger
}

// NewPipeline builds a pipeline from configuration; stdin backs the "-" source
func NewPipeline(cfg *model.Config, stdin io.Reader, logger logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	analyzer, err := NewAnalyzerFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		loader:   NewSourceLoader(NewFetcher(cfg.HTTP), stdin),
		analyzer: analyzer,
		renderer: NewRenderer(),
		logger:   logger,
	}, nil
}

// New assembles a pipeline from existing parts
func New(loader *SourceLoader, analyzer *Analyzer, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{loader: loader, analyzer: analyzer, renderer: NewRenderer(), logger: logger}
}

// Analyzer returns the pipeline's analyzer
func (p *Pipeline) Analyzer() *Analyzer {
	return p.analyzer
}

// Renderer returns the pipeline's output renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

func (p *Pipeline) load(ctx context.Context, ref string) (*Input, error) {
	input, err := p.loader.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%s: %w", input.Name, ErrEmptyInput)
	}
	p.logger.Debug("loaded input", logging.String("source", input.Name), logging.Int("bytes", len(input.Text)))
	return input, nil
}

// AnalyzeSource loads ref and extracts its clauses and dates
func (p *Pipeline) AnalyzeSource(ctx context.Context, ref string) (*model.Analysis, error) {
	input, err := p.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	analysis, err := p.analyzer.ExtractClauses(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", input.Name, err)
	}
	analysis.Source = input.Name
	return analysis, nil
}

// HighlightSource loads ref and renders its entity and date highlights
func (p *Pipeline) HighlightSource(ctx context.Context, ref string) (*model.Highlight, error) {
	input, err := p.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	h, err := p.analyzer.Highlight(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("highlight %s: %w", input.Name, err)
	}
	h.Source = input.Name
	return h, nil
}
