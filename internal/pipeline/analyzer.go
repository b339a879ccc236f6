package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ppiankov/clausescope/internal/cache"
	"github.com/ppiankov/clausescope/internal/dates"
	"github.com/ppiankov/clausescope/internal/extract"
	"github.com/ppiankov/clausescope/internal/highlight"
	"github.com/ppiankov/clausescope/internal/logging"
	"github.com/ppiankov/clausescope/internal/model"
	"github.com/ppiankov/clausescope/internal/nlp"
)

// ErrEmptyInput is returned by callers that refuse to analyze blank text
var ErrEmptyInput = errors.New("no text to analyze")

// Analyzer runs clause extraction and highlight merging over raw text.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	parser    nlp.Parser
	searcher  dates.Searcher
	extractor *extract.ClauseExtractor
	merger    *highlight.Merger
	cache     cache.Cache
	cacheTTL  time.Duration
	scope     []string
	logger    logging.Logger
	now       func() time.Time
}

// AnalyzerOption configures an Analyzer
type AnalyzerOption func(*Analyzer)

// WithCache memoizes results for identical text
func WithCache(c cache.Cache, ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithCacheScope adds settings that change results to every cache key, so
// analyzers configured differently never share entries
func WithCacheScope(parts ...string) AnalyzerOption {
	return func(a *Analyzer) {
		a.scope = append(a.scope, parts...)
	}
}

// WithLogger sets the analyzer's logger
func WithLogger(l logging.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMerger sets the highlight merger
func WithMerger(m *highlight.Merger) AnalyzerOption {
	return func(a *Analyzer) {
		a.merger = m
	}
}

// WithNow sets the clock used to stamp analyses
func WithNow(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates an analyzer over the given collaborators
func NewAnalyzer(parser nlp.Parser, searcher dates.Searcher, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		parser:    parser,
		searcher:  searcher,
		extractor: extract.NewClauseExtractor(),
		merger:    highlight.NewTextualMerger(),
		cache:     cache.NopCache{},
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewAnalyzerFromConfig wires the parser, date searcher, merger and cache
// selected by cfg
func NewAnalyzerFromConfig(cfg *model.Config, logger logging.Logger) (*Analyzer, error) {
	parser, err := nlp.NewParser(cfg.Parser)
	if err != nil {
		return nil, err
	}
	merger, err := highlight.NewMerger(cfg.Highlight.Strategy)
	if err != nil {
		return nil, err
	}

	opts := []AnalyzerOption{WithMerger(merger), WithLogger(logger)}
	if cfg.Cache.Enabled {
		opts = append(opts,
			WithCache(cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval), cfg.Cache.TTL),
			WithCacheScope(cfg.Parser.Model, cfg.Parser.BaseURL, strconv.Itoa(cfg.Dates.Distance)),
		)
	}

	searcher := dates.NewWhenSearcher(dates.WithDistance(cfg.Dates.Distance))
	return NewAnalyzer(parser, searcher, opts...), nil
}

// ParserName returns the name of the parser backend
func (a *Analyzer) ParserName() string {
	return a.parser.Name()
}

// Strategy returns the highlight merge strategy
func (a *Analyzer) Strategy() string {
	return a.merger.Strategy()
}

func (a *Analyzer) cacheKey(kind, text string, parts ...string) string {
	all := append([]string{a.parser.Name()}, a.scope...)
	return cache.Key(kind, text, append(all, parts...)...)
}

// ExtractClauses parses text into clauses and finds every date in it.
// Blank text yields empty sequences.
func (a *Analyzer) ExtractClauses(ctx context.Context, text string) (*model.Analysis, error) {
	key := a.cacheKey("analysis", text)
	var cached model.Analysis
	if cache.GetJSON(a.cache, key, &cached) {
		a.logger.Debug("analysis cache hit", logging.String("key", key))
		cached.AnalyzedAt = a.now().UTC()
		return &cached, nil
	}

	start := time.Now()
	doc, err := a.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	matches, err := a.searcher.Search(text)
	if err != nil {
		return nil, fmt.Errorf("search dates: %w", err)
	}

	analysis := &model.Analysis{
		Parser:     a.parser.Name(),
		Sentences:  len(doc.Sentences),
		Clauses:    a.extractor.Extract(doc),
		Dates:      matches,
		AnalyzedAt: a.now().UTC(),
	}
	if analysis.Dates == nil {
		analysis.Dates = []model.DateMatch{}
	}

	a.logger.Debug("analysis complete",
		logging.Int("sentences", analysis.Sentences),
		logging.Int("clauses", len(analysis.Clauses)),
		logging.Int("dates", len(analysis.Dates)),
		logging.Duration("elapsed", time.Since(start)),
	)

	if err := cache.SetJSON(a.cache, key, analysis, a.cacheTTL); err != nil {
		a.logger.Warn("cache analysis", logging.Error(err))
	}
	return analysis, nil
}

// Highlight renders the parser's entities as markup and merges every date
// found in the original text into it
func (a *Analyzer) Highlight(ctx context.Context, text string) (*model.Highlight, error) {
	key := a.cacheKey("highlight", text, a.merger.Strategy())
	var cached model.Highlight
	if cache.GetJSON(a.cache, key, &cached) {
		a.logger.Debug("highlight cache hit", logging.String("key", key))
		return &cached, nil
	}

	doc, err := a.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	matches, err := a.searcher.Search(text)
	if err != nil {
		return nil, fmt.Errorf("search dates: %w", err)
	}

	result, err := a.merger.Merge(text, doc.Entities, matches)
	if err != nil {
		return nil, fmt.Errorf("merge highlights: %w", err)
	}

	h := &model.Highlight{
		HTML:     result.HTML,
		Entities: result.Entities,
		Dates:    result.Dates,
		Strategy: result.Strategy,
	}

	a.logger.Debug("highlight complete",
		logging.Int("entities", h.Entities),
		logging.Int("dates", len(h.Dates)),
		logging.String("strategy", h.Strategy),
	)

	if err := cache.SetJSON(a.cache, key, h, a.cacheTTL); err != nil {
		a.logger.Warn("cache highlight", logging.Error(err))
	}
	return h, nil
}
