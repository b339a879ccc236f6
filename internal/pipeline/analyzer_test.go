package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/clausescope/internal/cache"
	"github.com/ppiankov/clausescope/internal/dates"
	"github.com/ppiankov/clausescope/internal/highlight"
	"github.com/ppiankov/clausescope/internal/model"
	"github.com/ppiankov/clausescope/internal/nlp"
)

// fakeParser tags text with LabelDependencies over whitespace tokens whose
// POS tags come from a fixed lexicon
type fakeParser struct {
	calls    atomic.Int32
	err      error
	entities []nlp.Entity
}

var lexicon = map[string]string{
	"the": "DT", "tenant": "NN", "shall": "MD", "pay": "VB", "rent": "NN",
	"lease": "NN", "expires": "VBZ", "payment": "NN", "is": "VBZ", "due": "JJ",
	"on": "IN", "january": "NNP", "5": "CD", "2025": "CD", ",": ",", ".": ".",
	"landlord": "NN", "repairs": "VBZ", "roof": "NN", "acme": "NNP",
}

func (p *fakeParser) Name() string { return "fake" }

func (p *fakeParser) Parse(ctx context.Context, text string) (*nlp.Document, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}

	doc := &nlp.Document{Text: text, Sentences: []nlp.Sentence{}, Entities: p.entities}
	for _, raw := range strings.SplitAfter(text, ".") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		raw = strings.ReplaceAll(raw, ",", " ,")
		raw = strings.ReplaceAll(raw, ".", " .")
		var tokens []nlp.Token
		for _, word := range strings.Fields(raw) {
			tag, ok := lexicon[strings.ToLower(word)]
			if !ok {
				tag = "NN"
			}
			tokens = append(tokens, nlp.Token{Text: word, Tag: tag})
		}
		root := nlp.LabelDependencies(tokens)
		doc.Sentences = append(doc.Sentences, nlp.Sentence{Text: strings.TrimSpace(raw), Tokens: tokens, Root: root})
	}
	return doc, nil
}

// fakeSearcher reports every configured date that occurs in the text
type fakeSearcher struct {
	dates []string
	err   error
}

func (s *fakeSearcher) Search(text string) ([]model.DateMatch, error) {
	if s.err != nil {
		return nil, s.err
	}
	matches := []model.DateMatch{}
	for _, d := range s.dates {
		if i := strings.Index(text, d); i >= 0 {
			matches = append(matches, model.DateMatch{Text: d, Start: i, End: i + len(d)})
		}
	}
	return matches, nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func TestAnalyzer_ExtractClauses(t *testing.T) {
	a := NewAnalyzer(&fakeParser{}, &fakeSearcher{dates: []string{"January 5, 2025"}}, WithNow(fixedNow))

	text := "The tenant shall pay rent. The lease expires. Payment is due on January 5, 2025."
	analysis, err := a.ExtractClauses(context.Background(), text)
	if err != nil {
		t.Fatalf("ExtractClauses failed: %v", err)
	}

	if got := analysis.ClauseTexts(); len(got) != 1 || got[0] != "tenant pay rent" {
		t.Errorf("Expected ['tenant pay rent'], got %v", got)
	}
	if got := analysis.DateTexts(); len(got) != 1 || got[0] != "January 5, 2025" {
		t.Errorf("Expected ['January 5, 2025'], got %v", got)
	}
	if analysis.Sentences != 3 {
		t.Errorf("Expected 3 sentences, got %d", analysis.Sentences)
	}
	if len(analysis.Clauses) > analysis.Sentences {
		t.Errorf("Clause count %d exceeds sentence count %d", len(analysis.Clauses), analysis.Sentences)
	}
	if analysis.Parser != "fake" || !analysis.AnalyzedAt.Equal(fixedNow()) {
		t.Errorf("Unexpected metadata: parser=%s at=%v", analysis.Parser, analysis.AnalyzedAt)
	}
}

func TestAnalyzer_ExtractClauses_Empty(t *testing.T) {
	a := NewAnalyzer(&fakeParser{}, &fakeSearcher{})

	analysis, err := a.ExtractClauses(context.Background(), "")
	if err != nil {
		t.Fatalf("ExtractClauses failed: %v", err)
	}
	if analysis.Clauses == nil || analysis.Dates == nil {
		t.Fatal("Expected non-nil empty sequences")
	}
	if len(analysis.Clauses) != 0 || len(analysis.Dates) != 0 {
		t.Errorf("Expected empty sequences, got %+v", analysis)
	}
}

func TestAnalyzer_ErrorsPropagate(t *testing.T) {
	parseErr := errors.New("malformed encoding")
	searchErr := errors.New("date rules failed")

	tests := []struct {
		name     string
		parser   *fakeParser
		searcher *fakeSearcher
		want     error
	}{
		{"parser", &fakeParser{err: parseErr}, &fakeSearcher{}, parseErr},
		{"searcher", &fakeParser{}, &fakeSearcher{err: searchErr}, searchErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(tt.parser, tt.searcher)

			if _, err := a.ExtractClauses(context.Background(), "The tenant shall pay rent."); !errors.Is(err, tt.want) {
				t.Errorf("ExtractClauses: expected %v, got %v", tt.want, err)
			}
			if _, err := a.Highlight(context.Background(), "The tenant shall pay rent."); !errors.Is(err, tt.want) {
				t.Errorf("Highlight: expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAnalyzer_Highlight(t *testing.T) {
	text := "Acme shall pay rent on January 5, 2025."
	parser := &fakeParser{entities: []nlp.Entity{{Text: "Acme", Label: "ORG", Start: 0, End: 4}}}
	a := NewAnalyzer(parser, &fakeSearcher{dates: []string{"January 5, 2025"}})

	h, err := a.Highlight(context.Background(), text)
	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}

	if !strings.Contains(h.HTML, "<mark>January 5, 2025</mark>") {
		t.Errorf("Expected date highlighted, got %q", h.HTML)
	}
	if got := strings.Count(h.HTML, "<mark"); got != 2 {
		t.Errorf("Expected 2 highlights, got %d in %q", got, h.HTML)
	}
	if h.Entities != 1 || len(h.Dates) != 1 || h.Strategy != model.StrategyTextual {
		t.Errorf("Unexpected highlight metadata: %+v", h)
	}
}

func TestAnalyzer_HighlightStructural(t *testing.T) {
	text := "Signed January 5, 2025."
	parser := &fakeParser{entities: []nlp.Entity{{Text: "January 5, 2025", Label: "DATE", Start: 7, End: 22}}}
	merger, _ := highlight.NewMerger(model.StrategyStructural)
	a := NewAnalyzer(parser, &fakeSearcher{dates: []string{"January 5"}}, WithMerger(merger))

	h, err := a.Highlight(context.Background(), text)
	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}
	if strings.Count(h.HTML, "<mark") != 1 || len(h.Dates) != 0 {
		t.Errorf("Expected only the entity highlight, got %q", h.HTML)
	}
}

func TestAnalyzer_Cache(t *testing.T) {
	parser := &fakeParser{}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	a := NewAnalyzer(parser, &fakeSearcher{}, WithCache(c, time.Minute))

	text := "The tenant shall pay rent."
	first, err := a.ExtractClauses(context.Background(), text)
	if err != nil {
		t.Fatalf("ExtractClauses failed: %v", err)
	}
	second, err := a.ExtractClauses(context.Background(), text)
	if err != nil {
		t.Fatalf("ExtractClauses failed: %v", err)
	}

	if parser.calls.Load() != 1 {
		t.Errorf("Expected one parse for repeated text, got %d", parser.calls.Load())
	}
	if len(second.Clauses) != len(first.Clauses) || second.Clauses[0].Text != "tenant pay rent" {
		t.Errorf("Cached analysis differs: %+v vs %+v", first, second)
	}

	if _, err := a.Highlight(context.Background(), text); err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}
	if parser.calls.Load() != 2 {
		t.Errorf("Expected highlight to be cached separately, got %d parses", parser.calls.Load())
	}
}

func TestAnalyzer_CacheScope(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	small := &fakeParser{}
	large := &fakeParser{}
	a := NewAnalyzer(small, &fakeSearcher{}, WithCache(c, time.Minute), WithCacheScope("gpt-4o-mini", "5"))
	b := NewAnalyzer(large, &fakeSearcher{}, WithCache(c, time.Minute), WithCacheScope("gpt-4o", "5"))

	text := "The tenant shall pay rent."
	for _, an := range []*Analyzer{a, b, a, b} {
		if _, err := an.ExtractClauses(context.Background(), text); err != nil {
			t.Fatalf("ExtractClauses failed: %v", err)
		}
	}

	if small.calls.Load() != 1 || large.calls.Load() != 1 {
		t.Errorf("Expected one parse per scope, got %d and %d", small.calls.Load(), large.calls.Load())
	}
}

func TestAnalyzer_ProseAndWhen(t *testing.T) {
	a := NewAnalyzer(nlp.NewProseParser(), dates.NewWhenSearcher(dates.WithClock(fixedNow)), WithNow(fixedNow))

	text := "The tenant shall pay rent. The lease expires. Payment is due on January 5, 2025."
	analysis, err := a.ExtractClauses(context.Background(), text)
	if err != nil {
		t.Fatalf("ExtractClauses failed: %v", err)
	}

	if got := analysis.ClauseTexts(); len(got) != 1 || got[0] != "tenant pay rent" {
		t.Errorf("Expected ['tenant pay rent'], got %v", got)
	}
	if analysis.Sentences != 3 {
		t.Errorf("Expected 3 sentences, got %d", analysis.Sentences)
	}
	if got := analysis.DateTexts(); len(got) != 1 || got[0] != "January 5, 2025" {
		t.Errorf("Expected ['January 5, 2025'], got %v", got)
	}
	if d := analysis.Dates[0].Time; d.Year() != 2025 || d.Month() != time.January || d.Day() != 5 {
		t.Errorf("Expected 2025-01-05, got %v", d)
	}

	h, err := a.Highlight(context.Background(), text)
	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}
	if !strings.Contains(h.HTML, "January 5, 2025") || len(h.Dates) != 1 {
		t.Errorf("Expected the date merged into the markup, got %+v", h)
	}
}

func TestAnalyzer_ProseNoObject(t *testing.T) {
	a := NewAnalyzer(nlp.NewProseParser(), dates.NewWhenSearcher(dates.WithClock(fixedNow)))

	analysis, err := a.ExtractClauses(context.Background(), "The lease expires.")
	if err != nil {
		t.Fatalf("ExtractClauses failed: %v", err)
	}
	if len(analysis.Clauses) != 0 {
		t.Errorf("Expected no clauses, got %+v", analysis.Clauses)
	}
}

func TestNewAnalyzerFromConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Highlight.Strategy = model.StrategyStructural

	a, err := NewAnalyzerFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewAnalyzerFromConfig failed: %v", err)
	}
	if a.ParserName() != model.ProviderProse || a.Strategy() != model.StrategyStructural {
		t.Errorf("Unexpected analyzer: parser=%s strategy=%s", a.ParserName(), a.Strategy())
	}

	cfg.Parser.Provider = "spacy"
	if _, err := NewAnalyzerFromConfig(cfg, nil); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
