package highlight

import (
	"fmt"
	"html"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/ppiankov/clausescope/internal/model"
	"github.com/ppiankov/clausescope/internal/nlp"
)

// TextualMerge wraps every literal occurrence of each date in markup with
// <mark></mark>, skipping occurrences that already sit right after an
// opening <mark> or right before a closing </mark>. Dates are processed in
// order against the accumulating markup.
//
// The merge is purely textual: repeated substrings are all wrapped, a date
// that straddles an entity boundary is not found, and a date string that
// also appears inside rendered markup (a label or attribute) is wrapped
// there too.
func TextualMerge(markup string, dates []string) (string, error) {
	for _, date := range dates {
		if date == "" {
			continue
		}
		// The renderer escapes text, so the date must be escaped the same way
		escaped := html.EscapeString(date)
		re, err := regexp2.Compile(`(?<!<mark>)`+regexp2.Escape(escaped)+`(?!</mark>)`, regexp2.None)
		if err != nil {
			return "", fmt.Errorf("compile date pattern %q: %w", date, err)
		}
		replacement := "<mark>" + strings.ReplaceAll(escaped, "$", "$$") + "</mark>"
		markup, err = re.Replace(markup, replacement, -1, -1)
		if err != nil {
			return "", fmt.Errorf("merge date %q: %w", date, err)
		}
	}
	return markup, nil
}

// StructuralMerge combines entity and date spans over the original text.
// Entities take precedence: a date overlapping any entity, or an earlier
// date, is dropped. The result is sorted and non-overlapping.
func StructuralMerge(text string, entities []Span, dates []model.DateMatch) []Span {
	spans := make([]Span, 0, len(entities)+len(dates))
	spans = append(spans, entities...)

	for _, d := range dates {
		if d.Start < 0 || d.End <= d.Start || d.End > len(text) {
			continue
		}
		candidate := Span{Start: d.Start, End: d.End}
		if overlapsAny(candidate, spans) {
			continue
		}
		spans = append(spans, candidate)
	}
	return normalize(spans)
}

func overlapsAny(s Span, spans []Span) bool {
	for _, o := range spans {
		if s.Start < o.End && o.Start < s.End {
			return true
		}
	}
	return false
}

// Result is the outcome of a merge
type Result struct {
	HTML     string
	Entities int
	Dates    []string
	Strategy string
}

// Merger renders a parsed document and merges date matches into it
type Merger struct {
	renderer *Renderer
	strategy string
}

// NewMerger creates a merger for the given strategy; an empty strategy
// means textual
func NewMerger(strategy string) (*Merger, error) {
	switch strategy {
	case "":
		strategy = model.StrategyTextual
	case model.StrategyTextual, model.StrategyStructural:
	default:
		return nil, fmt.Errorf("unknown highlight strategy %q", strategy)
	}
	return &Merger{renderer: NewRenderer(), strategy: strategy}, nil
}

// NewTextualMerger creates a merger with the default textual strategy
func NewTextualMerger() *Merger {
	return &Merger{renderer: NewRenderer(), strategy: model.StrategyTextual}
}

// Strategy returns the merge strategy in use
func (m *Merger) Strategy() string {
	return m.strategy
}

// Merge renders entities over text and merges date matches into the markup
func (m *Merger) Merge(text string, entities []nlp.Entity, dates []model.DateMatch) (*Result, error) {
	entitySpans := EntitySpans(text, entities)
	result := &Result{Entities: len(entitySpans), Dates: []string{}, Strategy: m.strategy}

	if m.strategy == model.StrategyStructural {
		spans := StructuralMerge(text, entitySpans, dates)
		for _, s := range spans {
			if s.IsDate() {
				result.Dates = append(result.Dates, text[s.Start:s.End])
			}
		}
		result.HTML = m.renderer.Render(text, spans)
		return result, nil
	}

	for _, d := range dates {
		result.Dates = append(result.Dates, d.Text)
	}
	merged, err := TextualMerge(m.renderer.Render(text, entitySpans), result.Dates)
	if err != nil {
		return nil, err
	}
	result.HTML = merged
	return result, nil
}
