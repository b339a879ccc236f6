// Package highlight renders entity and date annotations as inline markup.
package highlight

import (
	"html"
	"sort"
	"strings"

	"github.com/ppiankov/clausescope/internal/nlp"
)

// labelColors follows the displaCy palette so output looks familiar to
// anyone who has read spaCy visualizations
var labelColors = map[string]string{
	"ORG":         "#7aecec",
	"PRODUCT":     "#bfeeb7",
	"GPE":         "#feca74",
	"LOC":         "#ff9561",
	"PERSON":      "#aa9cfc",
	"NORP":        "#c887fb",
	"FAC":         "#9cc9cc",
	"EVENT":       "#ffeb80",
	"LAW":         "#ff8197",
	"LANGUAGE":    "#ff8197",
	"WORK_OF_ART": "#f0d0ff",
	"DATE":        "#bfe1d9",
	"TIME":        "#bfe1d9",
	"MONEY":       "#e4e7d2",
	"QUANTITY":    "#e4e7d2",
	"ORDINAL":     "#e4e7d2",
	"CARDINAL":    "#e4e7d2",
	"PERCENT":     "#e4e7d2",
}

const defaultColor = "#ddd"

// Span is a highlighted byte range of the source text. An empty Label
// marks a date highlight.
type Span struct {
	Start int
	End   int
	Label string
}

// IsDate reports whether the span is a date highlight
func (s Span) IsDate() bool {
	return s.Label == ""
}

// EntitySpans converts located entities into sorted, non-overlapping spans.
// Entities the parser could not place in text are skipped, and of two
// overlapping entities the earlier one wins.
func EntitySpans(text string, entities []nlp.Entity) []Span {
	spans := make([]Span, 0, len(entities))
	for _, e := range entities {
		if e.Start < 0 || e.End <= e.Start || e.End > len(text) {
			continue
		}
		label := e.Label
		if label == "" {
			label = "MISC"
		}
		spans = append(spans, Span{Start: e.Start, End: e.End, Label: label})
	}
	return normalize(spans)
}

func normalize(spans []Span) []Span {
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})

	out := spans[:0]
	lastEnd := 0
	for _, s := range spans {
		if s.Start < lastEnd {
			continue
		}
		out = append(out, s)
		lastEnd = s.End
	}
	return out
}

// Renderer writes displaCy-style entity markup
type Renderer struct {
	colors map[string]string
}

// NewRenderer creates a renderer with the default label palette
func NewRenderer() *Renderer {
	return &Renderer{colors: labelColors}
}

// Render writes text with every span wrapped in a <mark> element. Spans
// must be sorted and non-overlapping, as EntitySpans returns them.
func (r *Renderer) Render(text string, spans []Span) string {
	var b strings.Builder
	b.WriteString(`<div class="entities" style="line-height: 2.5; direction: ltr">`)

	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(text) {
			continue
		}
		writeText(&b, text[pos:s.Start])
		if s.IsDate() {
			b.WriteString("<mark>")
			writeText(&b, text[s.Start:s.End])
			b.WriteString("</mark>")
		} else {
			r.writeEntity(&b, text[s.Start:s.End], s.Label)
		}
		pos = s.End
	}
	writeText(&b, text[pos:])

	b.WriteString("</div>")
	return b.String()
}

func (r *Renderer) writeEntity(b *strings.Builder, text, label string) {
	color, ok := r.colors[label]
	if !ok {
		color = defaultColor
	}
	b.WriteString(`<mark class="entity" style="background: `)
	b.WriteString(color)
	b.WriteString(`; padding: 0.45em 0.6em; margin: 0 0.25em; line-height: 1; border-radius: 0.35em;">`)
	writeText(b, text)
	b.WriteString(` <span class="entity-label" style="font-size: 0.8em; font-weight: bold; line-height: 1; border-radius: 0.35em; vertical-align: middle; margin-left: 0.5rem">`)
	b.WriteString(html.EscapeString(label))
	b.WriteString("</span></mark>")
}

// writeText escapes text and turns newlines into line breaks
func writeText(b *strings.Builder, text string) {
	b.WriteString(strings.ReplaceAll(html.EscapeString(text), "\n", "<br>"))
}
