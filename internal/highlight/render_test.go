package highlight

import (
	"strings"
	"testing"

	"github.com/ppiankov/clausescope/internal/nlp"
)

func TestEntitySpans_SkipsUnlocatedAndOverlapping(t *testing.T) {
	text := "Acme Corp pays Jane Doe."
	entities := []nlp.Entity{
		{Text: "Jane Doe", Label: "PERSON", Start: 15, End: 23},
		{Text: "Acme Corp", Label: "ORG", Start: 0, End: 9},
		{Text: "Corp", Label: "ORG", Start: 5, End: 9},
		{Text: "Ghost", Label: "ORG", Start: -1, End: -1},
	}

	spans := EntitySpans(text, entities)
	if len(spans) != 2 {
		t.Fatalf("Expected 2 spans, got %+v", spans)
	}
	if spans[0].Label != "ORG" || spans[1].Label != "PERSON" {
		t.Errorf("Expected spans sorted by position, got %+v", spans)
	}
}

func TestRenderer_Render(t *testing.T) {
	text := "Acme & Co pays rent.\nMonthly."
	spans := []Span{{Start: 0, End: 9, Label: "ORG"}}

	out := NewRenderer().Render(text, spans)

	if !strings.HasPrefix(out, `<div class="entities"`) || !strings.HasSuffix(out, "</div>") {
		t.Errorf("Expected entities container, got %q", out)
	}
	if !strings.Contains(out, "Acme &amp; Co <span class=\"entity-label\"") {
		t.Errorf("Expected escaped entity text followed by label, got %q", out)
	}
	if !strings.Contains(out, ">ORG</span></mark>") {
		t.Errorf("Expected ORG label, got %q", out)
	}
	if !strings.Contains(out, "#7aecec") {
		t.Errorf("Expected ORG color, got %q", out)
	}
	if !strings.Contains(out, "rent.<br>Monthly.") {
		t.Errorf("Expected newline rendered as <br>, got %q", out)
	}
}

func TestRenderer_UnknownLabelAndDate(t *testing.T) {
	text := "Widget due March 1"
	spans := []Span{{Start: 0, End: 6, Label: "GADGET"}, {Start: 11, End: 18}}

	out := NewRenderer().Render(text, spans)
	if !strings.Contains(out, defaultColor) {
		t.Errorf("Expected default color for unknown label, got %q", out)
	}
	if !strings.Contains(out, "<mark>March 1</mark>") {
		t.Errorf("Expected plain date mark, got %q", out)
	}
}

func TestRenderer_NoSpans(t *testing.T) {
	out := NewRenderer().Render("The <lease> expires.", nil)
	if strings.Contains(out, "<mark") {
		t.Errorf("Expected no highlights, got %q", out)
	}
	if !strings.Contains(out, "The &lt;lease&gt; expires.") {
		t.Errorf("Expected escaped text, got %q", out)
	}
}
