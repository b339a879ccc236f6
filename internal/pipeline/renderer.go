package pipeline

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/ppiankov/clausescope/internal/model"
)

// Output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Renderer writes analyses and highlights in the supported output formats
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderAnalysis writes an analysis as text, JSON or Markdown
func (r *Renderer) RenderAnalysis(w io.Writer, a *model.Analysis, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, a)
	case FormatMarkdown:
		return r.analysisMarkdown(w, a)
	case FormatText, "":
		return r.analysisText(w, a)
	default:
		return fmt.Errorf("unsupported format %q for analysis", format)
	}
}

// RenderHighlight writes a highlight as JSON, a standalone HTML page, or
// the bare markup for text and Markdown
func (r *Renderer) RenderHighlight(w io.Writer, h *model.Highlight, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, h)
	case FormatHTML:
		return r.highlightPage(w, h)
	case FormatText, FormatMarkdown, "":
		_, err := fmt.Fprintln(w, h.HTML)
		return err
	default:
		return fmt.Errorf("unsupported format %q for highlight", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func (r *Renderer) analysisText(w io.Writer, a *model.Analysis) error {
	var b strings.Builder
	if a.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", a.Source)
	}

	b.WriteString("Extracted Clauses\n")
	if len(a.Clauses) == 0 {
		b.WriteString("  No clauses found.\n")
	}
	for _, c := range a.Clauses {
		fmt.Fprintf(&b, "  - %s\n", c.Text)
	}

	b.WriteString("\nExtracted Dates\n")
	if len(a.Dates) == 0 {
		b.WriteString("  No dates found.\n")
	}
	for _, d := range a.Dates {
		fmt.Fprintf(&b, "  - %s (%s)\n", d.Text, d.Time.Format("2006-01-02"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) analysisMarkdown(w io.Writer, a *model.Analysis) error {
	var b strings.Builder

	title := "Contract Analysis"
	if a.Source != "" {
		title += ": " + a.Source
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Parser: `%s`\n", a.Parser)
	fmt.Fprintf(&b, "- Sentences: %d\n", a.Sentences)
	fmt.Fprintf(&b, "- Analyzed: %s\n\n", a.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Clauses\n\n")
	if len(a.Clauses) == 0 {
		b.WriteString("_No clauses found._\n")
	} else {
		b.WriteString("| # | Subject | Verb | Object | Clause |\n")
		b.WriteString("|---|---------|------|--------|--------|\n")
		for i, c := range a.Clauses {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", i+1,
				mdCell(c.Subject), mdCell(c.Verb), mdCell(c.Object), mdCell(c.Text))
		}
	}

	b.WriteString("\n## Dates\n\n")
	if len(a.Dates) == 0 {
		b.WriteString("_No dates found._\n")
	} else {
		b.WriteString("| # | Text | Resolved |\n")
		b.WriteString("|---|------|----------|\n")
		for i, d := range a.Dates {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, mdCell(d.Text), d.Time.Format("2006-01-02"))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// mdCell keeps a value from breaking a Markdown table row
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; padding: 0 1em; }
mark { background-color: #DFFF00; color: #000000; padding: 0.2em 0.4em; border-radius: 0.3em; }
mark.entity { color: inherit; }
</style>
</head>
<body>
<h1>%s</h1>
%s
</body>
</html>
`

func (r *Renderer) highlightPage(w io.Writer, h *model.Highlight) error {
	title := "ClauseScope Highlights"
	if h.Source != "" {
		title += ": " + h.Source
	}
	title = html.EscapeString(title)
	_, err := fmt.Fprintf(w, pageTemplate, title, title, h.HTML)
	return err
}
