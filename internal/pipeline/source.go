package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/clausescope/internal/extract"
)

// Input is contract text ready for analysis
type Input struct {
	Name string // file path, URL or "stdin"
	Text string
}

// SourceLoader reads contract text from files, stdin or URLs
type SourceLoader struct {
	fetcher *Fetcher
	stdin   io.Reader
}

// NewSourceLoader creates a loader; stdin is read for the "-" reference
func NewSourceLoader(fetcher *Fetcher, stdin io.Reader) *SourceLoader {
	return &SourceLoader{fetcher: fetcher, stdin: stdin}
}

// IsURL reports whether ref names an http(s) resource
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load resolves ref to text. HTML documents are reduced to their visible text.
func (l *SourceLoader) Load(ctx context.Context, ref string) (*Input, error) {
	switch {
	case ref == "-":
		if l.stdin == nil {
			return nil, fmt.Errorf("stdin is not available")
		}
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return toInput("stdin", string(data), "")

	case IsURL(ref):
		if l.fetcher == nil {
			return nil, fmt.Errorf("fetch %s: no fetcher configured", ref)
		}
		result, err := l.fetcher.FetchWithRetry(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ref, err)
		}
		return toInput(result.FinalURL, result.Body, result.ContentType)

	default:
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ref, err)
		}
		contentType := ""
		switch strings.ToLower(filepath.Ext(ref)) {
		case ".html", ".htm":
			contentType = "text/html"
		}
		return toInput(ref, string(data), contentType)
	}
}

func toInput(name, body, contentType string) (*Input, error) {
	if strings.Contains(contentType, "html") || extract.LooksLikeHTML(body) {
		text, err := extract.VisibleText(body)
		if err != nil {
			return nil, fmt.Errorf("extract text from %s: %w", name, err)
		}
		return &Input{Name: name, Text: text}, nil
	}
	return &Input{Name: name, Text: body}, nil
}
