// Package nlp wraps the parsing and named-entity collaborators behind a
// single Parser interface that yields dependency-labeled sentences.
package nlp

import (
	"context"
	"strings"
)

// Token is a single word or punctuation mark within a sentence
type Token struct {
	Index int    `json:"index"` // Position within the sentence
	Text  string `json:"text"`  // Surface text
	Tag   string `json:"tag"`   // Penn Treebank part-of-speech tag
	Dep   string `json:"dep"`   // Dependency label relative to Head
	Head  int    `json:"head"`  // Index of the head token; the root points at itself
	Start int    `json:"start"` // Byte offset in the source text, -1 if unknown
	End   int    `json:"end"`
}

// Sentence is a contiguous span of tokens with one root
type Sentence struct {
	Text   string  `json:"text"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Tokens []Token `json:"tokens"`
	Root   int     `json:"root"`
}

// RootToken returns the sentence root. ok is false for a sentence without tokens.
func (s Sentence) RootToken() (Token, bool) {
	if s.Root < 0 || s.Root >= len(s.Tokens) {
		return Token{}, false
	}
	return s.Tokens[s.Root], true
}

// Children returns the direct dependents of token i in left-to-right order
func (s Sentence) Children(i int) []Token {
	var children []Token
	for _, tok := range s.Tokens {
		if tok.Index != i && tok.Head == i {
			children = append(children, tok)
		}
	}
	return children
}

// Entity is a named-entity span
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Document is the parse of one input text
type Document struct {
	Text      string     `json:"text"`
	Sentences []Sentence `json:"sentences"`
	Entities  []Entity   `json:"entities"`
}

// Parser segments, tags, dependency-labels and entity-tags text
type Parser interface {
	// Name returns the backend name
	Name() string

	// Parse analyzes text. Empty text yields an empty Document.
	Parse(ctx context.Context, text string) (*Document, error)
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// locator finds successive substrings of a source text
type locator struct {
	text   string
	cursor int
}

// next returns the offsets of the next occurrence of s at or after the
// cursor and advances past it. Returns -1, -1 when s cannot be found.
func (l *locator) next(s string) (int, int) {
	if s == "" {
		return -1, -1
	}
	idx := strings.Index(l.text[l.cursor:], s)
	if idx < 0 {
		return -1, -1
	}
	start := l.cursor + idx
	end := start + len(s)
	l.cursor = end
	return start, end
}
