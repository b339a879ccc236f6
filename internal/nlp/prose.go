package nlp

import (
	"context"
	"fmt"
	"sync"

	"github.com/jdkato/prose/v2"
)

// The prose model is expensive to unpack, so it is loaded once on first
// use and shared read-only for the life of the process.
var (
	modelOnce   sync.Once
	sharedModel *prose.Model
	modelErr    error
)

func loadModel() (*prose.Model, error) {
	modelOnce.Do(func() {
		doc, err := prose.NewDocument("", prose.WithSegmentation(false))
		if err != nil {
			modelErr = fmt.Errorf("load prose model: %w", err)
			return
		}
		sharedModel = doc.Model
	})
	return sharedModel, modelErr
}

// ProseParser segments, tags and entity-tags English text with prose and
// derives dependency structure with LabelDependencies.
type ProseParser struct{}

// NewProseParser creates a prose-backed parser
func NewProseParser() *ProseParser {
	return &ProseParser{}
}

// Name returns the parser name
func (p *ProseParser) Name() string {
	return "prose"
}

// Parse analyzes text into dependency-labeled sentences and entities
func (p *ProseParser) Parse(ctx context.Context, text string) (*Document, error) {
	out := &Document{Text: text, Sentences: []Sentence{}, Entities: []Entity{}}
	if isBlank(text) {
		return out, nil
	}

	model, err := loadModel()
	if err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text, prose.UsingModel(model))
	if err != nil {
		return nil, fmt.Errorf("prose: %w", err)
	}

	sentLoc := &locator{text: text}
	for _, s := range doc.Sentences() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start, end := sentLoc.next(s.Text)
		sentence, err := p.parseSentence(model, s.Text, start)
		if err != nil {
			return nil, err
		}
		sentence.Start, sentence.End = start, end
		if len(sentence.Tokens) > 0 {
			out.Sentences = append(out.Sentences, sentence)
		}
	}

	entLoc := &locator{text: text}
	for _, e := range doc.Entities() {
		start, end := entLoc.next(e.Text)
		out.Entities = append(out.Entities, Entity{
			Text:  e.Text,
			Label: e.Label,
			Start: start,
			End:   end,
		})
	}

	return out, nil
}

// parseSentence tags one sentence without re-segmenting it. offset is the
// sentence's position in the source text, or -1 if it could not be located.
func (p *ProseParser) parseSentence(model *prose.Model, text string, offset int) (Sentence, error) {
	doc, err := prose.NewDocument(text,
		prose.UsingModel(model),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return Sentence{}, fmt.Errorf("prose: %w", err)
	}

	tokLoc := &locator{text: text}
	var tokens []Token
	for _, t := range doc.Tokens() {
		start, end := tokLoc.next(t.Text)
		if offset >= 0 && start >= 0 {
			start += offset
			end += offset
		} else {
			start, end = -1, -1
		}
		tokens = append(tokens, Token{
			Text:  t.Text,
			Tag:   t.Tag,
			Start: start,
			End:   end,
		})
	}

	root := LabelDependencies(tokens)
	return Sentence{Text: text, Tokens: tokens, Root: root}, nil
}
