package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const openAISystemPrompt = `You are a dependency parser for English contract text.
Return ONLY a JSON object of the form:
{"sentences":[{"text":"...","tokens":[{"text":"...","tag":"<Penn Treebank tag>","dep":"<ClearNLP label>","head":<index of head token within the sentence>}]}],
 "entities":[{"text":"...","label":"PERSON|ORG|GPE|DATE|MONEY|..."}]}
Rules:
- Sentences and tokens appear in document order and copy the source text exactly.
- The root token's head is its own index and its dep is "ROOT".
- Use ClearNLP labels (nsubj, nsubjpass, dobj, pobj, prep, det, amod, aux, ...).`

// OpenAIConfig configures the chat-completion parser
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout int // seconds
}

// OpenAIParser delegates parsing to an OpenAI-compatible chat model
type OpenAIParser struct {
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAIParser creates a new chat-completion backed parser
func NewOpenAIParser(config OpenAIConfig) (*OpenAIParser, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIParser{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the parser name
func (p *OpenAIParser) Name() string {
	return "openai"
}

type llmParse struct {
	Sentences []struct {
		Text   string `json:"text"`
		Tokens []struct {
			Text string `json:"text"`
			Tag  string `json:"tag"`
			Dep  string `json:"dep"`
			Head int    `json:"head"`
		} `json:"tokens"`
	} `json:"sentences"`
	Entities []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"entities"`
}

// Parse asks the model for a dependency parse of text
func (p *OpenAIParser) Parse(ctx context.Context, text string) (*Document, error) {
	if isBlank(text) {
		return &Document{Text: text, Sentences: []Sentence{}, Entities: []Entity{}}, nil
	}

	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openAISystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	var parsed llmParse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("decode parse: %w", err)
	}

	return buildDocument(text, parsed)
}

// buildDocument validates the model's parse and locates every span in text
func buildDocument(text string, parsed llmParse) (*Document, error) {
	out := &Document{Text: text, Sentences: []Sentence{}, Entities: []Entity{}}

	sentLoc := &locator{text: text}
	for si, s := range parsed.Sentences {
		if len(s.Tokens) == 0 {
			continue
		}

		sentence := Sentence{Text: s.Text, Root: -1}
		sentence.Start, sentence.End = sentLoc.next(s.Text)

		tokLoc := &locator{text: text}
		if sentence.Start >= 0 {
			tokLoc.cursor = sentence.Start
		}
		for i, t := range s.Tokens {
			if t.Head < 0 || t.Head >= len(s.Tokens) {
				return nil, fmt.Errorf("sentence %d: token %d (%q) has head %d out of range", si, i, t.Text, t.Head)
			}
			start, end := tokLoc.next(t.Text)
			sentence.Tokens = append(sentence.Tokens, Token{
				Index: i,
				Text:  t.Text,
				Tag:   t.Tag,
				Dep:   t.Dep,
				Head:  t.Head,
				Start: start,
				End:   end,
			})
			if t.Head == i && sentence.Root < 0 {
				sentence.Root = i
			}
		}
		if sentence.Root < 0 {
			return nil, fmt.Errorf("sentence %d has no root token", si)
		}
		out.Sentences = append(out.Sentences, sentence)
	}

	entLoc := &locator{text: text}
	for _, e := range parsed.Entities {
		start, end := entLoc.next(e.Text)
		out.Entities = append(out.Entities, Entity{Text: e.Text, Label: e.Label, Start: start, End: end})
	}

	return out, nil
}
