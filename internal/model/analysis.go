package model

import "time"

// Analysis is the result of running clause and date extraction over one text
type Analysis struct {
	Source     string      `json:"source,omitempty"` // File path, URL or "stdin"
	Parser     string      `json:"parser"`           // Parser backend that produced the parse
	Sentences  int         `json:"sentences"`        // Number of sentences the parser found
	Clauses    []Clause    `json:"clauses"`
	Dates      []DateMatch `json:"dates"`
	AnalyzedAt time.Time   `json:"analyzed_at"`
}

// ClauseTexts returns the clause strings in document order
func (a *Analysis) ClauseTexts() []string {
	texts := make([]string, 0, len(a.Clauses))
	for _, c := range a.Clauses {
		texts = append(texts, c.Text)
	}
	return texts
}

// DateTexts returns the matched date substrings in the order the searcher reported them
func (a *Analysis) DateTexts() []string {
	texts := make([]string, 0, len(a.Dates))
	for _, d := range a.Dates {
		texts = append(texts, d.Text)
	}
	return texts
}

// Highlight is an inline-markup rendering of entities and dates
type Highlight struct {
	Source   string   `json:"source,omitempty"`
	HTML     string   `json:"html"`
	Entities int      `json:"entities"` // Entity spans rendered by the parser's NER
	Dates    []string `json:"dates"`    // Date substrings merged into the markup
	Strategy string   `json:"strategy"` // "textual" or "structural"
}
