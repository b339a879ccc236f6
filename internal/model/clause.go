package model

import "time"

// Clause is a naive subject-verb-object reading of one sentence
type Clause struct {
	Text     string `json:"text"`  // "<subject> <verb> <object>", surface tokens only
	Subject  string `json:"subject"`            // Subject token text
	Verb     string `json:"verb"`               // Sentence root token text
	Object   string `json:"object"`             // Object token text
	Sentence int    `json:"sentence,omitempty"` // Sentence index in source (0-based)
}

// DateMatch is a date expression found in the source text
type DateMatch struct {
	Text  string    `json:"text"`  // Matched substring as it appears in the text
	Time  time.Time `json:"time"`  // Parsed calendar value
	Start int       `json:"start"` // Byte offset of the match
	End   int       `json:"end"`   // Byte offset just past the match
}
