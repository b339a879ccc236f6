package extract

import (
	"strings"

	"github.com/ppiankov/clausescope/internal/model"
	"github.com/ppiankov/clausescope/internal/nlp"
)

// ClauseExtractor reads one subject-verb-object clause per sentence off a
// dependency parse
type ClauseExtractor struct {
	subjectMarker string
	objectMarker  string
}

// NewClauseExtractor creates a clause extractor matching labels that
// contain "subj" and "obj"
func NewClauseExtractor() *ClauseExtractor {
	return &ClauseExtractor{
		subjectMarker: "subj",
		objectMarker:  "obj",
	}
}

// Extract returns clauses in document order. For each sentence the first
// root child (in parser order) whose label contains the subject marker and
// the first whose label contains the object marker are joined with the
// root as "<subject> <root> <object>". Compound subjects and objects are
// therefore truncated to their first constituent. Sentences missing either
// contribute nothing.
func (e *ClauseExtractor) Extract(doc *nlp.Document) []model.Clause {
	clauses := []model.Clause{}
	if doc == nil {
		return clauses
	}

	for i, sent := range doc.Sentences {
		root, ok := sent.RootToken()
		if !ok {
			continue
		}

		var subject, object *nlp.Token
		for _, child := range sent.Children(root.Index) {
			if subject == nil && strings.Contains(child.Dep, e.subjectMarker) {
				c := child
				subject = &c
			}
			if object == nil && strings.Contains(child.Dep, e.objectMarker) {
				c := child
				object = &c
			}
		}
		if subject == nil || object == nil {
			continue
		}

		clauses = append(clauses, model.Clause{
			Text:     subject.Text + " " + root.Text + " " + object.Text,
			Subject:  subject.Text,
			Verb:     root.Text,
			Object:   object.Text,
			Sentence: i,
		})
	}

	return clauses
}
