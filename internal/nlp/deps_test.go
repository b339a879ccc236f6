package nlp

import (
	"strings"
	"testing"
)

// tagged builds tokens from "word/TAG word/TAG ..." notation
func tagged(s string) []Token {
	var tokens []Token
	for _, field := range strings.Fields(s) {
		idx := strings.LastIndex(field, "/")
		tokens = append(tokens, Token{Text: field[:idx], Tag: field[idx+1:], Start: -1, End: -1})
	}
	return tokens
}

func depOf(t *testing.T, tokens []Token, text string) Token {
	t.Helper()
	for _, tok := range tokens {
		if tok.Text == text {
			return tok
		}
	}
	t.Fatalf("token %q not found", text)
	return Token{}
}

func TestLabelDependencies_SubjectVerbObject(t *testing.T) {
	tokens := tagged("The/DT tenant/NN shall/MD pay/VB rent/NN ./.")
	root := LabelDependencies(tokens)

	if tokens[root].Text != "pay" {
		t.Fatalf("expected root 'pay', got %q", tokens[root].Text)
	}
	if tokens[root].Head != root || tokens[root].Dep != DepRoot {
		t.Errorf("root should head itself with label ROOT, got head=%d dep=%q", tokens[root].Head, tokens[root].Dep)
	}

	checks := []struct {
		text string
		dep  string
		head string
	}{
		{"tenant", DepNsubj, "pay"},
		{"shall", DepAux, "pay"},
		{"rent", DepDobj, "pay"},
		{"The", DepDet, "tenant"},
		{".", DepPunct, "pay"},
	}
	for _, c := range checks {
		tok := depOf(t, tokens, c.text)
		if tok.Dep != c.dep {
			t.Errorf("%q: expected dep %q, got %q", c.text, c.dep, tok.Dep)
		}
		if tokens[tok.Head].Text != c.head {
			t.Errorf("%q: expected head %q, got %q", c.text, c.head, tokens[tok.Head].Text)
		}
	}
}

func TestLabelDependencies_Intransitive(t *testing.T) {
	tokens := tagged("The/DT lease/NN expires/VBZ ./.")
	root := LabelDependencies(tokens)

	if tokens[root].Text != "expires" {
		t.Fatalf("expected root 'expires', got %q", tokens[root].Text)
	}
	for _, tok := range tokens {
		if strings.Contains(tok.Dep, "obj") {
			t.Errorf("expected no object, got %q labeled %q", tok.Text, tok.Dep)
		}
	}
	if depOf(t, tokens, "lease").Dep != DepNsubj {
		t.Errorf("expected 'lease' to be nsubj")
	}
}

func TestLabelDependencies_Copula(t *testing.T) {
	tokens := tagged("Payment/NN is/VBZ due/JJ on/IN January/NNP 5/CD ,/, 2025/CD ./.")
	root := LabelDependencies(tokens)

	if tokens[root].Text != "is" {
		t.Fatalf("expected root 'is', got %q", tokens[root].Text)
	}
	if got := depOf(t, tokens, "due").Dep; got != DepAcomp {
		t.Errorf("expected 'due' acomp, got %q", got)
	}
	january := depOf(t, tokens, "January")
	if january.Dep != DepPobj || tokens[january.Head].Text != "on" {
		t.Errorf("expected 'January' pobj of 'on', got %q head %q", january.Dep, tokens[january.Head].Text)
	}
}

func TestLabelDependencies_PrepositionalSubjectModifier(t *testing.T) {
	tokens := tagged("The/DT term/NN of/IN the/DT lease/NN begins/VBZ on/IN March/NNP 1/CD ./.")
	LabelDependencies(tokens)

	if got := depOf(t, tokens, "term").Dep; got != DepNsubj {
		t.Errorf("expected 'term' nsubj, got %q", got)
	}
	lease := depOf(t, tokens, "lease")
	if lease.Dep != DepPobj || tokens[lease.Head].Text != "of" {
		t.Errorf("expected 'lease' pobj of 'of', got %q head %q", lease.Dep, tokens[lease.Head].Text)
	}
	of := depOf(t, tokens, "of")
	if tokens[of.Head].Text != "term" {
		t.Errorf("expected 'of' attached to 'term', got %q", tokens[of.Head].Text)
	}
}

func TestLabelDependencies_CoordinatedSubject(t *testing.T) {
	tokens := tagged("Landlord/NNP and/CC Tenant/NNP shall/MD sign/VB the/DT lease/NN ./.")
	root := LabelDependencies(tokens)

	landlord := depOf(t, tokens, "Landlord")
	if landlord.Dep != DepNsubj || landlord.Head != root {
		t.Errorf("expected first conjunct 'Landlord' as nsubj of root, got %q", landlord.Dep)
	}
	tenant := depOf(t, tokens, "Tenant")
	if tenant.Dep != DepConj || tokens[tenant.Head].Text != "Landlord" {
		t.Errorf("expected 'Tenant' conj of 'Landlord', got %q head %q", tenant.Dep, tokens[tenant.Head].Text)
	}
}

func TestLabelDependencies_LeadingSubordinateClause(t *testing.T) {
	tokens := tagged("If/IN the/DT tenant/NN fails/VBZ to/TO pay/VB rent/NN ,/, the/DT landlord/NN may/MD terminate/VB the/DT lease/NN ./.")
	root := LabelDependencies(tokens)

	if tokens[root].Text != "terminate" {
		t.Fatalf("expected root 'terminate', got %q", tokens[root].Text)
	}
	if got := depOf(t, tokens, "landlord"); got.Dep != DepNsubj || got.Head != root {
		t.Errorf("expected 'landlord' nsubj of root, got %q", got.Dep)
	}
	if got := depOf(t, tokens, "lease"); got.Dep != DepDobj || got.Head != root {
		t.Errorf("expected 'lease' dobj of root, got %q", got.Dep)
	}

	rent := depOf(t, tokens, "rent")
	if rent.Head == root {
		t.Errorf("'rent' belongs to the subordinate clause, not the root")
	}
	if got := depOf(t, tokens, "If").Dep; got != DepMark {
		t.Errorf("expected 'If' mark, got %q", got)
	}
}

func TestLabelDependencies_RelativeClause(t *testing.T) {
	tokens := tagged("The/DT tenant/NN who/WP signed/VBD the/DT lease/NN shall/MD pay/VB rent/NN ./.")
	root := LabelDependencies(tokens)

	if tokens[root].Text != "pay" {
		t.Fatalf("expected root 'pay', got %q", tokens[root].Text)
	}
	if got := depOf(t, tokens, "tenant"); got.Dep != DepNsubj || got.Head != root {
		t.Errorf("expected 'tenant' nsubj of root, got %q", got.Dep)
	}
	signed := depOf(t, tokens, "signed")
	if signed.Dep != DepRelcl {
		t.Errorf("expected 'signed' relcl, got %q", signed.Dep)
	}
	lease := depOf(t, tokens, "lease")
	if lease.Dep != DepDobj || tokens[lease.Head].Text != "signed" {
		t.Errorf("expected 'lease' dobj of 'signed', got %q head %q", lease.Dep, tokens[lease.Head].Text)
	}
}

func TestLabelDependencies_Passive(t *testing.T) {
	tokens := tagged("The/DT rent/NN will/MD be/VB paid/VBN by/IN the/DT tenant/NN ./.")
	root := LabelDependencies(tokens)

	if tokens[root].Text != "paid" {
		t.Fatalf("expected root 'paid', got %q", tokens[root].Text)
	}
	if got := depOf(t, tokens, "rent").Dep; got != DepNsubjPass {
		t.Errorf("expected 'rent' nsubjpass, got %q", got)
	}
	if got := depOf(t, tokens, "be").Dep; got != DepAuxPass {
		t.Errorf("expected 'be' auxpass, got %q", got)
	}
	if got := depOf(t, tokens, "tenant").Dep; got != DepPobj {
		t.Errorf("expected 'tenant' pobj, got %q", got)
	}
}

func TestLabelDependencies_Verbless(t *testing.T) {
	tokens := tagged("Section/NN 4/CD ./.")
	root := LabelDependencies(tokens)

	if root != 0 {
		t.Errorf("expected verbless sentence to root at first token, got %d", root)
	}
	for _, tok := range tokens {
		if tok.Dep == "" || tok.Head < 0 {
			t.Errorf("token %q left unlabeled", tok.Text)
		}
	}
}

func TestLabelDependencies_Empty(t *testing.T) {
	if root := LabelDependencies(nil); root != -1 {
		t.Errorf("expected -1 for empty sentence, got %d", root)
	}
}

func TestLabelDependencies_EveryTokenLabeled(t *testing.T) {
	sentences := []string{
		"The/DT tenant/NN shall/MD not/RB assign/VB this/DT lease/NN without/IN consent/NN ./.",
		"Tenant/NNP 's/POS obligations/NNS survive/VBP termination/NN ./.",
		"Either/DT party/NN may/MD terminate/VB the/DT agreement/NN and/CC the/DT landlord/NN shall/MD return/VB the/DT deposit/NN ./.",
	}
	for _, s := range sentences {
		tokens := tagged(s)
		root := LabelDependencies(tokens)
		if root < 0 {
			t.Fatalf("%q: no root", s)
		}
		roots := 0
		for _, tok := range tokens {
			if tok.Dep == "" || tok.Head < 0 || tok.Head >= len(tokens) {
				t.Errorf("%q: token %q has dep=%q head=%d", s, tok.Text, tok.Dep, tok.Head)
			}
			if tok.Dep == DepRoot {
				roots++
			}
		}
		if roots != 1 {
			t.Errorf("%q: expected exactly one ROOT, got %d", s, roots)
		}
	}
}

func TestSentence_Children(t *testing.T) {
	tokens := tagged("The/DT tenant/NN shall/MD pay/VB rent/NN ./.")
	root := LabelDependencies(tokens)
	sent := Sentence{Tokens: tokens, Root: root}

	var texts []string
	for _, c := range sent.Children(root) {
		texts = append(texts, c.Text)
	}
	if got := strings.Join(texts, " "); got != "tenant shall rent ." {
		t.Errorf("expected children in token order, got %q", got)
	}

	rootTok, ok := sent.RootToken()
	if !ok || rootTok.Text != "pay" {
		t.Errorf("expected root token 'pay', got %q (ok=%v)", rootTok.Text, ok)
	}

	if _, ok := (Sentence{Root: -1}).RootToken(); ok {
		t.Error("expected no root token for empty sentence")
	}
}

func TestLabelDependencies_SymbolsAreNeverArguments(t *testing.T) {
	tests := []struct {
		name    string
		tagged  string
		root    string
		subject string
		object  string
	}{
		{
			name:    "quoted defined term",
			tagged:  `Tenant/NNP (/( the/DT "/NNP Lessee/NNP "/NNP )/) shall/MD pay/VB rent/NN ./.`,
			root:    "pay",
			subject: "Tenant",
			object:  "rent",
		},
		{
			name:    "dash aside",
			tagged:  "The/DT seller/NN —/NNP a/DT Delaware/NNP LLC/NNP —/NNP shall/MD deliver/VB goods/NNS ./.",
			root:    "deliver",
			subject: "seller",
			object:  "goods",
		},
		{
			name:   "verbless with dashes",
			tagged: "Café/NNP —/NNP naïve/JJ résumé/NN —/NNP €100/CD ./.",
			root:   "Café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tagged(tt.tagged)
			root := LabelDependencies(tokens)
			if tokens[root].Text != tt.root {
				t.Fatalf("expected root %q, got %q", tt.root, tokens[root].Text)
			}

			var subject, object string
			for _, tok := range tokens {
				if tok.Head != root || tok.Index == root {
					continue
				}
				if strings.Contains(tok.Dep, "subj") && subject == "" {
					subject = tok.Text
				}
				if strings.Contains(tok.Dep, "obj") && object == "" {
					object = tok.Text
				}
			}
			if subject != tt.subject {
				t.Errorf("expected subject %q, got %q", tt.subject, subject)
			}
			if object != tt.object {
				t.Errorf("expected object %q, got %q", tt.object, object)
			}

			for _, tok := range tokens {
				if isPunct(tok) && tok.Dep != DepPunct {
					t.Errorf("%q: expected punct, got %q", tok.Text, tok.Dep)
				}
			}
		})
	}
}

func TestIsPunct(t *testing.T) {
	tests := []struct {
		tok  Token
		want bool
	}{
		{Token{Text: ".", Tag: "."}, true},
		{Token{Text: "—", Tag: "NNP"}, true},
		{Token{Text: `"`, Tag: "NNP"}, true},
		{Token{Text: "€100", Tag: "CD"}, false},
		{Token{Text: "résumé", Tag: "NN"}, false},
		{Token{Text: "3", Tag: "CD"}, false},
	}

	for _, tt := range tests {
		if got := isPunct(tt.tok); got != tt.want {
			t.Errorf("isPunct(%q/%s) = %v, want %v", tt.tok.Text, tt.tok.Tag, got, tt.want)
		}
	}
}
