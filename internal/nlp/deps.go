package nlp

import (
	"strings"
	"unicode"
)

// Dependency labels, following the ClearNLP/spaCy English label set
const (
	DepRoot      = "ROOT"
	DepNsubj     = "nsubj"
	DepNsubjPass = "nsubjpass"
	DepDobj      = "dobj"
	DepPobj      = "pobj"
	DepAttr      = "attr"
	DepAcomp     = "acomp"
	DepAux       = "aux"
	DepAuxPass   = "auxpass"
	DepNeg       = "neg"
	DepAdvmod    = "advmod"
	DepPrep      = "prep"
	DepPrt       = "prt"
	DepPunct     = "punct"
	DepDet       = "det"
	DepAmod      = "amod"
	DepPoss      = "poss"
	DepCase      = "case"
	DepNummod    = "nummod"
	DepCompound  = "compound"
	DepConj      = "conj"
	DepCC        = "cc"
	DepMark      = "mark"
	DepAdvcl     = "advcl"
	DepRelcl     = "relcl"
	DepXcomp     = "xcomp"
	DepDep       = "dep"
)

var (
	beForms = map[string]bool{
		"be": true, "is": true, "are": true, "was": true, "were": true,
		"been": true, "being": true, "am": true, "'s": true, "'re": true, "'m": true,
	}
	auxWords = map[string]bool{
		"have": true, "has": true, "had": true, "having": true,
		"do": true, "does": true, "did": true, "'ve": true, "'d": true,
	}
	subordinators = map[string]bool{
		"if": true, "when": true, "unless": true, "although": true, "though": true,
		"because": true, "while": true, "after": true, "before": true, "once": true,
		"until": true, "whereas": true, "provided": true, "where": true, "upon": true,
	}
)

// phrase is a maximal noun-phrase run [start, end) headed by its rightmost nominal
type phrase struct {
	start, end int
	head       int
}

// LabelDependencies assigns Dep and Head to every token of one sentence and
// returns the root index (-1 for an empty sentence). Only Text and Tag are
// read. The labeling is a deterministic shallow parse over Penn tags:
// good enough to find the main predicate and its subject/object, not a
// full syntactic analysis.
func LabelDependencies(tokens []Token) int {
	if len(tokens) == 0 {
		return -1
	}
	for i := range tokens {
		tokens[i].Index = i
		tokens[i].Head = -1
		tokens[i].Dep = ""
	}

	l := &labeler{tokens: tokens, aside: asides(tokens)}
	l.from = mainClauseStart(tokens)
	l.root, l.chainStart = findRoot(tokens, l.from)
	l.set(l.root, DepRoot, l.root)
	l.labelChain(l.chainStart, l.root)

	l.phrases = nounPhrases(tokens)
	for _, p := range l.phrases {
		l.labelPhraseInternals(p)
	}
	l.labelPrepositions()
	l.labelSubject()

	for _, v := range l.mainVerbs() {
		if v != l.root {
			l.labelSecondaryVerb(v)
		}
		l.labelObject(v)
	}

	l.labelRest()
	return l.root
}

type labeler struct {
	tokens     []Token
	phrases    []phrase
	aside      []bool // inside parentheses or a pair of dashes
	from       int // first token of the main clause
	root       int
	chainStart int // first auxiliary/modal of the root's verb chain
}

func (l *labeler) set(i int, dep string, head int) {
	if i < 0 || i >= len(l.tokens) || l.tokens[i].Dep != "" {
		return
	}
	l.tokens[i].Dep = dep
	l.tokens[i].Head = head
}

func (l *labeler) labelChain(start, verb int) {
	passive := l.tokens[verb].Tag == "VBN"
	for j := start; j < verb; j++ {
		t := l.tokens[j]
		lower := strings.ToLower(t.Text)
		switch {
		case lower == "not" || lower == "n't":
			l.set(j, DepNeg, verb)
		case t.Tag == "MD":
			l.set(j, DepAux, verb)
		case beForms[lower] && passive:
			l.set(j, DepAuxPass, verb)
		case isVerbTag(t.Tag):
			l.set(j, DepAux, verb)
		default:
			l.set(j, DepAdvmod, verb)
		}
	}
}

func (l *labeler) labelPhraseInternals(p phrase) {
	for k := p.start; k < p.end; k++ {
		if k == p.head {
			continue
		}
		tag := l.tokens[k].Tag
		switch {
		case tag == "DT" || tag == "PDT":
			l.set(k, DepDet, p.head)
		case strings.HasPrefix(tag, "JJ"):
			l.set(k, DepAmod, p.head)
		case tag == "PRP$":
			l.set(k, DepPoss, p.head)
		case tag == "POS":
			l.set(k, DepCase, k-1)
		case tag == "CD":
			l.set(k, DepNummod, p.head)
		case k+1 < p.end && l.tokens[k+1].Tag == "POS":
			l.set(k, DepPoss, p.head)
		default:
			l.set(k, DepCompound, p.head)
		}
	}
}

// labelPrepositions marks phrases governed by a preposition as pobj and
// attaches the preposition to the phrase or verb on its left.
func (l *labeler) labelPrepositions() {
	for _, p := range l.phrases {
		prev := p.start - 1
		if prev < 0 || !l.isPrepAt(prev) {
			continue
		}
		l.set(p.head, DepPobj, prev)
		l.set(prev, DepPrep, l.attachmentFor(prev))
	}
}

// attachmentFor picks the head of a preposition: the noun phrase ending
// right before it, else the closest verb before it, else the root.
func (l *labeler) attachmentFor(prep int) int {
	for _, p := range l.phrases {
		if p.end == prep {
			return p.head
		}
	}
	for j := prep - 1; j >= 0; j-- {
		if isVerbTag(l.tokens[j].Tag) && !l.isAuxUse(j) {
			return j
		}
	}
	return l.root
}

func (l *labeler) labelSubject() {
	var subject *phrase
	for i := range l.phrases {
		p := l.phrases[i]
		if p.start < l.from || p.end > l.chainStart || l.aside[p.start] {
			continue
		}
		if l.governed(p) {
			continue
		}
		subject = &l.phrases[i]
	}
	if subject == nil {
		return
	}

	// Coordinated subjects resolve to the first conjunct
	for {
		cc := subject.start - 1
		if cc <= l.from || l.tokens[cc].Tag != "CC" {
			break
		}
		end := cc
		if l.tokens[end-1].Tag == "," {
			end--
		}
		prev := l.phraseEndingAt(end)
		if prev == nil || prev.start < l.from || l.governed(*prev) {
			break
		}
		l.set(subject.head, DepConj, prev.head)
		l.set(cc, DepCC, prev.head)
		subject = prev
	}

	dep := DepNsubj
	if l.tokens[l.root].Tag == "VBN" && l.chainHasBe() {
		dep = DepNsubjPass
	}
	l.set(subject.head, dep, l.root)
}

// governed reports whether a phrase is the object of a preposition or verb
func (l *labeler) governed(p phrase) bool {
	prev := p.start - 1
	if prev < 0 {
		return false
	}
	return l.isPrepAt(prev) || (isVerbTag(l.tokens[prev].Tag) && !l.isAuxUse(prev))
}

// isPrepAt reports whether token i is a preposition. A leading
// subordinator ("If", tagged IN) is not.
func (l *labeler) isPrepAt(i int) bool {
	if i == 0 && l.from > 0 {
		return false
	}
	return isPrepTag(l.tokens[i].Tag)
}

func (l *labeler) phraseEndingAt(end int) *phrase {
	for i := range l.phrases {
		if l.phrases[i].end == end {
			return &l.phrases[i]
		}
	}
	return nil
}

func (l *labeler) chainHasBe() bool {
	for j := l.chainStart; j < l.root; j++ {
		if beForms[strings.ToLower(l.tokens[j].Text)] {
			return true
		}
	}
	return false
}

// mainVerbs returns every verb that is not acting as an auxiliary
func (l *labeler) mainVerbs() []int {
	var verbs []int
	for i, t := range l.tokens {
		if isVerbTag(t.Tag) && !l.isAuxUse(i) {
			verbs = append(verbs, i)
		}
	}
	return verbs
}

func (l *labeler) labelSecondaryVerb(v int) {
	start, _ := verbChain(l.tokens, v)
	l.labelChain(start, v)

	prev := start - 1
	switch {
	case prev >= 0 && l.tokens[prev].Tag == "TO":
		l.set(prev, DepAux, v)
		l.set(v, DepXcomp, l.verbBefore(prev))
		return
	case prev >= 0 && isWhTag(l.tokens[prev].Tag):
		head := l.root
		if p := l.phraseEndingAt(prev); p != nil {
			head = p.head
		}
		l.set(prev, DepNsubj, v)
		l.set(v, DepRelcl, head)
		return
	case v < l.from:
		l.set(v, DepAdvcl, l.root)
	case prev >= 0 && l.tokens[prev].Tag == "CC":
		l.set(prev, DepCC, l.root)
		l.set(v, DepConj, l.root)
	default:
		l.set(v, DepDep, l.root)
	}

	if p := l.phraseEndingAt(start); p != nil && !l.governed(*p) {
		l.set(p.head, DepNsubj, v)
	}
}

func (l *labeler) verbBefore(i int) int {
	for j := i - 1; j >= 0; j-- {
		if isVerbTag(l.tokens[j].Tag) && !l.isAuxUse(j) {
			return j
		}
	}
	return l.root
}

// labelObject attaches the phrase right after verb v (skipping particles and
// adverbs) as its direct object, or as attr/acomp after a copula.
func (l *labeler) labelObject(v int) {
	j := v + 1
	for j < len(l.tokens) {
		tag := l.tokens[j].Tag
		if tag == "RP" {
			l.set(j, DepPrt, v)
		} else if strings.HasPrefix(tag, "RB") {
			l.set(j, DepAdvmod, v)
		} else {
			break
		}
		j++
	}
	if j >= len(l.tokens) {
		return
	}

	copula := beForms[strings.ToLower(l.tokens[v].Text)]
	for _, p := range l.phrases {
		if p.start != j {
			continue
		}
		if copula {
			l.set(p.head, DepAttr, v)
		} else {
			l.set(p.head, DepDobj, v)
		}
		return
	}

	if copula && strings.HasPrefix(l.tokens[j].Tag, "JJ") {
		l.set(j, DepAcomp, v)
	}
}

func (l *labeler) labelRest() {
	if l.from > 0 {
		head := l.root
		for j := 1; j < l.from; j++ {
			if l.tokens[j].Dep == DepAdvcl {
				head = j
				break
			}
		}
		l.set(0, DepMark, head)
	}

	for _, p := range l.phrases {
		l.set(p.head, DepDep, l.root)
	}
	for i, t := range l.tokens {
		switch {
		case isPunct(t):
			l.set(i, DepPunct, l.root)
		case t.Tag == "CC":
			l.set(i, DepCC, l.root)
		case l.isPrepAt(i):
			l.set(i, DepPrep, l.attachmentFor(i))
		case strings.HasPrefix(t.Tag, "RB"):
			l.set(i, DepAdvmod, l.root)
		default:
			l.set(i, DepDep, l.root)
		}
	}
}

func (l *labeler) isAuxUse(i int) bool {
	return isAuxUse(l.tokens, i)
}

// mainClauseStart skips a leading subordinate clause ("If ..., the tenant
// shall ...") so the root is searched for after its comma.
func mainClauseStart(tokens []Token) int {
	if !subordinators[strings.ToLower(tokens[0].Text)] {
		return 0
	}
	for i := 1; i < len(tokens)-1; i++ {
		if tokens[i].Tag != "," {
			continue
		}
		for j := i + 1; j < len(tokens); j++ {
			if isVerbTag(tokens[j].Tag) {
				return i + 1
			}
		}
		return 0
	}
	return 0
}

// findRoot returns the main predicate and the start of its verb chain.
// The first finite main verb wins; infinitives and relative-clause verbs
// are skipped. Verbless sentences root at their first non-punctuation token.
func findRoot(tokens []Token, from int) (int, int) {
	first := -1
	firstChain := -1
	for i := from; i < len(tokens); i++ {
		t := tokens[i]
		if !isVerbTag(t.Tag) || isAuxUse(tokens, i) {
			continue
		}
		start, hasAux := verbChain(tokens, i)
		if start > 0 {
			prev := tokens[start-1].Tag
			if prev == "TO" || isWhTag(prev) {
				continue
			}
		}
		finite := hasAux || t.Tag == "VBZ" || t.Tag == "VBP" || t.Tag == "VBD" || t.Tag == "VB"
		if finite {
			return i, start
		}
		if first < 0 {
			first, firstChain = i, start
		}
	}
	if first >= 0 {
		return first, firstChain
	}

	for i := from; i < len(tokens); i++ {
		if !isPunct(tokens[i]) {
			return i, i
		}
	}
	return from, from
}

// verbChain walks left from verb i over modals, auxiliaries, negation and
// adverbs. It returns the chain start and whether an auxiliary was seen.
func verbChain(tokens []Token, i int) (int, bool) {
	hasAux := false
	j := i - 1
	for ; j >= 0; j-- {
		t := tokens[j]
		lower := strings.ToLower(t.Text)
		if t.Tag == "MD" || (isVerbTag(t.Tag) && isAuxUse(tokens, j)) {
			hasAux = true
			continue
		}
		if lower == "not" || lower == "n't" || strings.HasPrefix(t.Tag, "RB") {
			continue
		}
		break
	}
	start := j + 1
	// Adverbs before the first auxiliary do not belong to the chain
	for start < i && strings.HasPrefix(tokens[start].Tag, "RB") {
		start++
	}
	return start, hasAux
}

// isAuxUse reports whether token i is a modal or auxiliary followed
// (possibly after adverbs or negation) by another verb.
func isAuxUse(tokens []Token, i int) bool {
	t := tokens[i]
	lower := strings.ToLower(t.Text)
	if t.Tag != "MD" && !(isVerbTag(t.Tag) && (beForms[lower] || auxWords[lower])) {
		return false
	}
	for j := i + 1; j < len(tokens); j++ {
		next := tokens[j]
		nl := strings.ToLower(next.Text)
		if nl == "not" || nl == "n't" || strings.HasPrefix(next.Tag, "RB") {
			continue
		}
		return isVerbTag(next.Tag) || next.Tag == "MD"
	}
	return false
}

// nounPhrases segments the sentence into maximal noun-phrase runs
func nounPhrases(tokens []Token) []phrase {
	var phrases []phrase
	i := 0
	for i < len(tokens) {
		if !inNounPhrase(tokens[i]) {
			i++
			continue
		}
		start := i
		for i < len(tokens) && inNounPhrase(tokens[i]) {
			i++
		}
		if head := phraseHead(tokens, start, i); head >= 0 {
			phrases = append(phrases, phrase{start: start, end: i, head: head})
		}
	}
	return phrases
}

func phraseHead(tokens []Token, start, end int) int {
	for k := end - 1; k >= start; k-- {
		if isNominalTag(tokens[k].Tag) {
			return k
		}
	}
	for k := end - 1; k >= start; k-- {
		switch tokens[k].Tag {
		case "CD", "DT", "$":
			return k
		}
	}
	return -1
}

func isVerbTag(tag string) bool {
	return strings.HasPrefix(tag, "VB")
}

func isNominalTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || tag == "PRP"
}

func inNounPhrase(t Token) bool {
	tag := t.Tag
	if tag != "$" && isPunct(t) {
		return false
	}
	if isNominalTag(tag) || strings.HasPrefix(tag, "JJ") {
		return true
	}
	switch tag {
	case "DT", "PDT", "PRP$", "POS", "CD", "$":
		return true
	}
	return false
}

func isPrepTag(tag string) bool {
	return tag == "IN" || tag == "TO"
}

func isWhTag(tag string) bool {
	return tag == "WDT" || tag == "WP" || tag == "WP$"
}

// isPunct reports whether t is punctuation by tag or carries no letter or
// digit at all. The tagger labels dashes and quotes NNP often enough that the
// tag alone cannot be trusted.
func isPunct(t Token) bool {
	return isPunctTag(t.Tag) || !strings.ContainsFunc(t.Text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// asides marks the tokens of parenthetical and dash-delimited asides,
// delimiters included. Unclosed asides are not marked.
func asides(tokens []Token) []bool {
	marked := make([]bool, len(tokens))
	open := -1
	dash := false
	for i, t := range tokens {
		switch {
		case open < 0 && isOpenParen(t.Text):
			open, dash = i, false
		case open < 0 && isDash(t.Text):
			open, dash = i, true
		case open >= 0 && ((!dash && isCloseParen(t.Text)) || (dash && isDash(t.Text))):
			for k := open; k <= i; k++ {
				marked[k] = true
			}
			open = -1
		}
	}
	return marked
}

func isOpenParen(s string) bool {
	return s == "(" || s == "[" || s == "-LRB-"
}

func isCloseParen(s string) bool {
	return s == ")" || s == "]" || s == "-RRB-"
}

func isDash(s string) bool {
	return s == "—" || s == "–" || s == "--"
}

func isPunctTag(tag string) bool {
	switch tag {
	case ".", ",", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "#", "\"":
		return true
	}
	return false
}
