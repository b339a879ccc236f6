// Package dates finds natural-language date expressions in text.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/ppiankov/clausescope/internal/model"
)

// Searcher finds every date expression in a text
type Searcher interface {
	Search(text string) ([]model.DateMatch, error)
}

var (
	yearSuffix = regexp.MustCompile(`^,?\s*(\d{4})\b`)
	hasYear    = regexp.MustCompile(`\b\d{4}\b`)
)

// modalMonths are month rule matches that are really verbs ("the tenant
// may terminate"). A capitalized or day-qualified "May 1" still matches.
var modalMonths = map[string]bool{
	"may": true,
}

// WhenSearcher searches dates with the olebedev/when rule engine
type WhenSearcher struct {
	parser   *when.Parser
	clock    func() time.Time
	distance int
}

// Option configures a WhenSearcher
type Option func(*WhenSearcher)

// WithClock sets the reference time relative dates resolve against
func WithClock(clock func() time.Time) Option {
	return func(s *WhenSearcher) {
		s.clock = clock
	}
}

// WithDistance sets how many characters may separate rule matches that
// still belong to one date expression
func WithDistance(distance int) Option {
	return func(s *WhenSearcher) {
		s.distance = distance
	}
}

// NewWhenSearcher creates a searcher with the English and common rule sets
func NewWhenSearcher(opts ...Option) *WhenSearcher {
	s := &WhenSearcher{
		clock:    time.Now,
		distance: 5,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = when.New(&rules.Options{
		Afternoon:    15,
		Evening:      18,
		Morning:      8,
		Noon:         12,
		Distance:     s.distance,
		MatchByOrder: true,
	})
	s.parser.Add(en.All...)
	s.parser.Add(common.All...)

	return s
}

// Search returns every date expression in order of appearance. The rule
// engine reports only the first expression per call, so the remaining
// suffix is searched again until nothing more is found.
func (s *WhenSearcher) Search(text string) ([]model.DateMatch, error) {
	matches := []model.DateMatch{}
	base := s.clock()

	offset := 0
	for offset < len(text) {
		r, err := s.parser.Parse(text[offset:], base)
		if err != nil {
			return nil, fmt.Errorf("date search: %w", err)
		}
		if r == nil {
			break
		}

		start := offset + r.Index
		end := start + len(r.Text)
		if end <= start {
			offset = start + 1
			continue
		}

		start, end = trimSpan(text, start, end)
		parsed := r.Time
		end, parsed = extendYear(text, start, end, parsed)

		if end > start && !modalMonths[text[start:end]] {
			matches = append(matches, model.DateMatch{
				Text:  text[start:end],
				Time:  parsed,
				Start: start,
				End:   end,
			})
		}
		offset = end
		if offset <= start {
			offset = start + 1
		}
	}

	return matches, nil
}

// trimSpan shrinks [start, end) to its first and last letter or digit
func trimSpan(text string, start, end int) (int, int) {
	notAlnum := func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}
	span := text[start:end]
	left := strings.TrimLeftFunc(span, notAlnum)
	start += len(span) - len(left)
	trimmed := strings.TrimRightFunc(left, notAlnum)
	return start, start + len(trimmed)
}

// extendYear absorbs a trailing ", 2025" the rules did not consume and
// moves the parsed value into that year.
func extendYear(text string, start, end int, parsed time.Time) (int, time.Time) {
	if hasYear.MatchString(text[start:end]) {
		return end, parsed
	}
	loc := yearSuffix.FindStringSubmatchIndex(text[end:])
	if loc == nil {
		return end, parsed
	}

	year, err := strconv.Atoi(text[end+loc[2] : end+loc[3]])
	if err != nil {
		return end, parsed
	}
	parsed = time.Date(year, parsed.Month(), parsed.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), parsed.Location())
	return end + loc[1], parsed
}
