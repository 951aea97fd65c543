// Package topics extracts a small topic set from article text using a fixed
// keyword rule table followed by a naive proper-noun scan.
package topics

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTopics caps the size of an article's topic set.
const MaxTopics = 5

// Rule adds Label when the case-folded text contains every word of any one
// group in AnyOf.
type Rule struct {
	Label string
	AnyOf [][]string
}

func (r Rule) matches(lower string) bool {
	for _, group := range r.AnyOf {
		all := true
		for _, w := range group {
			if !strings.Contains(lower, w) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// Rules is the canonical rule table, evaluated in order.
var Rules = []Rule{
	{Label: "Electric Vehicles", AnyOf: [][]string{{"electric", "vehicle"}}},
	{Label: "Stock Market", AnyOf: [][]string{{"stock"}, {"market"}}},
	{Label: "Innovation", AnyOf: [][]string{{"innovation"}, {"innovative"}}},
	{Label: "Regulations", AnyOf: [][]string{{"regulation"}, {"regulator"}}},
	{Label: "Autonomous Vehicles", AnyOf: [][]string{{"autonomous"}, {"self-driving"}}},
	{Label: "Mergers & Acquisitions", AnyOf: [][]string{{"merger"}, {"acquisition"}}},
	{Label: "Financial Performance", AnyOf: [][]string{{"profit"}, {"earnings"}, {"quarter"}}},
}

// properNoun is an uppercase letter followed by one or more letters. Word
// boundaries are checked by properNouns, since RE2's \b is ASCII-only.
var properNoun = regexp.MustCompile(`[A-Z][a-zA-Z]+`)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// properNouns returns the properNoun matches that are whole words, so
// "Nestlé" and "Société" yield nothing.
func properNouns(content string) []string {
	var out []string
	for _, loc := range properNoun.FindAllStringIndex(content, -1) {
		if before, _ := utf8.DecodeLastRuneInString(content[:loc[0]]); loc[0] > 0 && isWordRune(before) {
			continue
		}
		if after, _ := utf8.DecodeRuneInString(content[loc[1]:]); loc[1] < len(content) && isWordRune(after) {
			continue
		}
		out = append(out, content[loc[0]:loc[1]])
	}
	return out
}

// Set is an insertion-ordered set of topic labels.
type Set struct {
	items []string
	seen  map[string]struct{}
}

func newSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Add inserts label if absent and reports whether it was added.
func (s *Set) Add(label string) bool {
	if _, ok := s.seen[label]; ok {
		return false
	}
	s.seen[label] = struct{}{}
	s.items = append(s.items, label)
	return true
}

// Len returns the number of labels.
func (s *Set) Len() int { return len(s.items) }

// Slice returns the labels in insertion order. Never nil.
func (s *Set) Slice() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Extract returns at most MaxTopics topics for content. Rule labels come
// first, in table order; proper nouns follow in the order they appear,
// skipping any token equal to company ignoring case. The scan stops as soon
// as the set is full, so which late tokens are dropped depends on position.
func Extract(content, company string) []string {
	set := newSet()
	lower := strings.ToLower(content)

	for _, r := range Rules {
		if set.Len() >= MaxTopics {
			break
		}
		if r.matches(lower) {
			set.Add(r.Label)
		}
	}

	for _, word := range properNouns(content) {
		if strings.EqualFold(word, company) {
			continue
		}
		if set.Len() >= MaxTopics {
			break
		}
		set.Add(word)
	}

	return set.Slice()
}
