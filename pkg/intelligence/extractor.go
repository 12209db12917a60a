// Package intelligence provides the companion's conversational intelligence:
// lexical memory extraction, engagement timing, and proactive decisions.
package intelligence

import (
	"strings"
	"time"
	"unicode"

	"github.com/emma-labs/emma-go/pkg/memory"
)

// defaultExcerptRunes caps the length of an extracted content excerpt so
// memory summaries stay scannable.
const defaultExcerptRunes = 100

// Extractor turns a conversation turn into zero or more candidate memory
// records using lexical keyword matching.
//
// Matching is deliberately cheap and explainable: each category's keyword
// set is scanned for whole-word matches against the lowercased turn text.
// A single turn can yield records in several categories, but at most one
// record per category.
//
// Example:
//
//	extractor := intelligence.NewExtractor()
//	records := extractor.Extract("I have a job interview tomorrow", time.Now())
//	// records contains one event record and one activity record
type Extractor struct {
	// maxExcerptRunes caps the content excerpt length in runes.
	maxExcerptRunes int
}

// NewExtractor creates an extractor with the default excerpt cap.
func NewExtractor() *Extractor {
	return &Extractor{maxExcerptRunes: defaultExcerptRunes}
}

// token is a single word of the turn with its position, used for whole-word
// matching and excerpt assembly.
type token struct {
	text          string
	lower         string
	index         int
	sentenceStart bool
}

// Extract returns the candidate records for a turn.
//
// For each category, the first keyword (in the category's declared order)
// that appears as a whole word in the turn produces one record. The person
// category additionally falls back to a light capitalized-word heuristic
// for names when none of its relationship nouns match.
//
// Content is a bounded excerpt of the turn centered on the matched word;
// SourceText is the verbatim turn. A turn with no match yields nil, which
// is a normal outcome rather than an error.
func (e *Extractor) Extract(turnText string, now time.Time) []*memory.Record {
	tokens := tokenize(turnText)
	if len(tokens) == 0 {
		return nil
	}

	var out []*memory.Record
	for _, cat := range memory.Categories() {
		idx, kw := matchCategory(tokens, cat)
		if idx < 0 && cat == memory.CategoryPerson {
			idx, kw = matchName(tokens)
		}
		if idx < 0 {
			continue
		}
		out = append(out, &memory.Record{
			Category:   cat,
			Content:    e.excerpt(tokens, idx),
			SourceText: turnText,
			Keyword:    kw,
			CreatedAt:  now,
		})
	}
	return out
}

// matchCategory returns the token index and keyword of the first keyword of
// the category found in the turn, or (-1, "").
func matchCategory(tokens []token, cat memory.Category) (int, string) {
	for _, kw := range cat.Keywords() {
		for i, tok := range tokens {
			if tok.lower == kw {
				return i, kw
			}
		}
	}
	return -1, ""
}

// nameStopWords are capitalized words that are never treated as names.
var nameStopWords = map[string]struct{}{
	"i": {}, "monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {}, "january": {}, "february": {},
	"march": {}, "april": {}, "may": {}, "june": {}, "july": {}, "august": {},
	"september": {}, "october": {}, "november": {}, "december": {},
	"hi": {}, "hey": {}, "hello": {}, "thanks": {}, "ok": {}, "okay": {},
}

// matchName scans for a capitalized word that looks like a personal name.
// Sentence-initial words are skipped since English capitalizes them anyway.
func matchName(tokens []token) (int, string) {
	for i, tok := range tokens {
		if tok.sentenceStart {
			continue
		}
		if !looksLikeName(tok.text) {
			continue
		}
		if _, stop := nameStopWords[tok.lower]; stop {
			continue
		}
		return i, tok.lower
	}
	return -1, ""
}

// looksLikeName reports whether the word is capitalized with a lowercase
// remainder, e.g. "Sarah" but not "OK" or "iPhone".
func looksLikeName(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// excerpt builds the content excerpt around the matched token, growing
// outward word by word until the rune cap is reached. Short turns are
// returned whole.
func (e *Extractor) excerpt(tokens []token, matchIdx int) string {
	lo, hi := matchIdx, matchIdx
	length := len([]rune(tokens[matchIdx].text))

	for lo > 0 || hi < len(tokens)-1 {
		grew := false
		if lo > 0 {
			next := len([]rune(tokens[lo-1].text)) + 1
			if length+next <= e.maxExcerptRunes {
				lo--
				length += next
				grew = true
			}
		}
		if hi < len(tokens)-1 {
			next := len([]rune(tokens[hi+1].text)) + 1
			if length+next <= e.maxExcerptRunes {
				hi++
				length += next
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	parts := make([]string, 0, hi-lo+1)
	for _, tok := range tokens[lo : hi+1] {
		parts = append(parts, tok.text)
	}
	return strings.Join(parts, " ")
}

// tokenize splits the turn into words, recording which words open a
// sentence. Leading and trailing punctuation is stripped from each word so
// "interview!" matches the keyword "interview".
func tokenize(text string) []token {
	var tokens []token
	sentenceStart := true

	for _, field := range strings.Fields(text) {
		trimmed := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
		})
		endsSentence := strings.ContainsAny(field, ".!?")
		if trimmed == "" {
			if endsSentence {
				sentenceStart = true
			}
			continue
		}
		tokens = append(tokens, token{
			text:          trimmed,
			lower:         strings.ToLower(trimmed),
			index:         len(tokens),
			sentenceStart: sentenceStart,
		})
		sentenceStart = endsSentence
	}
	return tokens
}
