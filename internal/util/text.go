package util

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"the": {}, "is": {}, "are": {}, "was": {}, "what": {}, "which": {},
	"how": {}, "does": {}, "for": {}, "and": {}, "or": {}, "any": {},
	"all": {}, "has": {}, "have": {}, "can": {}, "with": {}, "from": {},
	"this": {}, "that": {}, "there": {}, "list": {}, "much": {}, "many": {},
	"products": {}, "product": {},
}

// NormalizeWhitespace collapses all runs of whitespace into single spaces
// and trims the result.
func NormalizeWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Tokenize splits text into lower-cased alphanumeric tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// SalientTokens returns the question-bearing tokens of a text: lower-cased,
// stopwords removed, tokens shorter than three runes dropped. Duplicates are
// removed while preserving first-seen order.
func SalientTokens(text string) []string {
	seen := make(map[string]struct{})
	tokens := []string{}
	for _, token := range Tokenize(text) {
		if len([]rune(token)) < 3 {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

// ContainsToken reports whether token occurs as a substring of the
// lower-cased text.
func ContainsToken(text string, token string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(token))
}
