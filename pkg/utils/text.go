package utils

import (
	"net/url"
	"regexp"
	"strings"
)

// Common English stop words excluded from keyword counting.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "will": true, "with": true,
	"this": true, "but": true, "they": true, "have": true, "had": true,
	"were": true, "been": true, "their": true, "she": true, "which": true, "do": true,
	"or": true, "if": true, "not": true, "what": true, "there": true, "can": true,
	"out": true, "up": true, "one": true, "about": true, "more": true, "so": true,
	"said": true, "when": true, "some": true, "into": true, "them": true, "then": true,
	"two": true, "how": true, "her": true, "than": true, "first": true, "way": true,
	"even": true, "back": true, "any": true, "over": true, "where": true, "just": true,
	"you": true, "your": true, "we": true, "our": true, "all": true, "also": true,
}

// Words of at least two characters, matching the tokenizer used for both
// wordcounts and n-gram windows.
var tokenRegex = regexp.MustCompile(`\b\w\w+\b`)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Tokenize lowercases text and splits it into word tokens.
func Tokenize(text string) []string {
	return tokenRegex.FindAllString(strings.ToLower(text), -1)
}

// FilterStopWords drops common English stop words from a token sequence.
func FilterStopWords(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !stopWords[tok] {
			filtered = append(filtered, tok)
		}
	}
	return filtered
}

// IsStopWord reports whether a token is a common English stop word.
func IsStopWord(tok string) bool {
	return stopWords[tok]
}

// CleanText collapses runs of whitespace to single spaces and trims the ends.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// NormalizeURL returns the canonical form of a URL used as the crawl
// identity: fragment stripped, trailing slash trimmed, scheme and host
// lowercased. Two URLs differing only by fragment or trailing slash
// normalize to the same string.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}
