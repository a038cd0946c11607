package ossearch

import (
	"regexp"
	"strings"
)

// wordRE matches candidate word tokens.
var wordRE = regexp.MustCompile(`\w+`)

// cleanupRE collapses whitespace runs and literal "\n" sequences left over
// from page text decoding.
var cleanupRE = regexp.MustCompile(`(\s|\\n)+`)

// CleanupString collapses whitespace runs (and literal "\n" strings) in
// accumulated page text into single spaces.
func CleanupString(s string) string {
	return cleanupRE.ReplaceAllString(s, " ")
}

// TokenizeContent normalizes accumulated page text into the indexable
// content form: the space-joined sequence of lowercase word tokens, keeping
// only tokens that begin with an ASCII letter.
func TokenizeContent(s string) string {
	words := wordRE.FindAllString(s, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		c := w[0]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			tokens = append(tokens, strings.ToLower(w))
		}
	}
	return strings.Join(tokens, " ")
}
