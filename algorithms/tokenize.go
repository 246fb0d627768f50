package algorithms

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Delimiters separate words in free text.
const Delimiters = ` .?!:,";$%^&*()@#~<>/-`

// Tokenize splits text on Delimiters and lower-cases every non-empty token.
func Tokenize(text string) []string {
	return tokenize(text, 1)
}

// tokenize keeps tokens of at least minRunes runes, measured before
// lower-casing.
func tokenize(text string, minRunes int) []string {
	lower := cases.Lower(language.Und)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(Delimiters, r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minRunes {
			continue
		}
		tokens = append(tokens, lower.String(f))
	}
	return tokens
}
