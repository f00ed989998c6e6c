package readerer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Language selects the folding rules applied after cleaning.
type Language string

const English Language = "en"

// ParseLanguage validates a language code from configuration or flags.
func ParseLanguage(code string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", "en":
		return English, nil
	default:
		return "", fmt.Errorf("unsupported language %q", code)
	}
}

// suffixRule replaces suffix with replacement when the word is longer than minLen runes.
type suffixRule struct {
	suffix      string
	minLen      int
	replacement string
}

// englishRules are checked in order; the first match wins.
var englishRules = []suffixRule{
	{suffix: "ies", minLen: 4, replacement: "y"}, // studies -> study
	{suffix: "es", minLen: 3},                    // watches -> watch
	{suffix: "s", minLen: 3},                     // walks -> walk
	{suffix: "ed", minLen: 4},                    // walked -> walk
	{suffix: "ing", minLen: 5},                   // walking -> walk
}

// Clean lowercases raw and strips any leading and trailing non-letter runes.
func Clean(raw string) string {
	notLetter := func(r rune) bool { return !unicode.IsLetter(r) }
	return strings.TrimFunc(strings.ToLower(raw), notLetter)
}

// Normalize maps a surface form to the key used to aggregate occurrences.
// It returns "" when nothing is left after cleaning. The English rules are a
// heuristic stemmer and can under- or over-stem irregular forms.
func Normalize(raw string, lang Language) string {
	cleaned := Clean(raw)
	if cleaned == "" {
		return ""
	}
	switch lang {
	case English, "":
		return foldEnglish(cleaned)
	default:
		return cleaned
	}
}

func foldEnglish(word string) string {
	n := utf8.RuneCountInString(word)
	for _, rule := range englishRules {
		if n > rule.minLen && strings.HasSuffix(word, rule.suffix) {
			return strings.TrimSuffix(word, rule.suffix) + rule.replacement
		}
	}
	return word
}
