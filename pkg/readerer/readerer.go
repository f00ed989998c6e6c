package readerer

import (
	"strings"
	"unicode"
)

// Version returns the current version of the package.
func Version() string { return "0.2.0" }

// Kind classifies a token.
type Kind int

const (
	Word Kind = iota
	Punctuation
	Whitespace
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Punctuation:
		return "punctuation"
	case Whitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Token represents a single contiguous run of text.
type Token struct {
	Text string
	Kind Kind
}

func kindOf(r rune) Kind {
	switch {
	case unicode.IsLetter(r):
		return Word
	case unicode.IsSpace(r):
		return Whitespace
	default:
		return Punctuation
	}
}

// Tokenize splits text into word, whitespace and punctuation runs.
// Concatenating the Text of the returned tokens reproduces the input exactly.
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}
	var result []Token
	start := 0
	current := Kind(-1)

	for i, r := range text {
		k := kindOf(r)
		if k != current {
			if current >= 0 {
				result = append(result, Token{Text: text[start:i], Kind: current})
			}
			start = i
			current = k
		}
	}
	result = append(result, Token{Text: text[start:], Kind: current})
	return result
}

// Words returns the text of the word tokens only.
func Words(text string) []string {
	var words []string
	for _, t := range Tokenize(text) {
		if t.Kind == Word {
			words = append(words, t.Text)
		}
	}
	return words
}

// SplitSentences splits text after sentence terminators and newlines.
// Sentences are trimmed; empty ones are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		// 。(3002), ！(FF01), ？(FF1F)
		switch r {
		case '.', '!', '?', '\n', '。', '！', '？':
			flush()
		}
	}
	flush()
	return sentences
}

// SentenceContaining returns the first sentence of text that contains word as
// a whole word, compared case-insensitively. It returns "" when none does.
func SentenceContaining(text, word string) string {
	word = Clean(word)
	if word == "" {
		return ""
	}
	for _, s := range SplitSentences(text) {
		for _, w := range Words(s) {
			if strings.ToLower(w) == word {
				return s
			}
		}
	}
	return ""
}
