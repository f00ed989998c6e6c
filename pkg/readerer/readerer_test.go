package readerer

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	v := Version()
	if v == "" {
		t.Fatalf("Version() returned empty string")
	}
}

func TestTokenizeKinds(t *testing.T) {
	tokens := Tokenize("Hello, world!  It's 9am.")
	want := []Token{
		{"Hello", Word},
		{",", Punctuation},
		{" ", Whitespace},
		{"world", Word},
		{"!", Punctuation},
		{"  ", Whitespace},
		{"It", Word},
		{"'", Punctuation},
		{"s", Word},
		{" ", Whitespace},
		{"9", Punctuation},
		{"am", Word},
		{".", Punctuation},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: got %+v, want %+v", i, tokens[i], want[i])
		}
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"word",
		"...",
		"Para one.\n\nPara two!\t(tabbed)",
		"漢字かんじ と English — mixed…",
		"trailing space   ",
		"\xff\xfe broken utf8 \x80",
	}
	for _, in := range inputs {
		var sb strings.Builder
		for _, tok := range Tokenize(in) {
			sb.WriteString(tok.Text)
		}
		if sb.String() != in {
			t.Errorf("round trip mismatch: got %q, want %q", sb.String(), in)
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"studies", "study"},
		{"walking", "walk"},
		{"cats", "cat"},
		{"  The!!", "the"},
		{"watches", "watch"},
		{"walked", "walk"},
		{"walks", "walk"},
		{"Reading", "read"},
		{"is", "is"},
		{"bus", "bus"},
		{"ties", "ti"},
		{"red", "red"},
		{"sing", "sing"},
		{"!!!", ""},
		{"", ""},
		{"123", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in, English); got != tt.out {
			t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestNormalizeIdempotentOnRegularForms(t *testing.T) {
	words := []string{"studies", "walking", "cats", "The", "walked", "watches", "reading", "dog", "apple", "run"}
	for _, w := range words {
		once := Normalize(w, English)
		if twice := Normalize(once, English); twice != once {
			t.Errorf("Normalize not stable for %q: %q then %q", w, once, twice)
		}
	}
}

func TestNormalizeOnlyOneRuleFires(t *testing.T) {
	// "ed" would also match after stripping "s", but rules are not reapplied.
	if got := Normalize("embeds", English); got != "embed" {
		t.Fatalf("expected embed, got %q", got)
	}
}

func TestNormalizeUnknownLanguageOnlyCleans(t *testing.T) {
	if got := Normalize("  Walking!", Language("de")); got != "walking" {
		t.Fatalf("expected walking, got %q", got)
	}
}

func TestParseLanguage(t *testing.T) {
	if lang, err := ParseLanguage("EN"); err != nil || lang != English {
		t.Fatalf("expected English, got %q (%v)", lang, err)
	}
	if _, err := ParseLanguage("fr"); err == nil {
		t.Fatalf("expected error for unsupported language")
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("One cat sat. Did it?\nYes!  ")
	want := []string{"One cat sat.", "Did it?", "Yes!"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSentenceContaining(t *testing.T) {
	text := "The category is broad. A cat sat on the mat! Nothing else."
	tests := []struct {
		word, want string
	}{
		{"cat", "A cat sat on the mat!"},
		{"Cat,", "A cat sat on the mat!"},
		{"category", "The category is broad."},
		{"dog", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SentenceContaining(text, tt.word); got != tt.want {
			t.Errorf("SentenceContaining(%q) = %q; want %q", tt.word, got, tt.want)
		}
	}
}
