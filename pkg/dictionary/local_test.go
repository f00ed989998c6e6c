package dictionary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/japaniel/vocabreader/pkg/readerer"
)

func TestDecodeWrapperAndArray(t *testing.T) {
	wrapped := `{"words":[{"word":"cat","definitions":["a small feline"]},{"word":"run","definitions":["","to move fast"]}]}`
	entries, err := Decode(strings.NewReader(wrapped))
	if err != nil {
		t.Fatalf("decode wrapper: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := entries[1].Definition(); got != "to move fast" {
		t.Errorf("expected first non-empty definition, got %q", got)
	}

	array := `[{"word":"dog","definitions":["a canine"]}]`
	entries, err = Decode(strings.NewReader(array))
	if err != nil {
		t.Fatalf("decode array: %v", err)
	}
	if len(entries) != 1 || entries[0].Word != "dog" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if _, err := Decode(strings.NewReader("not json")); err == nil {
		t.Fatalf("expected error for invalid dictionary")
	}
}

func TestLocalDefineMatchesInflections(t *testing.T) {
	l := NewLocal([]Entry{
		{Word: "walk", Definitions: []string{"to move on foot"}},
		{Word: "Study", Definitions: []string{"to learn"}},
		{Word: "!!!", Definitions: []string{"ignored"}},
	}, readerer.English)

	if l.Len() != 2 {
		t.Fatalf("expected 2 indexed headwords, got %d", l.Len())
	}

	tests := []struct {
		word, want string
	}{
		{"walking", "to move on foot"},
		{"Walked", "to move on foot"},
		{"studies", "to learn"},
		{"unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := l.Define(context.Background(), tt.word)
		if err != nil {
			t.Fatalf("Define(%q): %v", tt.word, err)
		}
		if got != tt.want {
			t.Errorf("Define(%q) = %q; want %q", tt.word, got, tt.want)
		}
	}
}

func TestLocalLookupReturnsCopy(t *testing.T) {
	l := NewLocal([]Entry{{Word: "cat", Definitions: []string{"feline"}}}, readerer.English)
	got := l.Lookup("cats")
	got[0].Word = "mutated"
	if again := l.Lookup("cat"); again[0].Word != "cat" {
		t.Fatalf("index mutated through Lookup result: %+v", again)
	}
}

type stubDefiner struct {
	def string
	err error
}

func (s stubDefiner) Define(ctx context.Context, word string) (string, error) {
	return s.def, s.err
}

func TestChain(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		chain   Chain
		want    string
		wantErr bool
	}{
		{"first answers", Chain{stubDefiner{def: "a"}, stubDefiner{def: "b"}}, "a", false},
		{"falls through miss", Chain{stubDefiner{}, stubDefiner{def: "b"}}, "b", false},
		{"error then answer", Chain{stubDefiner{err: boom}, stubDefiner{def: "b"}}, "b", false},
		{"error then miss", Chain{stubDefiner{err: boom}, stubDefiner{}}, "", true},
		{"empty", Chain{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.chain.Define(context.Background(), "x")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
