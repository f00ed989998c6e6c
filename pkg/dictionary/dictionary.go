package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Definer looks up a short definition for a word. An unknown word yields ""
// and a nil error.
type Definer interface {
	Define(ctx context.Context, word string) (string, error)
}

// Entry is one headword of an offline dictionary file.
type Entry struct {
	Word         string   `json:"word"`
	Definitions  []string `json:"definitions"`
	PartOfSpeech string   `json:"partOfSpeech,omitempty"`
}

// Definition returns the first non-empty definition of the entry.
func (e Entry) Definition() string {
	for _, d := range e.Definitions {
		if d = strings.TrimSpace(d); d != "" {
			return d
		}
	}
	return ""
}

// LoadFile reads an offline dictionary from path. See Decode for the format.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads either an object wrapper {"words": [...]} or a bare array of
// entries.
func Decode(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Words []Entry `json:"words"`
	}
	// Try parsing as full object wrapper first { "words": [...] }
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Words) > 0 {
		return wrapped.Words, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary as object or array: %w", err)
	}
	return entries, nil
}
