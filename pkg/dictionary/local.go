package dictionary

import (
	"context"
	"sync"

	"github.com/japaniel/vocabreader/pkg/readerer"
)

// Local answers lookups from an in-memory index of dictionary entries.
type Local struct {
	lang readerer.Language
	// Keyed by normalized headword. Guarded by mu since Add can run while
	// enrichment workers are reading.
	mu    sync.RWMutex
	index map[string][]Entry
}

// NewLocal builds an index of entries keyed by their normalized headword.
func NewLocal(entries []Entry, lang readerer.Language) *Local {
	l := &Local{lang: lang, index: make(map[string][]Entry)}
	l.Add(entries...)
	return l
}

// Add indexes more entries. Entries without a usable headword are ignored.
func (l *Local) Add(entries ...Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		if key := l.key(e.Word); key != "" {
			l.index[key] = append(l.index[key], e)
		}
	}
}

func (l *Local) key(word string) string {
	return readerer.Normalize(word, l.lang)
}

// Len reports the number of distinct indexed headwords.
func (l *Local) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.index)
}

// Lookup returns all entries whose headword normalizes like word.
func (l *Local) Lookup(word string) []Entry {
	key := l.key(word)
	if key == "" {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	matches := l.index[key]
	if len(matches) == 0 {
		return nil
	}
	out := make([]Entry, len(matches))
	copy(out, matches)
	return out
}

// Define returns the first definition among the matching entries.
func (l *Local) Define(ctx context.Context, word string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, e := range l.Lookup(word) {
		if d := e.Definition(); d != "" {
			return d, nil
		}
	}
	return "", nil
}

// Chain tries each Definer in order and returns the first non-empty answer.
// An error from one Definer is returned only if no later one answers.
type Chain []Definer

func (c Chain) Define(ctx context.Context, word string) (string, error) {
	var firstErr error
	for _, d := range c {
		def, err := d.Define(ctx, word)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if def != "" {
			return def, nil
		}
	}
	return "", firstErr
}
