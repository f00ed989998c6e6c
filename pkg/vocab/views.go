package vocab

import (
	"fmt"
	"sort"
	"strings"
)

// Documents returns copies of all documents in creation order.
func (s *Store) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.state.Documents))
	copy(out, s.state.Documents)
	return out
}

// Document returns a copy of one document.
func (s *Store) Document(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.findDocument(&s.state, id); i >= 0 {
		return s.state.Documents[i], true
	}
	return Document{}, false
}

// FindDocument resolves a document by exact id, then by unique id prefix,
// then by case-insensitive title.
func (s *Store) FindDocument(ref string) (Document, error) {
	ref = strings.TrimSpace(ref)
	if d, ok := s.Document(ref); ok {
		return d, nil
	}
	var matches []Document
	for _, d := range s.Documents() {
		if ref != "" && strings.HasPrefix(d.ID, ref) {
			matches = append(matches, d)
		}
	}
	if len(matches) == 0 {
		for _, d := range s.Documents() {
			if strings.EqualFold(d.Title, ref) {
				matches = append(matches, d)
			}
		}
	}
	switch len(matches) {
	case 0:
		return Document{}, invalid("find document", "no document matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return Document{}, invalid("find document", "%q matches %d documents", ref, len(matches))
	}
}

// VocabularyTable returns a copy of a document's saved table.
func (s *Store) VocabularyTable(documentID string) (VocabularyTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.VocabularyTables[documentID]
	if !ok {
		return VocabularyTable{}, false
	}
	return t.clone(), true
}

// VocabularyTables returns copies of every table, in document order.
func (s *Store) VocabularyTables() []VocabularyTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []VocabularyTable
	for _, d := range s.state.Documents {
		if t, ok := s.state.VocabularyTables[d.ID]; ok {
			out = append(out, t.clone())
		}
	}
	return out
}

// PageView is what a renderer needs to display one page.
type PageView struct {
	Paragraphs []string
	Saved      map[string]WordEntry
	Preview    map[string]WordEntry
}

// View builds the rendering snapshot for the given paragraphs of a document.
func (s *Store) View(documentID string, paragraphs []string) PageView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(paragraphs))
	copy(out, paragraphs)
	return PageView{
		Paragraphs: out,
		Saved:      Index(s.state.VocabularyTables[documentID].Entries),
		Preview:    Index(s.preview[documentID]),
	}
}

// Index maps normalized forms to their entries.
func Index(entries []WordEntry) map[string]WordEntry {
	idx := make(map[string]WordEntry, len(entries))
	for _, e := range entries {
		idx[e.Normalized] = e
	}
	return idx
}

// SortBy selects the ordering of a sorted view.
type SortBy string

const (
	ByFirstSeen SortBy = "first"
	ByLastSeen  SortBy = "last"
	ByCount     SortBy = "count"
	ByAlpha     SortBy = "alpha"
)

// ParseSortBy validates a sort key from flags.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.ToLower(s)) {
	case ByFirstSeen, ByLastSeen, ByCount, ByAlpha:
		return SortBy(strings.ToLower(s)), nil
	case "":
		return ByFirstSeen, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want first, last, count or alpha)", s)
	}
}

// Sorted returns a sorted copy of entries. Ties are broken alphabetically by
// normalized form. The input is left untouched.
func Sorted(entries []WordEntry, by SortBy, descending bool) []WordEntry {
	out := cloneEntries(entries)
	key := func(e WordEntry) int64 {
		switch by {
		case ByLastSeen:
			return e.LastSeenAt
		case ByCount:
			return int64(e.Count)
		default:
			return e.FirstAddedAt
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if by != ByAlpha {
			if ka, kb := key(a), key(b); ka != kb {
				if descending {
					return ka > kb
				}
				return ka < kb
			}
		} else if descending {
			return a.Normalized > b.Normalized
		}
		return a.Normalized < b.Normalized
	})
	return out
}
