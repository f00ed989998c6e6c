// Package vocab owns reading documents and their vocabulary tables.
package vocab

// Document is an imported reading.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	// Position is the last page viewed, 1-indexed. 0 means never opened.
	Position int `json:"position,omitempty"`
}

// WordEntry records the observations of one normalized word in a document.
// Timestamps are Unix milliseconds.
type WordEntry struct {
	Original     string `json:"original"`
	Normalized   string `json:"normalized"`
	Count        int    `json:"count"`
	FirstAddedAt int64  `json:"firstAddedAt"`
	LastSeenAt   int64  `json:"lastSeenAt"`
	Sentence     string `json:"sentence,omitempty"`
	Definition   string `json:"definition,omitempty"`
	IsSaved      bool   `json:"isSaved"`
}

// VocabularyTable holds the saved entries of a document.
type VocabularyTable struct {
	ID         string      `json:"id"`
	DocumentID string      `json:"documentId"`
	Name       string      `json:"name"`
	Entries    []WordEntry `json:"entries"`
}

// Snapshot is the persisted form of the store. Preview entries are not part of it.
type Snapshot struct {
	Documents        []Document                 `json:"documents"`
	VocabularyTables map[string]VocabularyTable `json:"vocabularyTables"`
}

func (t VocabularyTable) clone() VocabularyTable {
	t.Entries = cloneEntries(t.Entries)
	return t
}

func cloneEntries(entries []WordEntry) []WordEntry {
	if entries == nil {
		return []WordEntry{}
	}
	out := make([]WordEntry, len(entries))
	copy(out, entries)
	return out
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Documents:        make([]Document, len(s.Documents)),
		VocabularyTables: make(map[string]VocabularyTable, len(s.VocabularyTables)),
	}
	copy(out.Documents, s.Documents)
	for id, t := range s.VocabularyTables {
		out.VocabularyTables[id] = t.clone()
	}
	return out
}
