package vocab

import "github.com/japaniel/vocabreader/pkg/readerer"

// ObserveOptions controls how an observation is recorded.
type ObserveOptions struct {
	// Commit saves the word permanently. Without it the word is only staged
	// in the preview table.
	Commit bool
}

// Outcome describes what ObserveWord did.
type Outcome int

const (
	// Dropped means the word normalized to nothing and was ignored.
	Dropped Outcome = iota
	// AlreadySaved means a preview was requested for a word that is saved.
	AlreadySaved
	// Previewed means the word was staged or its preview refreshed.
	Previewed
	// Saved means a saved entry was created or incremented.
	Saved
)

func (o Outcome) String() string {
	switch o {
	case Dropped:
		return "dropped"
	case AlreadySaved:
		return "already saved"
	case Previewed:
		return "previewed"
	case Saved:
		return "saved"
	default:
		return "unknown"
	}
}

// ObserveWord merges one observation of original into the document's
// vocabulary. A committed observation increments or creates the saved entry
// and consumes any preview entry with the same normalized form. An
// uncommitted one stages a preview entry unless the word is already saved.
// The returned entry is the saved or preview entry after the update.
func (s *Store) ObserveWord(documentID, original, sentence string, opts ObserveOptions) (WordEntry, Outcome, error) {
	const op = "observe word"
	normalized := readerer.Normalize(original, s.lang)
	if normalized == "" {
		return WordEntry{}, Dropped, nil
	}

	s.mu.Lock()
	if s.findDocument(&s.state, documentID) < 0 {
		s.mu.Unlock()
		return WordEntry{}, Dropped, invalid(op, "unknown document %q", documentID)
	}

	if !opts.Commit {
		entry, outcome := s.stage(documentID, original, normalized, sentence)
		s.mu.Unlock()
		if outcome == Previewed {
			s.publish(Event{Kind: WordPreviewed, DocumentID: documentID, Normalized: normalized})
		}
		return entry, outcome, nil
	}

	var saved WordEntry
	now := s.stamp()
	staged := findEntry(s.preview[documentID], normalized)
	err := s.mutate(op, func(next *Snapshot) error {
		t, ok := next.VocabularyTables[documentID]
		if !ok {
			d := next.Documents[s.findDocument(next, documentID)]
			t = s.newTable(documentID, d.Title)
		}
		if i := findEntry(t.Entries, normalized); i >= 0 {
			t.Entries[i].Count++
			t.Entries[i].LastSeenAt = now
			saved = t.Entries[i]
		} else {
			if sentence == "" && staged >= 0 {
				sentence = s.preview[documentID][staged].Sentence
			}
			saved = WordEntry{
				Original:     original,
				Normalized:   normalized,
				Count:        1,
				FirstAddedAt: now,
				LastSeenAt:   now,
				Sentence:     sentence,
				IsSaved:      true,
			}
			t.Entries = append(t.Entries, saved)
		}
		next.VocabularyTables[documentID] = t
		return nil
	})
	if err == nil && staged >= 0 {
		p := s.preview[documentID]
		s.preview[documentID] = append(p[:staged], p[staged+1:]...)
	}
	s.mu.Unlock()
	if err != nil {
		return WordEntry{}, Dropped, err
	}
	s.publish(Event{Kind: WordSaved, DocumentID: documentID, Normalized: normalized})
	return saved, Saved, nil
}

// stage upserts a preview entry. Callers hold s.mu.
func (s *Store) stage(documentID, original, normalized, sentence string) (WordEntry, Outcome) {
	if t, ok := s.state.VocabularyTables[documentID]; ok {
		if i := findEntry(t.Entries, normalized); i >= 0 {
			return t.Entries[i], AlreadySaved
		}
	}
	now := s.stamp()
	staged := s.preview[documentID]
	if i := findEntry(staged, normalized); i >= 0 {
		staged[i].LastSeenAt = now
		return staged[i], Previewed
	}
	entry := WordEntry{
		Original:     original,
		Normalized:   normalized,
		FirstAddedAt: now,
		LastSeenAt:   now,
		Sentence:     sentence,
	}
	s.preview[documentID] = append(staged, entry)
	return entry, Previewed
}

// PreviewEntries returns a copy of the staged entries of a document.
func (s *Store) PreviewEntries(documentID string) []WordEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.preview[documentID])
}

// ClearPreview discards every staged entry of a document.
func (s *Store) ClearPreview(documentID string) {
	s.mu.Lock()
	had := len(s.preview[documentID]) > 0
	delete(s.preview, documentID)
	s.mu.Unlock()
	if had {
		s.publish(Event{Kind: PreviewCleared, DocumentID: documentID})
	}
}
