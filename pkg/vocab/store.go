package vocab

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/japaniel/vocabreader/pkg/readerer"
)

// StateKey is the key the store persists its snapshot under.
const StateKey = "vocabreader/state"

// KV is the persistence collaborator. Get reports ok=false when key is absent.
type KV interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
}

// Store owns documents, their saved vocabulary tables and the in-memory
// preview tables. All mutations are serialized; accessors return copies.
type Store struct {
	mu      sync.RWMutex
	kv      KV
	state   Snapshot
	preview map[string][]WordEntry

	lang      readerer.Language
	now       func() time.Time
	newID     func() string
	lastStamp int64
	logger    *log.Logger
	reset     bool

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for warnings. nil means no logging.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLanguage selects the normalization rules.
func WithLanguage(lang readerer.Language) Option {
	return func(s *Store) { s.lang = lang }
}

// WithIDGenerator overrides how document and table ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New constructs a store backed by kv and loads the persisted snapshot.
// A nil kv keeps everything in memory. If the snapshot cannot be read or
// decoded the store starts empty and WasReset reports true.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		state:   emptySnapshot(),
		preview: make(map[string][]WordEntry),
		lang:    readerer.English,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		subs:    make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Documents:        []Document{},
		VocabularyTables: map[string]VocabularyTable{},
	}
}

func (s *Store) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func (s *Store) load() {
	if s.kv == nil {
		return
	}
	data, ok, err := s.kv.Get(StateKey)
	if err != nil {
		s.logf("Warning: failed to load vocabulary state, starting empty: %v", err)
		s.reset = true
		return
	}
	if !ok {
		return
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		s.logf("Warning: stored vocabulary state is unreadable, starting empty: %v", err)
		s.reset = true
		return
	}
	s.canonicalize(&snap)
	s.state = snap
	s.lastStamp = latestStamp(snap)
}

// WasReset reports whether the persisted state was discarded at startup
// because it could not be loaded.
func (s *Store) WasReset() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reset
}

// DecodeSnapshot parses a persisted snapshot and checks that it is consistent.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Documents == nil {
		snap.Documents = []Document{}
	}
	if snap.VocabularyTables == nil {
		snap.VocabularyTables = map[string]VocabularyTable{}
	}
	if err := validateSnapshot(snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func validateSnapshot(snap Snapshot) error {
	const op = "restore"
	known := make(map[string]bool, len(snap.Documents))
	for _, d := range snap.Documents {
		if strings.TrimSpace(d.ID) == "" {
			return invalid(op, "document with empty id")
		}
		if known[d.ID] {
			return invalid(op, "duplicate document id %q", d.ID)
		}
		known[d.ID] = true
	}
	for key, t := range snap.VocabularyTables {
		if t.DocumentID != key {
			return invalid(op, "table %q is keyed under %q", t.DocumentID, key)
		}
		if !known[key] {
			return invalid(op, "table for unknown document %q", key)
		}
		seen := make(map[string]bool, len(t.Entries))
		for _, e := range t.Entries {
			if e.Normalized == "" {
				return invalid(op, "entry %q in table %q has no normalized form", e.Original, key)
			}
			if seen[e.Normalized] {
				return invalid(op, "duplicate entry %q in table %q", e.Normalized, key)
			}
			seen[e.Normalized] = true
		}
	}
	return nil
}

func latestStamp(snap Snapshot) int64 {
	var latest int64
	for _, t := range snap.VocabularyTables {
		if l := latestOf(t.Entries); l > latest {
			latest = l
		}
	}
	return latest
}

func latestOf(entries []WordEntry) int64 {
	var latest int64
	for _, e := range entries {
		if e.LastSeenAt > latest {
			latest = e.LastSeenAt
		}
	}
	return latest
}

// canonicalize rewrites every table of snap through prepareEntries so loaded
// and restored entries obey the same rules as imported ones.
func (s *Store) canonicalize(snap *Snapshot) {
	now := s.now().UnixMilli()
	for id, t := range snap.VocabularyTables {
		t.Entries = prepareEntries(t.Entries, s.lang, now)
		snap.VocabularyTables[id] = t
	}
}

// advanceStamp moves the monotonic stamp forward to ms. Callers hold s.mu.
func (s *Store) advanceStamp(ms int64) {
	if ms > s.lastStamp {
		s.lastStamp = ms
	}
}

// stamp returns the current time in milliseconds, never earlier than a
// previously issued stamp. Callers hold s.mu.
func (s *Store) stamp() int64 {
	ms := s.now().UnixMilli()
	if ms < s.lastStamp {
		ms = s.lastStamp
	}
	s.lastStamp = ms
	return ms
}

func (s *Store) persist(snap Snapshot) error {
	if s.kv == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.kv.Put(StateKey, data)
}

// mutate applies fn to a copy of the state, persists the copy and swaps it
// in. Nothing changes if fn or persistence fails. Callers hold s.mu.
func (s *Store) mutate(op string, fn func(*Snapshot) error) error {
	next := s.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.persist(next); err != nil {
		return fmt.Errorf("%s: persist state: %w", op, err)
	}
	s.state = next
	return nil
}

func (s *Store) findDocument(snap *Snapshot, id string) int {
	for i, d := range snap.Documents {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// CreateDocument adds a document with a fresh id and an empty vocabulary table.
func (s *Store) CreateDocument(title, content string) (Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Document{}, invalid("create document", "title must be non-empty")
	}

	s.mu.Lock()
	doc := Document{ID: s.newID(), Title: title, Content: content}
	err := s.mutate("create document", func(next *Snapshot) error {
		if s.findDocument(next, doc.ID) >= 0 {
			return invalid("create document", "id %q already in use", doc.ID)
		}
		next.Documents = append(next.Documents, doc)
		next.VocabularyTables[doc.ID] = s.newTable(doc.ID, title)
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return Document{}, err
	}
	s.publish(Event{Kind: DocumentCreated, DocumentID: doc.ID})
	return doc, nil
}

func (s *Store) newTable(documentID, title string) VocabularyTable {
	name := strings.TrimSpace(title + " vocabulary")
	return VocabularyTable{
		ID:         s.newID(),
		DocumentID: documentID,
		Name:       name,
		Entries:    []WordEntry{},
	}
}

// UpdateContent replaces the text of a document.
func (s *Store) UpdateContent(id, content string) error {
	s.mu.Lock()
	err := s.mutate("update content", func(next *Snapshot) error {
		i := s.findDocument(next, id)
		if i < 0 {
			return invalid("update content", "unknown document %q", id)
		}
		next.Documents[i].Content = content
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Kind: DocumentUpdated, DocumentID: id})
	return nil
}

// SetPosition records the page the reader last viewed. Recording the page
// already stored does not write.
func (s *Store) SetPosition(id string, page int) error {
	if page < 0 {
		return invalid("set position", "page must not be negative, got %d", page)
	}
	s.mu.Lock()
	if i := s.findDocument(&s.state, id); i >= 0 && s.state.Documents[i].Position == page {
		s.mu.Unlock()
		return nil
	}
	err := s.mutate("set position", func(next *Snapshot) error {
		i := s.findDocument(next, id)
		if i < 0 {
			return invalid("set position", "unknown document %q", id)
		}
		next.Documents[i].Position = page
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Kind: DocumentUpdated, DocumentID: id})
	return nil
}

// DeleteDocument removes a document together with its vocabulary and preview
// tables. Deleting an unknown document is a no-op.
func (s *Store) DeleteDocument(id string) error {
	s.mu.Lock()
	if s.findDocument(&s.state, id) < 0 {
		s.mu.Unlock()
		return nil
	}
	err := s.mutate("delete document", func(next *Snapshot) error {
		i := s.findDocument(next, id)
		next.Documents = append(next.Documents[:i], next.Documents[i+1:]...)
		delete(next.VocabularyTables, id)
		return nil
	})
	if err == nil {
		delete(s.preview, id)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Kind: DocumentDeleted, DocumentID: id})
	return nil
}

// DeleteVocabularyTable removes the saved table of a document, leaving the
// document in place. It is a no-op when there is no table.
func (s *Store) DeleteVocabularyTable(documentID string) error {
	s.mu.Lock()
	if _, ok := s.state.VocabularyTables[documentID]; !ok {
		s.mu.Unlock()
		return nil
	}
	err := s.mutate("delete vocabulary table", func(next *Snapshot) error {
		delete(next.VocabularyTables, documentID)
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Kind: TableDeleted, DocumentID: documentID})
	return nil
}

// ReplaceVocabularyTable swaps all saved entries of a document's table.
// Entries are re-keyed and merged so the table keeps one entry per
// normalized form. It fails with a validation error when the document has
// no table.
func (s *Store) ReplaceVocabularyTable(documentID string, entries []WordEntry) error {
	const op = "replace vocabulary table"
	s.mu.Lock()
	prepared := prepareEntries(entries, s.lang, s.now().UnixMilli())
	err := s.mutate(op, func(next *Snapshot) error {
		t, ok := next.VocabularyTables[documentID]
		if !ok {
			return invalid(op, "no vocabulary table for document %q", documentID)
		}
		t.Entries = prepared
		next.VocabularyTables[documentID] = t
		return nil
	})
	if err == nil {
		s.dropPreviewOf(documentID, prepared)
		s.advanceStamp(latestOf(prepared))
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Kind: TableReplaced, DocumentID: documentID})
	return nil
}

// prepareEntries normalizes keys, merges duplicates and marks every entry as
// saved. Counts are clamped at zero and timestamps at now, with lastSeenAt
// never before firstAddedAt. Entries without a usable key are dropped.
func prepareEntries(entries []WordEntry, lang readerer.Language, now int64) []WordEntry {
	out := make([]WordEntry, 0, len(entries))
	pos := make(map[string]int, len(entries))
	for _, e := range entries {
		key := readerer.Normalize(e.Original, lang)
		if key == "" {
			key = readerer.Clean(e.Normalized)
		}
		if key == "" {
			continue
		}
		e.Normalized = key
		if e.Original == "" {
			e.Original = key
		}
		e.IsSaved = true
		if e.Count < 0 {
			e.Count = 0
		}
		if e.FirstAddedAt > now {
			e.FirstAddedAt = now
		}
		if e.LastSeenAt > now {
			e.LastSeenAt = now
		}
		if e.LastSeenAt < e.FirstAddedAt {
			e.LastSeenAt = e.FirstAddedAt
		}
		if i, ok := pos[key]; ok {
			out[i] = mergeEntries(out[i], e)
			continue
		}
		pos[key] = len(out)
		out = append(out, e)
	}
	return out
}

func mergeEntries(a, b WordEntry) WordEntry {
	a.Count += b.Count
	if b.FirstAddedAt < a.FirstAddedAt {
		a.FirstAddedAt = b.FirstAddedAt
	}
	if b.LastSeenAt > a.LastSeenAt {
		a.LastSeenAt = b.LastSeenAt
	}
	if a.Sentence == "" {
		a.Sentence = b.Sentence
	}
	if a.Definition == "" {
		a.Definition = b.Definition
	}
	return a
}

// dropPreviewOf removes preview entries that now have a saved counterpart.
// Callers hold s.mu.
func (s *Store) dropPreviewOf(documentID string, saved []WordEntry) {
	staged := s.preview[documentID]
	if len(staged) == 0 {
		return
	}
	keys := Index(saved)
	kept := staged[:0]
	for _, e := range staged {
		if _, ok := keys[e.Normalized]; !ok {
			kept = append(kept, e)
		}
	}
	s.preview[documentID] = kept
}

// DeleteWord removes the saved entry with the given normalized key.
// It is a no-op when the entry or table does not exist.
func (s *Store) DeleteWord(documentID, normalized string) error {
	s.mu.Lock()
	t, ok := s.state.VocabularyTables[documentID]
	if !ok || findEntry(t.Entries, normalized) < 0 {
		s.mu.Unlock()
		return nil
	}
	err := s.mutate("delete word", func(next *Snapshot) error {
		t := next.VocabularyTables[documentID]
		i := findEntry(t.Entries, normalized)
		t.Entries = append(t.Entries[:i], t.Entries[i+1:]...)
		next.VocabularyTables[documentID] = t
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Kind: WordDeleted, DocumentID: documentID, Normalized: normalized})
	return nil
}

// SetDefinition attaches a definition to a saved entry. It is a no-op when
// the entry does not exist.
func (s *Store) SetDefinition(documentID, normalized, definition string) error {
	s.mu.Lock()
	t, ok := s.state.VocabularyTables[documentID]
	if !ok || findEntry(t.Entries, normalized) < 0 {
		s.mu.Unlock()
		return nil
	}
	err := s.mutate("set definition", func(next *Snapshot) error {
		t := next.VocabularyTables[documentID]
		t.Entries[findEntry(t.Entries, normalized)].Definition = definition
		next.VocabularyTables[documentID] = t
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Kind: WordUpdated, DocumentID: documentID, Normalized: normalized})
	return nil
}

// SetDefinitions attaches several definitions in one persisted mutation.
// Keys that are not saved in the table are skipped. It returns how many
// entries changed.
func (s *Store) SetDefinitions(documentID string, defs map[string]string) (int, error) {
	s.mu.Lock()
	t, ok := s.state.VocabularyTables[documentID]
	var changed []string
	if ok {
		for _, e := range t.Entries {
			if d, ok := defs[e.Normalized]; ok && d != e.Definition {
				changed = append(changed, e.Normalized)
			}
		}
	}
	if len(changed) == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	err := s.mutate("set definitions", func(next *Snapshot) error {
		t := next.VocabularyTables[documentID]
		for _, n := range changed {
			t.Entries[findEntry(t.Entries, n)].Definition = defs[n]
		}
		next.VocabularyTables[documentID] = t
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	for _, n := range changed {
		s.publish(Event{Kind: WordUpdated, DocumentID: documentID, Normalized: n})
	}
	return len(changed), nil
}

func findEntry(entries []WordEntry, normalized string) int {
	for i, e := range entries {
		if e.Normalized == normalized {
			return i
		}
	}
	return -1
}

// Snapshot returns a deep copy of the persisted state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Restore replaces the whole state with snap and clears every preview table.
// An inconsistent snapshot is rejected without changing anything.
func (s *Store) Restore(snap Snapshot) error {
	snap = snap.clone()
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	s.canonicalize(&snap)
	s.mu.Lock()
	err := s.mutate("restore", func(next *Snapshot) error {
		*next = snap
		return nil
	})
	if err == nil {
		s.preview = make(map[string][]WordEntry)
		s.advanceStamp(latestStamp(snap))
		s.reset = false
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Kind: Restored})
	return nil
}
