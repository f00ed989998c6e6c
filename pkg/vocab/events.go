package vocab

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	DocumentCreated EventKind = "document-created"
	DocumentUpdated EventKind = "document-updated"
	DocumentDeleted EventKind = "document-deleted"
	TableDeleted    EventKind = "table-deleted"
	TableReplaced   EventKind = "table-replaced"
	WordSaved       EventKind = "word-saved"
	WordPreviewed   EventKind = "word-previewed"
	WordUpdated     EventKind = "word-updated"
	WordDeleted     EventKind = "word-deleted"
	PreviewCleared  EventKind = "preview-cleared"
	Restored        EventKind = "restored"
)

// Event is delivered to subscribers after a mutation has been applied.
type Event struct {
	Kind       EventKind
	DocumentID string
	Normalized string
}

// Subscribe registers fn to be called synchronously after every successful
// mutation. fn may read from the store. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
