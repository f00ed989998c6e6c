package vocab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ExportTable writes the saved entries of a document as an indented JSON array.
func (s *Store) ExportTable(documentID string, w io.Writer) error {
	t, ok := s.VocabularyTable(documentID)
	if !ok {
		return invalid("export table", "no vocabulary table for document %q", documentID)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Entries); err != nil {
		return fmt.Errorf("export table: %w", err)
	}
	return nil
}

// importedEntry accepts the current entry shape and the older {word, count}
// shape that used "word" instead of "original".
type importedEntry struct {
	WordEntry
	Word string `json:"word"`
}

// DecodeEntries parses an exported table. The top-level value must be a JSON array.
func DecodeEntries(r io.Reader) ([]WordEntry, error) {
	const op = "import table"
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", op, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, invalid(op, "expected a JSON array of entries")
	}
	var raw []importedEntry
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, invalid(op, "malformed entries: %v", err)
	}
	entries := make([]WordEntry, 0, len(raw))
	for _, e := range raw {
		if e.Original == "" {
			e.Original = e.Word
		}
		entries = append(entries, e.WordEntry)
	}
	return entries, nil
}

// ImportTable replaces a document's saved table with the entries read from r.
// Nothing changes if the payload is not an array, or if it holds entries but
// none of them has a usable word.
func (s *Store) ImportTable(documentID string, r io.Reader) (int, error) {
	entries, err := DecodeEntries(r)
	if err != nil {
		return 0, err
	}
	usable := len(prepareEntries(entries, s.lang, s.now().UnixMilli()))
	if len(entries) > 0 && usable == 0 {
		return 0, invalid("import table", "no entry has a usable word")
	}
	if err := s.ReplaceVocabularyTable(documentID, entries); err != nil {
		return 0, err
	}
	return usable, nil
}
