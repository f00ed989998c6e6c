package vocab

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSortedDoesNotMutateInput(t *testing.T) {
	entries := []WordEntry{
		{Normalized: "owl", Count: 2, FirstAddedAt: 3, LastSeenAt: 9},
		{Normalized: "bat", Count: 5, FirstAddedAt: 1, LastSeenAt: 4},
		{Normalized: "cat", Count: 2, FirstAddedAt: 2, LastSeenAt: 7},
	}
	tests := []struct {
		by   SortBy
		desc bool
		want string
	}{
		{ByFirstSeen, false, "bat cat owl"},
		{ByLastSeen, true, "owl cat bat"},
		{ByCount, true, "bat cat owl"},
		{ByCount, false, "cat owl bat"},
		{ByAlpha, false, "bat cat owl"},
		{ByAlpha, true, "owl cat bat"},
	}
	for _, tt := range tests {
		var keys []string
		for _, e := range Sorted(entries, tt.by, tt.desc) {
			keys = append(keys, e.Normalized)
		}
		if got := strings.Join(keys, " "); got != tt.want {
			t.Errorf("Sorted(%s, desc=%v) = %q; want %q", tt.by, tt.desc, got, tt.want)
		}
	}
	if entries[0].Normalized != "owl" {
		t.Fatalf("Sorted reordered its input")
	}
}

func TestParseSortBy(t *testing.T) {
	if by, err := ParseSortBy("COUNT"); err != nil || by != ByCount {
		t.Fatalf("expected count, got %q %v", by, err)
	}
	if by, err := ParseSortBy(""); err != nil || by != ByFirstSeen {
		t.Fatalf("expected default first, got %q %v", by, err)
	}
	if _, err := ParseSortBy("random"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestViewIsACopy(t *testing.T) {
	s := newTestStore(t, nil)
	doc := mustCreate(t, s, "Title", "")
	s.ObserveWord(doc.ID, "cats", "", ObserveOptions{Commit: true})
	s.ObserveWord(doc.ID, "dogs", "", ObserveOptions{})

	paragraphs := []string{"Cats and dogs."}
	view := s.View(doc.ID, paragraphs)
	if _, ok := view.Saved["cat"]; !ok {
		t.Fatalf("expected cat in saved lookup, got %v", view.Saved)
	}
	if _, ok := view.Preview["dog"]; !ok {
		t.Fatalf("expected dog in preview lookup, got %v", view.Preview)
	}
	view.Saved["cat"] = WordEntry{Normalized: "cat", Count: 99}
	paragraphs[0] = "changed"
	again := s.View(doc.ID, nil)
	if again.Saved["cat"].Count != 1 || view.Paragraphs[0] != "Cats and dogs." {
		t.Fatalf("view leaked store state")
	}
}

func TestExportImportTable(t *testing.T) {
	s := newTestStore(t, nil)
	doc := mustCreate(t, s, "Title", "")
	s.ObserveWord(doc.ID, "herons", "Herons wade.", ObserveOptions{Commit: true})
	s.ObserveWord(doc.ID, "herons", "", ObserveOptions{Commit: true})

	var buf bytes.Buffer
	if err := s.ExportTable(doc.ID, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "[") {
		t.Fatalf("expected a JSON array, got %s", buf.String())
	}

	other := mustCreate(t, s, "Other", "")
	n, err := s.ImportTable(other.ID, &buf)
	if err != nil || n != 1 {
		t.Fatalf("import: %d %v", n, err)
	}
	table, _ := s.VocabularyTable(other.ID)
	if len(table.Entries) != 1 || table.Entries[0].Count != 2 || table.Entries[0].Sentence != "Herons wade." {
		t.Fatalf("unexpected imported table %+v", table)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	s := newTestStore(t, nil)
	doc := mustCreate(t, s, "Title", "")
	s.ObserveWord(doc.ID, "owl", "", ObserveOptions{Commit: true})

	for _, payload := range []string{`{"entries": []}`, `"owl"`, ``, `[{"original": 5}]`, `[{"original": "!!"}]`} {
		if _, err := s.ImportTable(doc.ID, strings.NewReader(payload)); !errors.Is(err, ErrValidation) {
			t.Errorf("payload %q: expected validation error, got %v", payload, err)
		}
	}
	table, _ := s.VocabularyTable(doc.ID)
	if len(table.Entries) != 1 || table.Entries[0].Normalized != "owl" {
		t.Fatalf("rejected imports must not change the table, got %+v", table.Entries)
	}
}

func TestImportLegacyShape(t *testing.T) {
	s := newTestStore(t, nil)
	doc := mustCreate(t, s, "Title", "")
	n, err := s.ImportTable(doc.ID, strings.NewReader(`[{"word": "Foxes", "count": 3, "sentence": "Foxes run."}]`))
	if err != nil || n != 1 {
		t.Fatalf("import: %d %v", n, err)
	}
	table, _ := s.VocabularyTable(doc.ID)
	e := table.Entries[0]
	if e.Original != "Foxes" || e.Normalized != "fox" || e.Count != 3 || !e.IsSaved {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestImportEmptyArrayClearsTable(t *testing.T) {
	s := newTestStore(t, nil)
	doc := mustCreate(t, s, "Title", "")
	s.ObserveWord(doc.ID, "owl", "", ObserveOptions{Commit: true})
	if _, err := s.ImportTable(doc.ID, strings.NewReader(" [] ")); err != nil {
		t.Fatal(err)
	}
	table, _ := s.VocabularyTable(doc.ID)
	if len(table.Entries) != 0 {
		t.Fatalf("expected empty table, got %+v", table.Entries)
	}
}
