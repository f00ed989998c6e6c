package dictionary

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureFile_LocalCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// An existing file must not trigger a download, so an unusable source is fine.
	if err := EnsureFile(context.Background(), path, "http://127.0.0.1:0/unused"); err != nil {
		t.Fatalf("EnsureFile failed with local file: %v", err)
	}
}

func TestEnsureFile_NoSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	if err := EnsureFile(context.Background(), path, ""); err == nil {
		t.Fatalf("expected error when file is missing and no source is set")
	}
}

func TestEnsureFile_DownloadsGzip(t *testing.T) {
	payload := `[{"word":"heron","definitions":["a wading bird"]}]`
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(payload))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "sub", "dict.json")
	if err := EnsureFile(context.Background(), path, srv.URL+"/words.json.gz"); err != nil {
		t.Fatalf("EnsureFile: %v", err)
	}
	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(entries) != 1 || entries[0].Definition() != "a wading bird" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestEnsureFile_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "dict.json")
	if err := EnsureFile(context.Background(), path, srv.URL+"/words.json"); err == nil {
		t.Fatalf("expected error on bad status")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file after failed download, stat err=%v", err)
	}
}
