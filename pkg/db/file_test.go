package db

import (
	"os"
	"testing"
)

func TestFileKVRoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	if _, ok, err := kv.Get("vocabreader/state"); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := kv.Put("vocabreader/state", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok, err := kv.Get("vocabreader/state")
	if err != nil || !ok || string(v) != `{"x":1}` {
		t.Fatalf("unexpected get: %q ok=%v err=%v", v, ok, err)
	}
	if err := kv.Delete("vocabreader/state"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get("vocabreader/state"); ok {
		t.Fatalf("expected key gone")
	}
}

func TestFileKVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := kv.Put("k", []byte("v")); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "k.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only k.json, got %v", names)
	}
}
