package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/japaniel/vocabreader/pkg/render"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Reading.WordsPerPage != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigAndResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[storage]
backend = "file"

[reading]
words-per-page = 120
highlight = "continuous"

[dictionary]
timeout = "3s"
workers = 2
offline = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_STATE_HOME", "/state")

	fc, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	s, err := Resolve(fc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.Backend != BackendFile || s.StoragePath != filepath.Join("/state", "vocabreader") {
		t.Errorf("unexpected storage %q %q", s.Backend, s.StoragePath)
	}
	if s.WordsPerPage != 120 || s.Highlight != render.Continuous {
		t.Errorf("unexpected reading settings %+v", s)
	}
	if s.DictTimeout != 3*time.Second || s.DictWorkers != 2 || !s.Offline {
		t.Errorf("unexpected dictionary settings %+v", s)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[reading]\nwords = 3\n"), 0o644)
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "reading.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestResolveValidation(t *testing.T) {
	zero := 0
	bad := "redis"
	lang := "fr"
	mode := "neon"
	timeout := "soon"
	tests := []struct {
		name string
		fc   FileConfig
	}{
		{"words", FileConfig{Reading: ReadingConfig{WordsPerPage: &zero}}},
		{"backend", FileConfig{Storage: StorageConfig{Backend: &bad}}},
		{"lang", FileConfig{Reading: ReadingConfig{Lang: &lang}}},
		{"highlight", FileConfig{Reading: ReadingConfig{Highlight: &mode}}},
		{"timeout", FileConfig{Dictionary: DictionaryConfig{Timeout: &timeout}}},
		{"workers", FileConfig{Dictionary: DictionaryConfig{Workers: &zero}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Resolve(tt.fc); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	s, err := Resolve(FileConfig{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.Backend != BackendSQLite || s.StoragePath != filepath.Join("/data", "vocabreader", "vocabreader.db") {
		t.Errorf("unexpected storage defaults %+v", s)
	}
	if s.WordsPerPage != 200 || s.Highlight != render.Discrete {
		t.Errorf("unexpected reading defaults %+v", s)
	}
}

func TestXDGHelpers(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "vocabreader", "config.toml") {
		t.Errorf("DefaultConfigPath = %q", got)
	}
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "/home/reader")
	if got := XDGStateHome(); got != filepath.Join("/home/reader", ".local", "state") {
		t.Errorf("XDGStateHome = %q", got)
	}
}

func TestTemplateDecodesWhenUncommented(t *testing.T) {
	var lines []string
	for _, l := range strings.Split(Template(), "\n") {
		if strings.HasPrefix(l, "# ") && strings.Contains(l, " = ") {
			l = strings.TrimPrefix(l, "# ")
		}
		lines = append(lines, l)
	}
	var fc FileConfig
	md, err := toml.Decode(strings.Join(lines, "\n"), &fc)
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if len(md.Undecoded()) != 0 {
		t.Fatalf("template has unknown keys: %v", md.Undecoded())
	}
	if _, err := Resolve(fc); err != nil {
		t.Fatalf("template values invalid: %v", err)
	}
}
