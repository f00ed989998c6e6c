// Package extract turns files and web pages into plain reading text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Result is the text extracted from a source plus a title when one was found.
type Result struct {
	Title  string
	Text   string
	Format string
}

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Extract(data []byte) (Result, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// ForExtension returns the registered format for ext (".md", ".html", ...).
func ForExtension(ext string) (Format, bool) {
	ext = strings.ToLower(ext)
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f, true
			}
		}
	}
	return nil, false
}

// FromFile extracts text from a file, using a registered format or the plain
// text fallback. The title defaults to the file name without extension.
func FromFile(filename string) (Result, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Result{}, err
	}
	ext := filepath.Ext(filename)
	f, ok := ForExtension(ext)
	if !ok {
		f = PlainFormat{}
	}
	res, err := extractWith(f, data)
	if err != nil {
		return Result{}, fmt.Errorf("extract %s: %w", filename, err)
	}
	if res.Title == "" {
		res.Title = strings.TrimSuffix(filepath.Base(filename), ext)
	}
	return res, nil
}

func extractWith(f Format, data []byte) (Result, error) {
	res, err := f.Extract(data)
	if err != nil {
		return Result{}, err
	}
	res.Format = f.Name()
	res.Text = cleanParagraphs(res.Text)
	return res, nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// cleanParagraphs normalizes line endings, trims each paragraph and keeps a
// single blank line between paragraphs.
func cleanParagraphs(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		lines := strings.Split(p, "\n")
		var kept []string
		for _, l := range lines {
			if l = strings.TrimSpace(l); l != "" {
				kept = append(kept, l)
			}
		}
		if len(kept) > 0 {
			paras = append(paras, strings.Join(kept, "\n"))
		}
	}
	return strings.Join(paras, "\n\n")
}

// PlainFormat reads text files as they are.
type PlainFormat struct{}

func init() {
	Register(PlainFormat{})
}

func (PlainFormat) Name() string         { return "Text" }
func (PlainFormat) Extensions() []string { return []string{".txt", ".text"} }

func (PlainFormat) Extract(data []byte) (Result, error) {
	return Result{Text: string(data)}, nil
}
