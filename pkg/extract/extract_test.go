package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Herons of the Marsh</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Herons of the Marsh</h1>
<p>The grey heron stands perfectly still at the edge of the reeds, waiting for a fish to pass within reach of its long and patient bill.</p>
<p>When the moment comes the strike is fast, and the heron swallows its catch whole before returning to its silent watch over the water.</p>
<p>Across the marsh, egrets gather in loose groups, their white feathers bright against the muddy banks and the slow brown current.</p>
</article>
<footer>Copyright nobody</footer>
</body></html>`

func TestCleanParagraphs(t *testing.T) {
	in := "  First line\r\n  continues  \r\n\r\n\r\n\n   \n\nSecond para  "
	want := "First line\ncontinues\n\nSecond para"
	if got := cleanParagraphs(in); got != want {
		t.Fatalf("cleanParagraphs = %q; want %q", got, want)
	}
}

func TestMarkdownExtract(t *testing.T) {
	md := "# A *Walk* in the Park\n\nSome **bold** words and a [link](http://x.y).\n\n## Part two\n- item one\n- item two\n\n```\ncode block\n```\n> quoted text\n"
	res, err := MarkdownFormat{}.Extract([]byte(md))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Title != "A Walk in the Park" {
		t.Errorf("unexpected title %q", res.Title)
	}
	text := cleanParagraphs(res.Text)
	for _, want := range []string{"Some bold words and a link.", "Part two", "item one", "quoted text"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
	for _, bad := range []string{"code block", "**", "](", "#"} {
		if strings.Contains(text, bad) {
			t.Errorf("unexpected %q in %q", bad, text)
		}
	}
}

func TestFromFileUsesExtensionAndDefaultTitle(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	os.WriteFile(txt, []byte("one two\n\n\nthree"), 0o644)
	res, err := FromFile(txt)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if res.Title != "notes" || res.Format != "Text" || res.Text != "one two\n\nthree" {
		t.Fatalf("unexpected result %+v", res)
	}

	// unknown extensions fall back to plain text
	other := filepath.Join(dir, "story.log")
	os.WriteFile(other, []byte("plain"), 0o644)
	res, err = FromFile(other)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if res.Format != "Text" || res.Text != "plain" {
		t.Fatalf("unexpected fallback result %+v", res)
	}

	if _, err := FromFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestForExtension(t *testing.T) {
	for ext, name := range map[string]string{".MD": "Markdown", ".html": "HTML", ".epub": "EPUB", ".txt": "Text"} {
		f, ok := ForExtension(ext)
		if !ok || f.Name() != name {
			t.Errorf("ForExtension(%q) = %v, %v; want %s", ext, f, ok, name)
		}
	}
	if _, ok := ForExtension(".pdf"); ok {
		t.Errorf("did not expect a format for .pdf")
	}
	if len(SupportedFormats()) < 4 {
		t.Errorf("expected at least 4 formats, got %v", SupportedFormats())
	}
}

func TestSanitizeRuby(t *testing.T) {
	in := []byte(`<ruby>漢<rp>(</rp><rt>kan</rt>字<RT class="x">ji</RT></ruby>`)
	if got := string(SanitizeRuby(in)); got != "<ruby>漢字</ruby>" {
		t.Fatalf("SanitizeRuby = %q", got)
	}
}

func TestHTMLExtract(t *testing.T) {
	res, err := HTMLFormat{}.Extract([]byte(articleHTML))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(res.Title, "Herons") {
		t.Errorf("expected title to mention Herons, got %q", res.Title)
	}
	if !strings.Contains(res.Text, "The grey heron stands perfectly still") {
		t.Errorf("article text missing: %q", res.Text)
	}
	if strings.Contains(res.Text, "Copyright nobody") {
		t.Errorf("footer should be dropped: %q", res.Text)
	}
}

func TestBlockText(t *testing.T) {
	page := `<html><head><style>p{}</style></head><body><h2>Chapter 1</h2><p>It was a <em>dark</em>
	night.</p><p>The end<br>really.</p><script>alert(1)</script></body></html>`
	want := "Chapter 1\n\nIt was a dark night.\n\nThe end\n\nreally."
	if got := blockText([]byte(page)); got != want {
		t.Fatalf("blockText = %q; want %q", got, want)
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/a": true,
		"http://example.com":    true,
		"ftp://example.com":     false,
		"notes.txt":             false,
		"/tmp/a.html":           false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "no agent", http.StatusForbidden)
			return
		}
		switch r.URL.Path {
		case "/article":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(articleHTML))
		case "/plain.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte("Just words.\n\nMore words."))
		case "/big":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte(strings.Repeat("a", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher()
	ctx := context.Background()

	res, err := f.FromURL(ctx, srv.URL+"/article")
	if err != nil {
		t.Fatalf("article: %v", err)
	}
	if res.Format != "HTML" || !strings.Contains(res.Text, "egrets gather") {
		t.Fatalf("unexpected article result %+v", res)
	}

	res, err = f.FromURL(ctx, srv.URL+"/plain.txt")
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if res.Text != "Just words.\n\nMore words." || res.Title == "" {
		t.Fatalf("unexpected plain result %+v", res)
	}

	if _, err := f.FromURL(ctx, srv.URL+"/missing"); err == nil {
		t.Fatalf("expected error for 404")
	}
	if _, err := f.FromURL(ctx, "not a url"); err == nil {
		t.Fatalf("expected error for invalid url")
	}

	small := &Fetcher{Client: srv.Client(), MaxBody: 16}
	if _, err := small.FromURL(ctx, srv.URL+"/big"); err == nil {
		t.Fatalf("expected size limit error")
	}
}
