package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(EPUBFormat{})
}

func (EPUBFormat) Name() string         { return "EPUB" }
func (EPUBFormat) Extensions() []string { return []string{".epub"} }

// Extract reads the spine in order and keeps one paragraph per block element.
func (EPUBFormat) Extract(data []byte) (Result, error) {
	rc, err := epub.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("failed to open epub: %w", err)
	}
	if len(rc.Rootfiles) == 0 {
		return Result{}, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	var parts []string
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		chapter, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		if text := blockText(chapter); text != "" {
			parts = append(parts, text)
		}
	}
	return Result{Title: strings.TrimSpace(book.Title), Text: strings.Join(parts, "\n\n")}, nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "pre": true, "tr": true, "dt": true, "dd": true,
}

// blockText flattens an XHTML document into paragraphs separated by blank
// lines. Script and style contents are skipped.
func blockText(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(SanitizeRuby(data)))
	if err != nil {
		return ""
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			out.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || n.Data == "head" {
				return
			}
			if blockElements[n.Data] {
				out.WriteString("\n\n")
				defer out.WriteString("\n\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var paras []string
	for _, p := range strings.Split(out.String(), "\n\n") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			paras = append(paras, p)
		}
	}
	return strings.Join(paras, "\n\n")
}
