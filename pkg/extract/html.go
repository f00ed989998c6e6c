package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

var (
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes <rt> and <rp> annotations so ruby text is not read
// twice.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}

// HTMLFormat implements Format for saved web pages. The main article is
// located with readability; navigation and other boilerplate are dropped.
type HTMLFormat struct{}

func init() {
	Register(HTMLFormat{})
}

func (HTMLFormat) Name() string         { return "HTML" }
func (HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (HTMLFormat) Extract(data []byte) (Result, error) {
	return fromHTML(data, &url.URL{Scheme: "file", Path: "/"})
}

func fromHTML(data []byte, pageURL *url.URL) (Result, error) {
	article, err := readability.FromReader(bytes.NewReader(SanitizeRuby(data)), pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract article: %w", err)
	}
	return Result{
		Title: strings.TrimSpace(article.Title),
		Text:  linesToParagraphs(article.TextContent),
	}, nil
}

// linesToParagraphs treats every non-empty line of article text as its own
// paragraph, since block elements end up on separate lines.
func linesToParagraphs(text string) string {
	var paras []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			paras = append(paras, line)
		}
	}
	return strings.Join(paras, "\n\n")
}
