package extract

import (
	"regexp"
	"strings"
)

// MarkdownFormat implements Format for Markdown files. Markup is stripped so
// only the prose reaches the reader; the first level-one header is the title.
type MarkdownFormat struct{}

func init() {
	Register(MarkdownFormat{})
}

func (MarkdownFormat) Name() string         { return "Markdown" }
func (MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

var (
	// headerRegex matches markdown headers (# to ######)
	headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`)
	imageRegex  = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRegex   = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	emphRegex   = regexp.MustCompile("(\\*\\*|__|\\*|_|`)")
	listRegex   = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+`)
	fenceRegex  = regexp.MustCompile("^\\s*(```|~~~)")
)

func (MarkdownFormat) Extract(data []byte) (Result, error) {
	var res Result
	var out []string
	inFence := false

	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if fenceRegex.MatchString(line) {
			inFence = !inFence
			out = append(out, "")
			continue
		}
		if inFence {
			continue
		}
		if match := headerRegex.FindStringSubmatch(line); match != nil {
			title := stripInline(match[2])
			if res.Title == "" && len(match[1]) == 1 {
				res.Title = title
			}
			// headers stand alone as paragraphs
			out = append(out, "", title, "")
			continue
		}
		line = strings.TrimPrefix(strings.TrimLeft(line, " \t"), ">")
		line = listRegex.ReplaceAllString(line, "")
		out = append(out, stripInline(line))
	}
	res.Text = strings.Join(out, "\n")
	return res, nil
}

func stripInline(s string) string {
	s = imageRegex.ReplaceAllString(s, "$1")
	s = linkRegex.ReplaceAllString(s, "$1")
	s = emphRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
