package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/japaniel/vocabreader/pkg/paging"
	"github.com/japaniel/vocabreader/pkg/readerer"
	"github.com/japaniel/vocabreader/pkg/vocab"
)

// Renderer turns a vocab.PageView into terminal text.
type Renderer struct {
	Mode Mode
	Lang readerer.Language
	// Plain marks words with brackets instead of colors: [saved] and {preview}.
	Plain bool
	// Width wraps lines at this display width. 0 disables wrapping.
	Width int
	// Styles is the lipgloss renderer used for colors; nil means the default.
	Styles *lipgloss.Renderer
}

func (r *Renderer) style() lipgloss.Style {
	if r.Styles != nil {
		return r.Styles.NewStyle()
	}
	return lipgloss.NewStyle()
}

// Highlight classifies a word token against the page's saved and preview
// entries.
type Highlight int

const (
	None Highlight = iota
	Saved
	Preview
)

// Classify returns the highlight of one word and the saved count when it is
// saved.
func Classify(word string, lang readerer.Language, saved, preview map[string]vocab.WordEntry) (Highlight, int) {
	key := readerer.Normalize(word, lang)
	if key == "" {
		return None, 0
	}
	if _, ok := preview[key]; ok {
		return Preview, 0
	}
	if e, ok := saved[key]; ok {
		return Saved, e.Count
	}
	return None, 0
}

// Page renders every paragraph of the view, separated by blank lines.
func (r *Renderer) Page(view vocab.PageView) string {
	out := make([]string, 0, len(view.Paragraphs))
	for _, p := range view.Paragraphs {
		out = append(out, r.paragraph(p, view.Saved, view.Preview))
	}
	return strings.Join(out, "\n\n")
}

func (r *Renderer) paragraph(text string, saved, preview map[string]vocab.WordEntry) string {
	var sb strings.Builder
	col := 0
	pendingSpace := ""

	for _, tok := range readerer.Tokenize(text) {
		if tok.Kind == readerer.Whitespace {
			if strings.Contains(tok.Text, "\n") {
				sb.WriteString("\n")
				col = 0
				pendingSpace = ""
				continue
			}
			pendingSpace = " "
			continue
		}

		display, width := r.token(tok, saved, preview)
		if pendingSpace != "" {
			if r.Width > 0 && col > 0 && col+1+width > r.Width && tok.Kind == readerer.Word {
				sb.WriteString("\n")
				col = 0
			} else if col > 0 {
				sb.WriteString(pendingSpace)
				col++
			}
			pendingSpace = ""
		}
		sb.WriteString(display)
		col += width
	}
	return sb.String()
}

// token returns the rendered token and its display width before styling.
func (r *Renderer) token(tok readerer.Token, saved, preview map[string]vocab.WordEntry) (string, int) {
	width := runewidth.StringWidth(tok.Text)
	if tok.Kind != readerer.Word {
		return tok.Text, width
	}
	h, count := Classify(tok.Text, r.Lang, saved, preview)
	switch h {
	case Preview:
		if r.Plain {
			return "{" + tok.Text + "}", width + 2
		}
		return r.style().Background(lipgloss.Color(PreviewColor())).Foreground(lipgloss.Color("#000000")).Render(tok.Text), width
	case Saved:
		if r.Plain {
			return "[" + tok.Text + "]", width + 2
		}
		return r.style().Background(lipgloss.Color(SavedColor(count, r.Mode))).Foreground(lipgloss.Color("#000000")).Render(tok.Text), width
	default:
		return tok.Text, width
	}
}

// Status returns the footer line shown under a page.
func Status(title string, page, total int) string {
	return title + "  " + progressLabel(page, total)
}

func progressLabel(page, total int) string {
	if total <= 0 {
		return "empty"
	}
	return "page " + strconv.Itoa(page) + "/" + strconv.Itoa(total) + " (" + strconv.Itoa(paging.ProgressPercent(page, total)) + "%)"
}
