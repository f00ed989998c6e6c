// Package paging groups text into pages under a word budget and tracks the
// page in view.
package paging

import (
	"math"
	"regexp"
	"strings"

	"github.com/japaniel/vocabreader/pkg/readerer"
)

// DefaultWordsPerPage is the page budget used when none is configured.
const DefaultWordsPerPage = 200

var blankLine = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

// Paragraphs splits text on blank lines, trimming each paragraph and dropping
// empty ones.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range blankLine.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WordCount returns the number of word tokens in s.
func WordCount(s string) int {
	return len(readerer.Words(s))
}

// Paginate greedily packs paragraphs into pages of at most wordsPerPage words.
// A paragraph is never split: one longer than the budget gets a page to itself.
// A budget <= 0 puts each paragraph on its own page.
func Paginate(text string, wordsPerPage int) [][]string {
	var pages [][]string
	var current []string
	count := 0

	for _, p := range Paragraphs(text) {
		n := WordCount(p)
		if len(current) > 0 && count+n > wordsPerPage {
			pages = append(pages, current)
			current = nil
			count = 0
		}
		current = append(current, p)
		count += n
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// ProgressPercent reports how far through the document the reader is, in [0,100].
func ProgressPercent(currentPage, totalPages int) int {
	if totalPages <= 0 || currentPage <= 0 {
		return 0
	}
	pct := int(math.Round(float64(currentPage) / float64(totalPages) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}
