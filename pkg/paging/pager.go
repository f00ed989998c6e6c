package paging

// Pager holds the pagination state of the document in view.
// Current is 1-indexed and always within [1, Total] when there are pages,
// and 0 when there are none.
type Pager struct {
	pages   [][]string
	current int
}

// NewPager paginates text and positions the pager on the first page.
func NewPager(text string, wordsPerPage int) *Pager {
	return NewPagerFromPages(Paginate(text, wordsPerPage))
}

// NewPagerFromPages wraps pages that were already computed.
func NewPagerFromPages(pages [][]string) *Pager {
	p := &Pager{pages: pages}
	if len(pages) > 0 {
		p.current = 1
	}
	return p
}

// Total returns the number of pages.
func (p *Pager) Total() int { return len(p.pages) }

// Current returns the 1-indexed page in view.
func (p *Pager) Current() int { return p.current }

// Page returns a copy of the paragraphs of the page in view.
func (p *Pager) Page() []string {
	if p.current == 0 {
		return nil
	}
	page := p.pages[p.current-1]
	out := make([]string, len(page))
	copy(out, page)
	return out
}

// GoTo moves to page n, clamped to the valid range. It reports whether the
// page changed.
func (p *Pager) GoTo(n int) bool {
	if len(p.pages) == 0 {
		return false
	}
	if n < 1 {
		n = 1
	}
	if n > len(p.pages) {
		n = len(p.pages)
	}
	changed := n != p.current
	p.current = n
	return changed
}

// Next advances one page.
func (p *Pager) Next() bool { return p.GoTo(p.current + 1) }

// Prev goes back one page.
func (p *Pager) Prev() bool { return p.GoTo(p.current - 1) }

// AtEnd reports whether the last page is in view. A pager with no pages is
// never at the end.
func (p *Pager) AtEnd() bool { return len(p.pages) > 0 && p.current == len(p.pages) }

// Progress returns the reading progress percentage.
func (p *Pager) Progress() int { return ProgressPercent(p.current, len(p.pages)) }
