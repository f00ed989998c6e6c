// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/japaniel/vocabreader/pkg/paging"
	"github.com/japaniel/vocabreader/pkg/readerer"
	"github.com/japaniel/vocabreader/pkg/render"
	"github.com/japaniel/vocabreader/pkg/vocab"
)

type inputMode int

const (
	modeRead inputMode = iota
	modeAdd
	modePreview
	modeRemove
)

func (m inputMode) prompt() string {
	switch m {
	case modeAdd:
		return "Save word: "
	case modePreview:
		return "Preview word: "
	case modeRemove:
		return "Remove word: "
	default:
		return ""
	}
}

// storeChangedMsg is sent when the store publishes an event for the
// document in view.
type storeChangedMsg struct{ ev vocab.Event }

// Model implements the Bubble Tea reading UI.
type Model struct {
	store    *vocab.Store
	doc      vocab.Document
	pager    *paging.Pager
	renderer *render.Renderer

	width  int
	height int

	body  viewport.Model
	input textinput.Model
	mode  inputMode

	status string
	errMsg string

	events chan vocab.Event
	cancel func()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a reader for doc. The pager is positioned on the
// document's saved page.
func NewModel(store *vocab.Store, doc vocab.Document, wordsPerPage int, renderer *render.Renderer) *Model {
	if renderer == nil {
		renderer = &render.Renderer{}
	}
	if renderer.Lang == "" {
		renderer.Lang = readerer.English
	}
	m := &Model{
		store:    store,
		doc:      doc,
		pager:    paging.NewPager(doc.Content, wordsPerPage),
		renderer: renderer,
		body:     viewport.New(0, 0),
		input:    textinput.New(),
		events:   make(chan vocab.Event, 16),
	}
	if doc.Position > 0 {
		m.pager.GoTo(doc.Position)
	}
	m.cancel = store.Subscribe(func(ev vocab.Event) {
		if ev.DocumentID != doc.ID {
			return
		}
		select {
		case m.events <- ev:
		default:
		}
	})
	m.refresh()
	return m
}

// Close unsubscribes from the store.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return storeChangedMsg{ev: <-m.events}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.refresh()
		return m, nil
	case storeChangedMsg:
		if msg.ev.Kind == vocab.DocumentDeleted {
			m.errMsg = "document was deleted"
		}
		m.refresh()
		return m, m.waitForEvent()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.leave()
			return m, tea.Quit
		}
		if m.mode != modeRead {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "q", "esc":
			m.leave()
			return m, tea.Quit
		case "right", "n", "pgdown", " ":
			m.turn(m.pager.Next)
			return m, nil
		case "left", "p", "pgup":
			m.turn(m.pager.Prev)
			return m, nil
		case "g", "home":
			m.turn(func() bool { return m.pager.GoTo(1) })
			return m, nil
		case "G", "end":
			m.turn(func() bool { return m.pager.GoTo(m.pager.Total()) })
			return m, nil
		case "a":
			return m.startInput(modeAdd)
		case "l":
			return m.startInput(modePreview)
		case "x":
			return m.startInput(modeRemove)
		case "c":
			m.store.ClearPreview(m.doc.ID)
			m.status = "preview cleared"
			return m, nil
		default:
			var cmd tea.Cmd
			m.body, cmd = m.body.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// turn moves the pager, drops the preview and remembers the new page.
func (m *Model) turn(move func() bool) {
	if !move() {
		return
	}
	m.store.ClearPreview(m.doc.ID)
	if err := m.store.SetPosition(m.doc.ID, m.pager.Current()); err != nil {
		m.errMsg = err.Error()
	}
	m.status = ""
	m.body.GotoTop()
	m.refresh()
}

// leave drops the preview so staged words never outlive the session.
func (m *Model) leave() {
	m.store.ClearPreview(m.doc.ID)
	m.Close()
}

func (m *Model) startInput(mode inputMode) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Reset()
	m.input.Prompt = mode.prompt()
	m.errMsg = ""
	return m, m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeRead
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		word := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = modeRead
		m.input.Blur()
		if word != "" {
			m.apply(mode, word)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply runs the action of an input mode on word.
func (m *Model) apply(mode inputMode, word string) {
	switch mode {
	case modeRemove:
		normalized := readerer.Normalize(word, m.renderer.Lang)
		if err := m.store.DeleteWord(m.doc.ID, normalized); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.status = fmt.Sprintf("removed %q", normalized)
	default:
		sentence := readerer.SentenceContaining(strings.Join(m.pager.Page(), "\n\n"), word)
		entry, outcome, err := m.store.ObserveWord(m.doc.ID, word, sentence, vocab.ObserveOptions{Commit: mode == modeAdd})
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.status = describe(entry, outcome)
	}
	m.refresh()
}

func describe(entry vocab.WordEntry, outcome vocab.Outcome) string {
	switch outcome {
	case vocab.Saved:
		return fmt.Sprintf("saved %q (seen %d)", entry.Normalized, entry.Count)
	case vocab.AlreadySaved:
		return fmt.Sprintf("%q is already saved", entry.Normalized)
	case vocab.Previewed:
		return fmt.Sprintf("previewing %q", entry.Normalized)
	default:
		return "nothing to save"
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.body.Width = m.width
	m.body.Height = maxInt(1, m.height-3)
	m.renderer.Width = m.width
	m.input.Width = maxInt(10, m.width-lipgloss.Width(m.input.Prompt)-2)
}

func (m *Model) refresh() {
	view := m.store.View(m.doc.ID, m.pager.Page())
	content := m.renderer.Page(view)
	if m.pager.Total() == 0 {
		content = "This document is empty."
	}
	m.body.SetContent(content)
}

// View implements tea.Model.
func (m *Model) View() string {
	header := titleStyle.Render(m.doc.Title)
	var footer string
	switch {
	case m.mode != modeRead:
		footer = m.input.View()
	case m.errMsg != "":
		footer = errorStyle.Render(m.errMsg)
	default:
		help := "next: n/→  prev: p/←  save: a  preview: l  remove: x  clear: c  quit: q"
		if m.status != "" {
			help = m.status + "  |  " + help
		}
		footer = footerStyle.Render(help)
	}
	status := footerStyle.Render(render.Status(m.doc.Title, m.pager.Current(), m.pager.Total()))
	return strings.Join([]string{header, m.body.View(), status, footer}, "\n")
}

// Page returns the 1-indexed page in view.
func (m *Model) Page() int { return m.pager.Current() }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
