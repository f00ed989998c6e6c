package main

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/japaniel/vocabreader/pkg/paging"
	"github.com/japaniel/vocabreader/pkg/render"
	"github.com/japaniel/vocabreader/pkg/tui"
)

var (
	docTitle string

	readPage         int
	readPlain        bool
	readInteractive  bool
	readWordsPerPage int
	readHighlight    string
	readWidth        int
)

func newDocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Manage documents",
	}

	add := &cobra.Command{
		Use:   "add <file|url>",
		Short: "Import a document from a file or web page",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocAddCmd,
	}
	add.Flags().StringVar(&docTitle, "title", "", "document title (default: extracted title)")

	cmd.AddCommand(add)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE:  runDocListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "update <id> <file|url>",
		Short: "Replace the text of a document",
		Args:  cobra.ExactArgs(2),
		RunE:  runDocUpdateCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a document and its vocabulary",
		Args:    cobra.ExactArgs(1),
		RunE:    runDocRmCmd,
	})
	return cmd
}

func runDocAddCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := readSource(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}
	title := res.Title
	if docTitle != "" {
		title = docTitle
	}
	doc, err := sess.store.CreateDocument(title, res.Text)
	if err != nil {
		return err
	}
	pages := len(paging.Paginate(doc.Content, sess.settings.WordsPerPage))
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s, %d pages) with id %s\n", doc.Title, res.Format, pages, doc.ID)
	return nil
}

func runDocListCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	docs := sess.store.Documents()
	if len(docs) == 0 {
		logErrln("No documents yet. Import one with: vocabreader doc add <file|url>")
		return nil
	}
	t := newTable("ID", "TITLE", "PAGE", "WORDS")
	for _, d := range docs {
		saved := 0
		if vt, ok := sess.store.VocabularyTable(d.ID); ok {
			saved = len(vt.Entries)
		}
		total := len(paging.Paginate(d.Content, sess.settings.WordsPerPage))
		t.Row(d.ID, d.Title, pageLabel(d.Position, total), strconv.Itoa(saved))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}

func runDocUpdateCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}
	res, err := readSource(cmd.Context(), args[1])
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[1], err)
	}
	if err := sess.store.UpdateContent(doc.ID, res.Text); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", doc.Title)
	return nil
}

func runDocRmCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}
	if err := sess.store.DeleteDocument(doc.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", doc.Title)
	return nil
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Show a page with saved words highlighted",
		Args:  cobra.ExactArgs(1),
		RunE:  runReadCmd,
	}
	cmd.Flags().IntVar(&readPage, "page", 0, "page to show (default: last page read)")
	cmd.Flags().BoolVar(&readPlain, "plain", false, "mark words with brackets instead of colors")
	cmd.Flags().BoolVarP(&readInteractive, "interactive", "i", false, "open the interactive reader")
	cmd.Flags().IntVar(&readWordsPerPage, "words-per-page", paging.DefaultWordsPerPage, "words per page")
	cmd.Flags().StringVar(&readHighlight, "highlight", string(render.Discrete), "highlight scale (discrete or continuous)")
	cmd.Flags().IntVar(&readWidth, "width", 0, "wrap width (default: terminal width)")
	return cmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	settings := sess.settings

	applyIntFlag(cmd, "words-per-page", &settings.WordsPerPage, readWordsPerPage)
	applyIntFlag(cmd, "width", &settings.Width, readWidth)
	if cmd.Flags().Changed("highlight") {
		mode, err := render.ParseMode(readHighlight)
		if err != nil {
			return err
		}
		settings.Highlight = mode
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	renderer := &render.Renderer{
		Mode:  settings.Highlight,
		Lang:  settings.Lang,
		Plain: readPlain || !tty,
		Width: settings.Width,
	}
	if renderer.Width == 0 && tty {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			renderer.Width = w
		}
	}

	if readInteractive {
		if readPage > 0 {
			doc.Position = readPage
		}
		model := tui.NewModel(sess.store, doc, settings.WordsPerPage, renderer)
		defer model.Close()
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run reader: %w", err)
		}
		return nil
	}

	pager := paging.NewPager(doc.Content, settings.WordsPerPage)
	if cmd.Flags().Changed("page") {
		if readPage < 1 || readPage > pager.Total() {
			return fmt.Errorf("page %d out of range (document has %d pages)", readPage, pager.Total())
		}
		pager.GoTo(readPage)
	} else if doc.Position > 0 {
		pager.GoTo(doc.Position)
	}

	out := cmd.OutOrStdout()
	if pager.Total() == 0 {
		fmt.Fprintln(out, render.Status(doc.Title, 0, 0))
		return nil
	}
	fmt.Fprintln(out, renderer.Page(sess.store.View(doc.ID, pager.Page())))
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.Status(doc.Title, pager.Current(), pager.Total()))
	return sess.store.SetPosition(doc.ID, pager.Current())
}

func pageLabel(position, total int) string {
	if total == 0 {
		return "empty"
	}
	if position == 0 {
		return "new"
	}
	return fmt.Sprintf("%d/%d", position, total)
}

// newTable returns a borderless table in the style used by list commands.
func newTable(headers ...string) *table.Table {
	header := lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cell := lipgloss.NewStyle().PaddingRight(2)
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
