package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/japaniel/vocabreader/pkg/readerer"
	"github.com/japaniel/vocabreader/pkg/render"
	"github.com/japaniel/vocabreader/pkg/vocab"
)

var (
	wordSentence string

	vocabSort string
	vocabDesc bool
)

func newWordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "word",
		Short: "Save or remove words",
	}

	add := &cobra.Command{
		Use:   "add <id> <word>",
		Short: "Save a word to the document's vocabulary table",
		Long: `Save a word to the document's vocabulary table.

Each call is committed at once. Staging words before committing them
happens in "read --interactive", where previews live for the session.`,
		Args: cobra.ExactArgs(2),
		RunE: runWordAddCmd,
	}
	add.Flags().StringVar(&wordSentence, "sentence", "", "example sentence (default: first sentence of the document using the word)")

	cmd.AddCommand(add)
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id> <word>",
		Aliases: []string{"remove"},
		Short:   "Remove a saved word",
		Args:    cobra.ExactArgs(2),
		RunE:    runWordRmCmd,
	})
	return cmd
}

func runWordAddCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}
	word := args[1]
	sentence := wordSentence
	if sentence == "" {
		sentence = readerer.SentenceContaining(doc.Content, word)
	}
	entry, outcome, err := sess.store.ObserveWord(doc.ID, word, sentence, vocab.ObserveOptions{Commit: true})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch outcome {
	case vocab.Dropped:
		return fmt.Errorf("%q has no letters to save", word)
	case vocab.AlreadySaved:
		fmt.Fprintf(out, "%q is already saved (seen %d times)\n", entry.Normalized, entry.Count)
	default:
		fmt.Fprintf(out, "Saved %q (seen %d times)\n", entry.Normalized, entry.Count)
	}
	return nil
}

func runWordRmCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}
	normalized := readerer.Normalize(args[1], sess.settings.Lang)
	table, _ := sess.store.VocabularyTable(doc.ID)
	if _, ok := vocab.Index(table.Entries)[normalized]; !ok {
		return fmt.Errorf("%q is not saved in %q", normalized, doc.Title)
	}
	if err := sess.store.DeleteWord(doc.ID, normalized); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", normalized)
	return nil
}

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect and transfer vocabulary tables",
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "List the saved words of a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runVocabShowCmd,
	}
	show.Flags().StringVar(&vocabSort, "sort", string(vocab.ByFirstSeen), "sort by count, first, last or alpha")
	show.Flags().BoolVar(&vocabDesc, "desc", false, "sort descending")

	cmd.AddCommand(show)
	cmd.AddCommand(&cobra.Command{
		Use:   "export <id> <file>",
		Short: "Write the saved words as JSON (\"-\" for stdout)",
		Args:  cobra.ExactArgs(2),
		RunE:  runVocabExportCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <id> <file>",
		Short: "Replace the saved words with an exported JSON file",
		Args:  cobra.ExactArgs(2),
		RunE:  runVocabImportCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete the vocabulary table of a document",
		Args:    cobra.ExactArgs(1),
		RunE:    runVocabRmCmd,
	})
	return cmd
}

func runVocabShowCmd(cmd *cobra.Command, args []string) error {
	by, err := vocab.ParseSortBy(vocabSort)
	if err != nil {
		return err
	}
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}
	vt, ok := sess.store.VocabularyTable(doc.ID)
	if !ok || len(vt.Entries) == 0 {
		logErrf("No saved words in %q yet.\n", doc.Title)
		return nil
	}

	entries := vocab.Sorted(vt.Entries, by, vocabDesc)
	t := newTable("WORD", "COUNT", "LAST SEEN", "DEFINITION")
	for _, e := range entries {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(render.SavedColor(e.Count, sess.settings.Highlight)))
		t.Row(
			swatch.Render(e.Normalized),
			strconv.Itoa(e.Count),
			time.UnixMilli(e.LastSeenAt).Format("2006-01-02"),
			truncate(e.Definition, 60),
		)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, vt.Name)
	_, err = fmt.Fprintln(out, t.Render())
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func runVocabExportCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if args[1] != "-" {
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[1], err)
		}
		defer f.Close()
		w = f
	}
	if err := sess.store.ExportTable(doc.ID, w); err != nil {
		return err
	}
	if args[1] != "-" {
		logErrf("Exported %q to %s\n", doc.Title, args[1])
	}
	return nil
}

func runVocabImportCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[1], err)
		}
		defer f.Close()
		r = f
	}
	n, err := sess.store.ImportTable(doc.ID, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words into %q\n", n, doc.Title)
	return nil
}

func runVocabRmCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}
	if err := sess.store.DeleteVocabularyTable(doc.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted the vocabulary of %q\n", doc.Title)
	return nil
}
