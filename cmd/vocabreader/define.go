package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/vocabreader/pkg/config"
	"github.com/japaniel/vocabreader/pkg/dictionary"
	"github.com/japaniel/vocabreader/pkg/ingest"
	"github.com/japaniel/vocabreader/pkg/vocab"
)

var (
	defineOffline bool
	defineWorkers int
	defineFile    string

	historyJSON bool
)

func newDefineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "define <id>",
		Short: "Look up definitions for saved words that have none",
		Args:  cobra.ExactArgs(1),
		RunE:  runDefineCmd,
	}
	cmd.Flags().BoolVar(&defineOffline, "offline", false, "use only the local dictionary file")
	cmd.Flags().IntVar(&defineWorkers, "workers", config.DefaultWorkers, "concurrent lookups")
	cmd.Flags().StringVar(&defineFile, "dict", "", "local dictionary file (JSON)")
	return cmd
}

func runDefineCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	settings := sess.settings
	applyBoolFlag(cmd, "offline", &settings.Offline, defineOffline)
	applyIntFlag(cmd, "workers", &settings.DictWorkers, defineWorkers)
	applyStringFlag(cmd, "dict", &settings.DictFile, defineFile)
	if err := settings.Validate(); err != nil {
		return err
	}

	doc, err := findDocument(sess.store, args[0])
	if err != nil {
		return err
	}

	definer, err := buildDefiner(cmd, settings)
	if err != nil {
		return err
	}

	en := ingest.NewEnricher(sess.store, definer)
	en.Workers = settings.DictWorkers
	if verbose {
		en.Logger = newLogger()
	}
	en.OnProgress = func(current, total int) {
		logErrf("\rLooking up definitions: %d/%d", current, total)
		if current == total {
			logErrln()
		}
	}

	start := time.Now()
	n, err := en.Enrich(cmd.Context(), doc.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch definitions: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d definitions to %q in %v\n", n, doc.Title, time.Since(start).Round(time.Millisecond))
	return nil
}

// buildDefiner chains the local dictionary file, when there is one, in front
// of the remote dictionary.
func buildDefiner(cmd *cobra.Command, settings config.Settings) (dictionary.Definer, error) {
	var chain dictionary.Chain

	if err := dictionary.EnsureFile(cmd.Context(), settings.DictFile, settings.DictSource); err != nil {
		if settings.DictSource != "" {
			logErrf("Warning: failed to download dictionary to %s: %v\n", settings.DictFile, err)
		}
	} else {
		entries, err := dictionary.LoadFile(settings.DictFile)
		if err != nil {
			logErrf("Warning: failed to load dictionary %s: %v\n", settings.DictFile, err)
		} else {
			chain = append(chain, dictionary.NewLocal(entries, settings.Lang))
			if verbose {
				logErrf("Loaded %d dictionary entries from %s\n", len(entries), settings.DictFile)
			}
		}
	}

	if !settings.Offline {
		chain = append(chain, dictionary.NewClient(settings.DictEndpoint, settings.DictTimeout))
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("offline mode needs a dictionary file at %s (set [dictionary] file or source)", settings.DictFile)
	}
	return chain, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved revisions of the library (sqlite backend)",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().BoolVar(&historyJSON, "json", false, "print revisions as JSON")
	return cmd
}

type revisionSummary struct {
	Revision  int64     `json:"revision"`
	SavedAt   time.Time `json:"savedAt"`
	Documents int       `json:"documents"`
	Words     int       `json:"words"`
}

func summarize(rev int64, savedAt time.Time, snap vocab.Snapshot) revisionSummary {
	words := 0
	for _, t := range snap.VocabularyTables {
		words += len(t.Entries)
	}
	return revisionSummary{Revision: rev, SavedAt: savedAt, Documents: len(snap.Documents), Words: words}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	if sess.kv == nil {
		return fmt.Errorf("history is only kept by the %q backend", config.BackendSQLite)
	}

	revs, err := sess.kv.Revisions(vocab.StateKey)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	summaries := make([]revisionSummary, 0, len(revs))
	for _, r := range revs {
		snap, err := vocab.DecodeSnapshot(r.Value)
		if err != nil {
			logErrf("Skipping unreadable revision %d: %v\n", r.ID, err)
			continue
		}
		summaries = append(summaries, summarize(r.ID, r.SavedAt, snap))
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	if len(summaries) == 0 {
		logErrln("No revisions saved yet.")
		return nil
	}
	t := newTable("REVISION", "SAVED", "DOCUMENTS", "WORDS")
	for _, s := range summaries {
		t.Row(fmt.Sprint(s.Revision), s.SavedAt.Local().Format(time.DateTime), fmt.Sprint(s.Documents), fmt.Sprint(s.Words))
	}
	_, err = fmt.Fprintln(out, t.Render())
	return err
}

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo [revision]",
		Short: "Restore the library to an earlier revision (default: the previous one)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runUndoCmd,
	}
}

func runUndoCmd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	if sess.kv == nil {
		return fmt.Errorf("undo needs the history kept by the %q backend", config.BackendSQLite)
	}

	revs, err := sess.kv.Revisions(vocab.StateKey)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	// revs[0] is the current state.
	target := -1
	if len(args) == 0 {
		if len(revs) > 1 {
			target = 1
		}
	} else {
		var id int64
		if _, err := fmt.Sscan(args[0], &id); err != nil {
			return fmt.Errorf("invalid revision %q", args[0])
		}
		for i, r := range revs {
			if r.ID == id {
				target = i
			}
		}
	}
	if target < 0 {
		return fmt.Errorf("no earlier revision to restore (see: vocabreader history)")
	}

	snap, err := vocab.DecodeSnapshot(revs[target].Value)
	if err != nil {
		return fmt.Errorf("revision %d is unreadable: %w", revs[target].ID, err)
	}
	if err := sess.store.Restore(snap); err != nil {
		return err
	}
	s := summarize(revs[target].ID, revs[target].SavedAt, snap)
	fmt.Fprintf(cmd.OutOrStdout(), "Restored revision %d (%d documents, %d words)\n", s.Revision, s.Documents, s.Words)
	return nil
}
