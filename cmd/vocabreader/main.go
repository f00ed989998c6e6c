// Package main provides the CLI entrypoint for vocabreader.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/japaniel/vocabreader/pkg/config"
	"github.com/japaniel/vocabreader/pkg/db"
	"github.com/japaniel/vocabreader/pkg/extract"
	"github.com/japaniel/vocabreader/pkg/readerer"
	"github.com/japaniel/vocabreader/pkg/vocab"
)

var (
	configPath   string
	storeBackend string
	storePath    string
	verbose      bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vocabreader",
		Short:         "Read texts and keep a vocabulary table per document",
		Version:       readerer.Version(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file")
	flags.StringVar(&storeBackend, "backend", config.BackendSQLite, "storage backend (sqlite or file)")
	flags.StringVar(&storePath, "store", "", "database file or state directory")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log store and dictionary activity to stderr")

	rootCmd.AddCommand(newDocCmd())
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newWordCmd())
	rootCmd.AddCommand(newVocabCmd())
	rootCmd.AddCommand(newDefineCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadSettings reads the config file and applies the global flags over it.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := config.Resolve(fileCfg)
	if err != nil {
		return config.Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	if cmd.Flags().Changed("backend") {
		settings.Backend = strings.ToLower(strings.TrimSpace(storeBackend))
		if !cmd.Flags().Changed("store") && fileCfg.Storage.Path == nil {
			settings.StoragePath = defaultStoragePath(settings.Backend)
		}
	}
	applyStringFlag(cmd, "store", &settings.StoragePath, storePath)
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func defaultStoragePath(backend string) string {
	if backend == config.BackendFile {
		return config.DefaultStateDir()
	}
	return config.DefaultDBPath()
}

// session is an opened store plus whatever must be closed with it.
type session struct {
	settings config.Settings
	store    *vocab.Store
	kv       *db.KV
	close    func() error
}

func (s *session) Close() {
	if s.close == nil {
		return
	}
	if err := s.close(); err != nil {
		logErrf("failed to close store: %v\n", err)
	}
}

func openSession(cmd *cobra.Command) (*session, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(settings)
}

func openStore(settings config.Settings) (*session, error) {
	opts := []vocab.Option{vocab.WithLanguage(settings.Lang)}
	if verbose {
		opts = append(opts, vocab.WithLogger(newLogger()))
	}

	s := &session{settings: settings}
	switch settings.Backend {
	case config.BackendFile:
		kv, err := db.NewFileKV(settings.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open state directory: %w", err)
		}
		s.store = vocab.New(kv, opts...)
	default:
		conn, err := db.Open(settings.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		s.kv = db.NewKV(conn)
		s.close = conn.Close
		s.store = vocab.New(s.kv, opts...)
	}
	if s.store.WasReset() {
		logErrln("Warning: saved vocabulary could not be loaded; starting with an empty library.")
	}
	return s, nil
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "vocabreader: ", log.LstdFlags)
}

// readSource extracts reading text from a URL or a local file.
func readSource(ctx context.Context, ref string) (extract.Result, error) {
	if extract.IsURL(ref) {
		return extract.NewFetcher().FromURL(ctx, ref)
	}
	return extract.FromFile(ref)
}

func findDocument(store *vocab.Store, ref string) (vocab.Document, error) {
	doc, err := store.FindDocument(ref)
	if err != nil {
		return vocab.Document{}, fmt.Errorf("%w (list documents with: vocabreader doc list)", err)
	}
	return doc, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), configPath)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a commented config file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := writeConfigTemplate(configPath)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", configPath)
			}
			return nil
		},
	})
	return cmd
}

func writeConfigTemplate(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	if _, err := writeConfigTemplate(configPath); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], configPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyIntFlag(cmd *cobra.Command, name string, target *int, value int) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyBoolFlag(cmd *cobra.Command, name string, target *bool, value bool) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
