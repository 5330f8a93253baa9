// Package main provides the graphdoc CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smallnest/graphdoc/export"
	"github.com/smallnest/graphdoc/graph"
	"github.com/smallnest/graphdoc/store"
	"github.com/smallnest/graphdoc/store/file"
	"github.com/smallnest/graphdoc/store/postgres"
	"github.com/smallnest/graphdoc/store/redis"
	"github.com/smallnest/graphdoc/store/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "graphdoc",
	Short: "Transactional diagram documents with undo and journal replay",
	Long: `graphdoc edits cell-tree documents through undoable change records and
persists every edit to a journal that any backend can replay back into
an identical document.`,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Edit a document interactively",
	Long: `Start an interactive session over an in-memory document.

Commands inside the session: add, edge, set, remove, fold, expand,
undo, redo, tree, mermaid, dot, help, quit. With --record the session
journals every edit to the selected backend so it can be replayed
later with 'graphdoc replay'.`,
	RunE: runRepl,
}

var replayCmd = &cobra.Command{
	Use:   "replay <document-id>",
	Short: "Rebuild a document from its journal",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

var exportCmd = &cobra.Command{
	Use:   "export <document-id>",
	Short: "Replay a journal and print the document as mermaid, dot or a tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var (
	storeBackend string
	storeDir     string
	storePath    string
	storeDSN     string
	storeAddr    string
	exportFormat string
	direction    string
	configPath   string
	recordDoc    string
)

func init() {
	for _, cmd := range []*cobra.Command{replCmd, replayCmd, exportCmd} {
		cmd.Flags().StringVar(&storeBackend, "store", "file", "Journal backend: file, sqlite, postgres or redis")
		cmd.Flags().StringVar(&storeDir, "dir", ".graphdoc", "Journal directory for the file backend")
		cmd.Flags().StringVar(&storePath, "db", ".graphdoc/journal.db", "Database path for the sqlite backend")
		cmd.Flags().StringVar(&storeDSN, "dsn", "", "Connection string for the postgres backend")
		cmd.Flags().StringVar(&storeAddr, "addr", "localhost:6379", "Address for the redis backend")
	}

	replCmd.Flags().StringVar(&configPath, "config", "", "Editor config file (YAML)")
	replCmd.Flags().StringVar(&recordDoc, "record", "", "Journal the session under this document ID")

	exportCmd.Flags().StringVar(&exportFormat, "format", "mermaid", "Output format: mermaid, dot or tree")
	exportCmd.Flags().StringVar(&direction, "direction", "TD", "Flow direction for mermaid output")

	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore builds the journal backend selected by the store flags. The
// returned closer is a no-op for backends without one.
func openStore(cmd *cobra.Command) (store.JournalStore, func() error, error) {
	noop := func() error { return nil }

	switch storeBackend {
	case "file":
		st, err := file.NewFileJournalStore(file.Options{Dir: storeDir})
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "sqlite":
		st, err := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{Path: storePath})
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "postgres":
		if storeDSN == "" {
			return nil, nil, fmt.Errorf("the postgres backend needs --dsn")
		}
		st, err := postgres.NewPostgresJournalStore(cmd.Context(), postgres.PostgresOptions{ConnString: storeDSN})
		if err != nil {
			return nil, nil, err
		}
		return st, noop, nil
	case "redis":
		st := redis.NewRedisJournalStore(redis.RedisOptions{Addr: storeAddr})
		return st, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", storeBackend)
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	documentID := args[0]

	st, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	m, err := graph.ReplayJournal(cmd.Context(), st, documentID)
	if err != nil {
		return fmt.Errorf("replaying %s: %w", documentID, err)
	}

	records, err := st.List(cmd.Context(), documentID)
	if err != nil {
		return err
	}

	fmt.Printf("document:    %s\n", documentID)
	fmt.Printf("records:     %d\n", len(records))
	fmt.Printf("fingerprint: %s\n", m.Fingerprint())
	fmt.Println()
	fmt.Print(export.NewExporter(m).DrawTree())
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	documentID := args[0]

	st, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	m, err := graph.ReplayJournal(cmd.Context(), st, documentID)
	if err != nil {
		return fmt.Errorf("replaying %s: %w", documentID, err)
	}

	ex := export.NewExporter(m)
	switch exportFormat {
	case "mermaid":
		fmt.Print(ex.DrawMermaidWithOptions(export.MermaidOptions{Direction: direction}))
	case "dot":
		fmt.Print(ex.DrawDOT())
	case "tree":
		fmt.Print(ex.DrawTree())
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}
	return nil
}
