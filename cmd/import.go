package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-bball-metrics/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import legacy player records",
	Long: `Loads a JSON array of legacy player records into the store. Each record
carries its statistics as raw table cells ("raw_stats"); they are kept as-is
and normalized whenever the store is read.

Record fields: id or player_id, team_id or team_url, season, league (optional,
defaults to Men on load), name, team_name, link, raw_stats.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	players, skipped, err := storage.DecodeLegacy(f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	if err := db.SavePlayers(players); err != nil {
		return fmt.Errorf("save players: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Imported %d record(s)", len(players))
	if skipped > 0 {
		fmt.Fprintf(os.Stdout, ", skipped %d without player id, team or season", skipped)
	}
	fmt.Fprintln(os.Stdout)
	return nil
}
